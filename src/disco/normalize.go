package disco

import (
	"fmt"
	"log/slog"

	"github.com/ogri-la/strongbox-disco-go/src/types"
)

// NormalizeAddon converts an addon from the discovery API into the internal shape.
// Files are binned by platform in input order; a later file for the same
// platform replaces an earlier one. Files with an unknown platform are kept in
// UnknownPlatformFiles, with one warning logged per unknown platform.
func NormalizeAddon(external types.ExternalAddon) types.Addon {
	addon := types.Addon{
		ExternalAddon: external,
	}

	if external.ThemeData != nil {
		addon.PreviewURL = external.ThemeData.PreviewURL
	}

	if external.CurrentVersion == nil || len(external.CurrentVersion.Files) == 0 {
		return addon
	}

	for _, file := range external.CurrentVersion.Files {
		if addon.PlatformFiles.Set(file.Platform, file) {
			continue
		}

		if addon.UnknownPlatformFiles == nil {
			addon.UnknownPlatformFiles = make(map[types.Platform]types.AddonFile)
		}

		// warn once per platform, later files only replace the stored one
		if _, seen := addon.UnknownPlatformFiles[file.Platform]; !seen {
			slog.Warn(
				fmt.Sprintf("Add-on ID %d, slug %s has a file with an unknown platform: %s", external.ID, external.Slug, file.Platform),
				"addon-id", external.ID,
				"slug", external.Slug,
				"platform", file.Platform,
			)
		}
		addon.UnknownPlatformFiles[file.Platform] = file
	}

	return addon
}

// NormalizeResult converts a discovery result into the internal shape.
// An empty description becomes nil.
func NormalizeResult(external types.ExternalResult) types.Result {
	var description *string
	if external.Description != nil && *external.Description != "" {
		value := *external.Description
		description = &value
	}

	return types.Result{
		Addon:            NormalizeAddon(external.Addon),
		Description:      description,
		Heading:          external.Heading,
		IsRecommendation: external.IsRecommendation,
	}
}
