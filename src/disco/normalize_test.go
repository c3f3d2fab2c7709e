package disco

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/ogri-la/strongbox-disco-go/src/types"
)

// recordingHandler keeps every log record so tests can assert on warnings
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) warnings() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range h.records {
		if r.Level == slog.LevelWarn {
			out = append(out, r)
		}
	}
	return out
}

func captureLogs(t *testing.T) *recordingHandler {
	t.Helper()
	handler := &recordingHandler{}
	previous := slog.Default()
	slog.SetDefault(slog.New(handler))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return handler
}

func strPtr(s string) *string {
	return &s
}

func addonWithFiles(files ...types.AddonFile) types.ExternalAddon {
	return types.ExternalAddon{
		GUID:    "{uBlock0@raymondhill.net}",
		ID:      607454,
		Name:    "uBlock Origin",
		Slug:    "ublock-origin",
		Type:    "extension",
		URL:     "https://addons.mozilla.org/en-US/firefox/addon/ublock-origin/",
		IconURL: "https://addons.cdn.mozilla.net/user-media/addon_icons/607/607454-64.png",
		CurrentVersion: &types.CurrentVersion{
			Files: files,
			Compatibility: map[string]types.VersionRange{
				"firefox": {Min: "57.0", Max: "*"},
			},
		},
	}
}

func TestNormalizeAddon_PlatformSlotsAlwaysPresent(t *testing.T) {
	captureLogs(t)

	tests := []struct {
		name  string
		addon types.ExternalAddon
		want  map[types.Platform]int // platform -> file id, absent means nil
	}{
		{
			name:  "no current version",
			addon: types.ExternalAddon{ID: 1, Slug: "none"},
			want:  map[types.Platform]int{},
		},
		{
			name:  "empty file list",
			addon: addonWithFiles(),
			want:  map[types.Platform]int{},
		},
		{
			name:  "single file for all platforms",
			addon: addonWithFiles(types.AddonFile{ID: 10, Platform: types.PlatformAll}),
			want:  map[types.Platform]int{types.PlatformAll: 10},
		},
		{
			name: "one file per platform",
			addon: addonWithFiles(
				types.AddonFile{ID: 1, Platform: types.PlatformWindows},
				types.AddonFile{ID: 2, Platform: types.PlatformMac},
				types.AddonFile{ID: 3, Platform: types.PlatformLinux},
				types.AddonFile{ID: 4, Platform: types.PlatformAndroid},
			),
			want: map[types.Platform]int{
				types.PlatformWindows: 1,
				types.PlatformMac:     2,
				types.PlatformLinux:   3,
				types.PlatformAndroid: 4,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addon := NormalizeAddon(tt.addon)

			for _, platform := range types.AllPlatforms {
				file := addon.PlatformFiles.Get(platform)
				wantID, ok := tt.want[platform]
				if !ok {
					if file != nil {
						t.Errorf("PlatformFiles[%s] = %+v, want nil", platform, file)
					}
					continue
				}
				if file == nil {
					t.Fatalf("PlatformFiles[%s] = nil, want file %d", platform, wantID)
				}
				if file.ID != wantID {
					t.Errorf("PlatformFiles[%s].ID = %d, want %d", platform, file.ID, wantID)
				}
				if file.Platform != platform {
					t.Errorf("PlatformFiles[%s].Platform = %s, want %s", platform, file.Platform, platform)
				}
			}
			if len(addon.UnknownPlatformFiles) != 0 {
				t.Errorf("UnknownPlatformFiles = %v, want empty", addon.UnknownPlatformFiles)
			}
		})
	}
}

func TestNormalizeAddon_CopiesPassthroughFields(t *testing.T) {
	external := addonWithFiles(types.AddonFile{ID: 10, Platform: types.PlatformAll})
	external.Previews = []byte(`[{"id":1,"image_url":"https://example.com/1.png"}]`)

	addon := NormalizeAddon(external)

	if !reflect.DeepEqual(addon.ExternalAddon, external) {
		t.Errorf("ExternalAddon = %+v, want %+v", addon.ExternalAddon, external)
	}
	if addon.PreviewURL != "" {
		t.Errorf("PreviewURL = %q, want empty", addon.PreviewURL)
	}
}

func TestNormalizeAddon_PreviewURL(t *testing.T) {
	tests := []struct {
		name  string
		addon types.ExternalAddon
		want  string
	}{
		{
			name:  "theme data with preview",
			addon: types.ExternalAddon{ID: 2, Slug: "dark-fox", Type: "persona", ThemeData: &types.ThemeData{PreviewURL: "http://x/img.png"}},
			want:  "http://x/img.png",
		},
		{
			name:  "no theme data",
			addon: types.ExternalAddon{ID: 3, Slug: "no-theme"},
			want:  "",
		},
		{
			name:  "theme data without preview",
			addon: types.ExternalAddon{ID: 4, Slug: "bare", ThemeData: &types.ThemeData{Name: "Bare"}},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAddon(tt.addon).PreviewURL; got != tt.want {
				t.Errorf("PreviewURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAddon_LastFileWins(t *testing.T) {
	logs := captureLogs(t)

	addon := NormalizeAddon(addonWithFiles(
		types.AddonFile{ID: 1, Platform: types.PlatformMac},
		types.AddonFile{ID: 2, Platform: types.PlatformMac},
	))

	if addon.PlatformFiles.Mac == nil || addon.PlatformFiles.Mac.ID != 2 {
		t.Errorf("PlatformFiles.Mac = %+v, want file 2", addon.PlatformFiles.Mac)
	}
	if warnings := logs.warnings(); len(warnings) != 0 {
		t.Errorf("warnings = %d, want 0", len(warnings))
	}
}

func TestNormalizeAddon_UnknownPlatform(t *testing.T) {
	logs := captureLogs(t)

	addon := NormalizeAddon(addonWithFiles(
		types.AddonFile{ID: 1, Platform: "solaris"},
		types.AddonFile{ID: 2, Platform: "solaris"},
		types.AddonFile{ID: 3, Platform: types.PlatformAll},
	))

	warnings := logs.warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	want := "Add-on ID 607454, slug ublock-origin has a file with an unknown platform: solaris"
	if warnings[0].Message != want {
		t.Errorf("warning = %q, want %q", warnings[0].Message, want)
	}

	file, ok := addon.UnknownPlatformFiles["solaris"]
	if !ok {
		t.Fatalf("UnknownPlatformFiles = %v, want solaris entry", addon.UnknownPlatformFiles)
	}
	if file.ID != 2 {
		t.Errorf("UnknownPlatformFiles[solaris].ID = %d, want 2", file.ID)
	}

	if addon.PlatformFiles.All == nil || addon.PlatformFiles.All.ID != 3 {
		t.Errorf("PlatformFiles.All = %+v, want file 3", addon.PlatformFiles.All)
	}
	for _, platform := range []types.Platform{types.PlatformAndroid, types.PlatformLinux, types.PlatformMac, types.PlatformWindows} {
		if got := addon.PlatformFiles.Get(platform); got != nil {
			t.Errorf("PlatformFiles[%s] = %+v, want nil", platform, got)
		}
	}
}

func TestNormalizeAddon_WarnsOncePerUnknownPlatform(t *testing.T) {
	logs := captureLogs(t)

	addon := NormalizeAddon(addonWithFiles(
		types.AddonFile{ID: 1, Platform: "solaris"},
		types.AddonFile{ID: 2, Platform: "beos"},
		types.AddonFile{ID: 3, Platform: "solaris"},
		types.AddonFile{ID: 4, Platform: "beos"},
	))

	warnings := logs.warnings()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %d, want 2", len(warnings))
	}
	for i, platform := range []string{"solaris", "beos"} {
		want := "Add-on ID 607454, slug ublock-origin has a file with an unknown platform: " + platform
		if warnings[i].Message != want {
			t.Errorf("warnings[%d] = %q, want %q", i, warnings[i].Message, want)
		}
	}
	if got := addon.UnknownPlatformFiles["solaris"].ID; got != 3 {
		t.Errorf("UnknownPlatformFiles[solaris].ID = %d, want 3", got)
	}
	if got := addon.UnknownPlatformFiles["beos"].ID; got != 4 {
		t.Errorf("UnknownPlatformFiles[beos].ID = %d, want 4", got)
	}
}

func TestNormalizeAddon_SingleUnknownPlatformFile(t *testing.T) {
	logs := captureLogs(t)

	addon := NormalizeAddon(addonWithFiles(types.AddonFile{ID: 7, Platform: "solaris"}))

	warnings := logs.warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	attrs := map[string]string{}
	warnings[0].Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.String()
		return true
	})
	if attrs["addon-id"] != "607454" || attrs["slug"] != "ublock-origin" || attrs["platform"] != "solaris" {
		t.Errorf("warning attrs = %v", attrs)
	}
	if got := addon.UnknownPlatformFiles["solaris"].ID; got != 7 {
		t.Errorf("UnknownPlatformFiles[solaris].ID = %d, want 7", got)
	}
}

func TestNormalizeResult_Description(t *testing.T) {
	tests := []struct {
		name        string
		description *string
		want        *string
	}{
		{name: "absent", description: nil, want: nil},
		{name: "empty", description: strPtr(""), want: nil},
		{name: "present", description: strPtr("Great addon"), want: strPtr("Great addon")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeResult(types.ExternalResult{
				Addon:            types.ExternalAddon{ID: 1, Slug: "a"},
				Description:      tt.description,
				Heading:          "Block ads <span>by Raymond Hill</span>",
				IsRecommendation: true,
			})

			if !reflect.DeepEqual(result.Description, tt.want) {
				t.Errorf("Description = %v, want %v", result.Description, tt.want)
			}
			if result.Heading != "Block ads <span>by Raymond Hill</span>" {
				t.Errorf("Heading = %q", result.Heading)
			}
			if !result.IsRecommendation {
				t.Errorf("IsRecommendation = false, want true")
			}
			if result.Addon.ID != 1 {
				t.Errorf("Addon.ID = %d, want 1", result.Addon.ID)
			}
		})
	}
}
