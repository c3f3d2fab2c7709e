package types

import (
	"encoding/json"
	"time"
)

// Platform is the operating system a file was built for
type Platform string

const (
	PlatformAll     Platform = "all"
	PlatformAndroid Platform = "android"
	PlatformLinux   Platform = "linux"
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "windows"
)

var AllPlatforms = []Platform{
	PlatformAll, PlatformAndroid, PlatformLinux,
	PlatformMac, PlatformWindows,
}

// Known reports whether p is one of AllPlatforms
func (p Platform) Known() bool {
	switch p {
	case PlatformAll, PlatformAndroid, PlatformLinux, PlatformMac, PlatformWindows:
		return true
	}
	return false
}

// AddonFile is a downloadable artifact of an addon version
type AddonFile struct {
	Created                  *time.Time `json:"created,omitempty"`
	Hash                     string     `json:"hash"`
	ID                       int        `json:"id"`
	IsMozillaSignedExtension bool       `json:"is_mozilla_signed_extension"`
	IsRestartRequired        bool       `json:"is_restart_required"`
	IsWebextension           bool       `json:"is_webextension"`
	Permissions              []string   `json:"permissions,omitempty"`
	Platform                 Platform   `json:"platform"`
	Size                     int64      `json:"size"`
	Status                   string     `json:"status"`
	URL                      string     `json:"url"`
}

// VersionRange is the min/max application version an addon supports
type VersionRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// CurrentVersion is the published version of an addon
type CurrentVersion struct {
	Files         []AddonFile             `json:"files"`
	Compatibility map[string]VersionRange `json:"compatibility"`
}

// ThemeData carries the display data of a lightweight theme
type ThemeData struct {
	AccentColor string `json:"accentcolor,omitempty"`
	Author      string `json:"author,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	DetailURL   string `json:"detailURL,omitempty"`
	Footer      string `json:"footer,omitempty"`
	FooterURL   string `json:"footerURL,omitempty"`
	Header      string `json:"header,omitempty"`
	HeaderURL   string `json:"headerURL,omitempty"`
	IconURL     string `json:"iconURL,omitempty"`
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	PreviewURL  string `json:"previewURL,omitempty"`
	TextColor   string `json:"textcolor,omitempty"`
	UpdateURL   string `json:"updateURL,omitempty"`
	Version     string `json:"version,omitempty"`
}

// ExternalAddon is an addon as returned by the discovery API.
// Field names are wire-exact and must not change while the API doesn't.
type ExternalAddon struct {
	CurrentVersion *CurrentVersion `json:"current_version,omitempty"`
	GUID           string          `json:"guid"`
	IconURL        string          `json:"icon_url"`
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Previews       json.RawMessage `json:"previews,omitempty"`
	Slug           string          `json:"slug"`
	ThemeData      *ThemeData      `json:"theme_data,omitempty"`
	Type           string          `json:"type"`
	URL            string          `json:"url"`
}

// PlatformFiles holds at most one file per known platform.
// All five keys are always present in JSON output, `null` when empty.
type PlatformFiles struct {
	All     *AddonFile `json:"all"`
	Android *AddonFile `json:"android"`
	Linux   *AddonFile `json:"linux"`
	Mac     *AddonFile `json:"mac"`
	Windows *AddonFile `json:"windows"`
}

// Get returns the file stored for p, or nil
func (pf PlatformFiles) Get(p Platform) *AddonFile {
	switch p {
	case PlatformAll:
		return pf.All
	case PlatformAndroid:
		return pf.Android
	case PlatformLinux:
		return pf.Linux
	case PlatformMac:
		return pf.Mac
	case PlatformWindows:
		return pf.Windows
	}
	return nil
}

// Set stores file under p and reports false when p is not a known platform
func (pf *PlatformFiles) Set(p Platform, file AddonFile) bool {
	switch p {
	case PlatformAll:
		pf.All = &file
	case PlatformAndroid:
		pf.Android = &file
	case PlatformLinux:
		pf.Linux = &file
	case PlatformMac:
		pf.Mac = &file
	case PlatformWindows:
		pf.Windows = &file
	default:
		return false
	}
	return true
}

// Addon is the normalized addon the rest of the application consumes
type Addon struct {
	ExternalAddon
	PlatformFiles PlatformFiles `json:"platformFiles"`
	PreviewURL    string        `json:"previewURL,omitempty"`

	// UnknownPlatformFiles keeps files whose platform isn't one of AllPlatforms
	UnknownPlatformFiles map[Platform]AddonFile `json:"unknownPlatformFiles,omitempty"`
}

// ExternalResult is a single discovery result as returned by the API
type ExternalResult struct {
	Addon            ExternalAddon `json:"addon"`
	Description      *string       `json:"description"`
	Heading          string        `json:"heading"`
	IsRecommendation bool          `json:"is_recommendation"`
}

// Result is a normalized discovery result. Description is nil when the
// source description was empty.
type Result struct {
	Addon            Addon   `json:"addon"`
	Description      *string `json:"description"`
	Heading          string  `json:"heading"`
	IsRecommendation bool    `json:"is_recommendation"`
}

// ResultsResponse is the envelope of the discovery endpoint
type ResultsResponse struct {
	Count   int              `json:"count"`
	Results []ExternalResult `json:"results"`
}
