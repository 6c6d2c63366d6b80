package gsmarena

import (
	"regexp"
	"strings"

	"gsmarena-scraper/lib/textutil"
)

// CleanInfo is the naming metadata derived from a listing's phone name. It
// is computed fresh per phone and never persisted on its own.
type CleanInfo struct {
	// SafeName is the filesystem-safe token used as the phone's image
	// subdirectory name.
	SafeName    string `json:"safe_name"`
	DisplayName string `json:"display_name"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
}

// Canonical casing for brands whose marketing differs from title case.
// Keyed by the lowercased first word of a cleaned name; treat as data.
var brandNames = map[string]string{
	"xiaomi":  "Xiaomi",
	"samsung": "Samsung",
	"vivo":    "vivo",
	"oneplus": "OnePlus",
	"google":  "Google",
	"apple":   "Apple",
	"iphone":  "iPhone",
}

var nonNameChars = regexp.MustCompile(`[^\w\s-]`)

// CleanPhoneName strips review phrasing and parentheticals from a listing
// title and splits the remainder into brand and model.
func CleanPhoneName(phoneName string) CleanInfo {
	clean := textutil.StripReviewPhrase(phoneName)
	clean = textutil.StripParenthetical(clean)
	clean = strings.ReplaceAll(clean, "&", "and")
	clean = nonNameChars.ReplaceAllString(clean, "")
	clean = textutil.CollapseSpace(clean)

	words := strings.Fields(clean)

	brand := "Unknown"
	model := ""
	if len(words) > 0 {
		if canonical, ok := brandNames[strings.ToLower(words[0])]; ok {
			brand = canonical
		} else {
			brand = words[0]
		}
		model = strings.Join(words[1:], " ")
	}

	displayName := brand
	if model != "" {
		displayName = brand + " " + model
	}

	return CleanInfo{
		SafeName:    textutil.SanitizeFilename(clean),
		DisplayName: displayName,
		Brand:       brand,
		Model:       model,
	}
}
