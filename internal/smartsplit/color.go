package smartsplit

import (
	"regexp"
	"strings"
)

// Colors is checked in order and the first entry found in a description
// wins. Generic names come before compound ones, so "Blue" shadows
// "Sky Blue"; dealer data has been tuned against this order.
var Colors = []string{
	"Black", "White", "Silver", "Gray", "Grey", "Red", "Blue", "Green", "Yellow",
	"Orange", "Brown", "Beige", "Gold", "Pearl White", "Metallic", "Sky Blue",
	"Manganese Black", "Starry Gold", "Rose Gold", "Mountain Green", "Pearl",
}

// trailingSegment captures text after a dash or slash, as in
// "Tiguan L 330TSI - Lavender".
var trailingSegment = regexp.MustCompile(`[-/]\s*([A-Za-z\s]+)(?:\s*[-/]|$)`)

// maxFallbackColorLen bounds the dash/slash fallback.
const maxFallbackColorLen = 30

// ExtractColorAny is ExtractColor for raw cell values.
func ExtractColorAny(description any) string {
	s, ok := description.(string)
	if !ok {
		return ""
	}
	return ExtractColor(s)
}

// ExtractColor finds a color name in free text. It returns "" when nothing
// plausible is found.
func ExtractColor(description string) string {
	if description == "" {
		return ""
	}

	lower := strings.ToLower(description)
	for _, color := range Colors {
		if strings.Contains(lower, strings.ToLower(color)) {
			return color
		}
	}

	matches := trailingSegment.FindAllStringSubmatch(description, -1)
	if len(matches) == 0 {
		return ""
	}
	candidate := strings.TrimSpace(matches[len(matches)-1][1])
	if len(candidate) < maxFallbackColorLen {
		return candidate
	}
	return ""
}
