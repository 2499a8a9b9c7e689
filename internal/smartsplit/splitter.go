// =============================================================================
// Vehicle Listing Importer - Make/Model Splitter
// =============================================================================
//
// Split turns free text such as "VW Tiguan 330TSI Luxury 2021" into make,
// model, variant and year. The heuristic runs in a fixed order and the first
// step that finds a make wins:
//   1. A known make at the start of the text.
//   2. A parent company ("GAC", "SAIC", ...) followed by a known make.
//   3. A known make anywhere in the text.
//
// A year (1990-2039) is then lifted out of what follows the make; the first
// remaining word is the model and everything after it is the variant.
//
// Nothing here fails. When a part cannot be found it is left empty.
//
// =============================================================================

package smartsplit

import (
	"regexp"
	"strings"
)

// SplitResult holds the parts of a combined make/model value.
type SplitResult struct {
	Make    string
	Model   string
	Variant string
	Year    string
}

var (
	yearPattern        = regexp.MustCompile(`\b(199[0-9]|20[0-3][0-9])\b`)
	decimalYearPattern = regexp.MustCompile(`\b(199[0-9]|20[0-3][0-9])\.\d+`)
)

// SplitAny is Split for raw cell values. Anything that is not a string
// yields the empty result.
func SplitAny(value any) SplitResult {
	s, ok := value.(string)
	if !ok {
		return SplitResult{}
	}
	return Split(s)
}

// Split parses a combined make/model/variant/year value.
func Split(value string) SplitResult {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return SplitResult{}
	}

	brand, remainder, found := matchAtStart(trimmed)

	// A parent company that is itself a known make ("GAC", "BYD") only
	// counts as the make when no other known make follows it.
	if found && isParentCompany(firstWord(trimmed)) {
		if inner, innerRemainder, ok := matchAtStart(afterFirstWord(trimmed)); ok {
			brand, remainder = inner, innerRemainder
		}
	}

	if !found {
		if isParentCompany(firstWord(trimmed)) {
			brand, remainder, found = matchAtStart(afterFirstWord(trimmed))
		}
	}

	if !found {
		brand, remainder, found = matchAnywhere(trimmed)
	}

	if !found {
		remainder = trimmed
	}

	result := SplitResult{Make: brand}
	result.Year, remainder = extractYear(remainder)

	parts := strings.Fields(remainder)
	if len(parts) > 0 {
		result.Model = parts[0]
		result.Variant = strings.Join(parts[1:], " ")
	}

	return result
}

// matchAtStart finds the longest known make at the start of s.
func matchAtStart(s string) (brand, remainder string, ok bool) {
	for _, p := range splitPatterns {
		loc := p.atStart.FindStringIndex(s)
		if loc == nil {
			continue
		}
		return canonicalMake(s[:loc[1]]), strings.TrimSpace(s[loc[1]:]), true
	}
	return "", s, false
}

// matchAnywhere finds a known make anywhere in s, longest make first. The
// remainder is the text after the make, or the text before it when the
// make ends the string.
func matchAnywhere(s string) (brand, remainder string, ok bool) {
	for _, p := range splitPatterns {
		loc := p.anywhere.FindStringIndex(s)
		if loc == nil {
			continue
		}
		before := strings.TrimSpace(s[:loc[0]])
		after := strings.TrimSpace(s[loc[1]:])
		remainder = after
		if remainder == "" {
			remainder = before
		}
		return canonicalMake(s[loc[0]:loc[1]]), remainder, true
	}
	return "", s, false
}

// extractYear lifts a model year out of s. The first occurrence of the
// matched text is removed, which is not always the matched position.
func extractYear(s string) (year, rest string) {
	if m := yearPattern.FindStringSubmatch(s); m != nil {
		return m[1], strings.TrimSpace(strings.Replace(s, m[0], "", 1))
	}
	if m := decimalYearPattern.FindStringSubmatch(s); m != nil {
		return m[1], strings.TrimSpace(strings.Replace(s, m[0], "", 1))
	}
	return "", s
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func afterFirstWord(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, firstWord(s)))
}
