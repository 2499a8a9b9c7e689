package smartsplit

import (
	"regexp"
	"sort"
	"strings"
)

// KnownMakes lists the makes recognized in free text. Order matters for
// DetectCombined, which stops at the first hit; Split uses a copy sorted
// by descending length so "Land Rover" wins over shorter names.
var KnownMakes = []string{
	// German
	"Volkswagen", "VW", "Audi", "BMW", "Mercedes", "Mercedes-Benz", "Porsche", "Opel",
	// Japanese
	"Toyota", "Honda", "Nissan", "Mazda", "Subaru", "Mitsubishi", "Suzuki", "Lexus", "Infiniti", "Acura",
	// Korean
	"Hyundai", "Kia", "Genesis",
	// American
	"Ford", "Chevrolet", "Chevy", "GMC", "Dodge", "Jeep", "Chrysler", "Cadillac", "Lincoln", "Buick", "Tesla",
	// European
	"Volvo", "Peugeot", "Renault", "Citroen", "Fiat", "Alfa Romeo", "Seat", "Skoda", "Saab",
	// British
	"Land Rover", "Range Rover", "Jaguar", "Mini", "Bentley", "Rolls-Royce", "Aston Martin", "McLaren",
	// Italian
	"Ferrari", "Lamborghini", "Maserati",
	// Chinese
	"BYD", "Geely", "Great Wall", "Haval", "Chery", "SAIC", "NIO", "XPeng", "Li Auto", "Dongfeng", "FAW",
	"Changan", "GAC", "BAIC", "JAC", "Zotye", "Foton", "Wuling", "Baojun", "Roewe", "MG", "Lynk & Co",
	// Other
	"Tata", "Mahindra", "Proton", "Perodua",
}

// ParentCompanies are joint-venture holding names that prefix the real make
// in some markets, as in "GAC Honda" or "SAIC Volkswagen".
var ParentCompanies = []string{
	"GAC", "SAIC", "FAW", "Dongfeng", "BAIC", "Changan", "Brilliance", "Beijing",
	"Guangzhou", "Shanghai", "Geely", "Great Wall", "Chery", "BYD",
}

// makeAliases canonicalizes matched text. Lookups use the text as written
// in the input, so "vw" is not an alias hit and is fixed by titleCase.
var makeAliases = map[string]string{
	"VW":            "Volkswagen",
	"Chevy":         "Chevrolet",
	"Mercedes-Benz": "Mercedes",
	"Range Rover":   "Land Rover", // Range Rover is a Land Rover model
}

// makePattern pairs a make with its compiled matchers.
type makePattern struct {
	name     string
	anywhere *regexp.Regexp // \bmake\b
	atStart  *regexp.Regexp // ^make\b
}

var (
	// detectPatterns follows KnownMakes order.
	detectPatterns = compileMakes(KnownMakes)

	// splitPatterns is sorted longest first.
	splitPatterns = compileMakes(sortedByLength(KnownMakes))
)

func compileMakes(makes []string) []makePattern {
	patterns := make([]makePattern, len(makes))
	for i, name := range makes {
		quoted := regexp.QuoteMeta(name)
		patterns[i] = makePattern{
			name:     name,
			anywhere: regexp.MustCompile(`(?i)\b` + quoted + `\b`),
			atStart:  regexp.MustCompile(`(?i)^` + quoted + `\b`),
		}
	}
	return patterns
}

func sortedByLength(makes []string) []string {
	sorted := append([]string(nil), makes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted
}

func isParentCompany(word string) bool {
	for _, p := range ParentCompanies {
		if strings.EqualFold(word, p) {
			return true
		}
	}
	return false
}

// canonicalMake turns matched text into the make name we report.
func canonicalMake(matched string) string {
	name := matched
	if alias, ok := makeAliases[matched]; ok {
		name = alias
	}
	name = titleCase(name)
	switch name {
	case "Vw":
		return "Volkswagen"
	case "Bmw":
		return "BMW"
	}
	return name
}

// titleCase upper-cases the first rune and lower-cases the rest, so
// "LAND ROVER" becomes "Land rover".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}
