package smartsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected SplitResult
	}{
		{"make model year variant", "Audi A6 2020 quattro",
			SplitResult{Make: "Audi", Model: "A6", Variant: "quattro", Year: "2020"}},
		{"parent company stripped", "GAC Honda Accord",
			SplitResult{Make: "Honda", Model: "Accord"}},
		{"parent company not a make", "Beijing Hyundai Elantra 1.5L",
			SplitResult{Make: "Hyundai", Model: "Elantra", Variant: "1.5L"}},
		{"parent company alone is the make", "BYD Seal Premium",
			SplitResult{Make: "Byd", Model: "Seal", Variant: "Premium"}},
		{"alias VW", "VW Tiguan 330TSI Luxury",
			SplitResult{Make: "Volkswagen", Model: "Tiguan", Variant: "330TSI Luxury"}},
		{"lowercase vw fixed by title case", "vw golf gti",
			SplitResult{Make: "Volkswagen", Model: "golf", Variant: "gti"}},
		{"BMW keeps capitals", "bmw X5 xDrive40i",
			SplitResult{Make: "BMW", Model: "X5", Variant: "xDrive40i"}},
		{"longest make wins", "Mercedes-Benz C200 AMG Line",
			SplitResult{Make: "Mercedes", Model: "C200", Variant: "AMG Line"}},
		{"alias then title case", "Range Rover Sport HSE",
			SplitResult{Make: "Land rover", Model: "Sport", Variant: "HSE"}},
		{"make at end uses text before", "Tiguan Volkswagen",
			SplitResult{Make: "Volkswagen", Model: "Tiguan"}},
		{"text before a mid-string make is dropped", "2019 Toyota Corolla Altis",
			SplitResult{Make: "Toyota", Model: "Corolla", Variant: "Altis"}},
		{"decimal year leaves fraction", "Volkswagen Tiguan L 2022.6 330TSI",
			SplitResult{Make: "Volkswagen", Model: "Tiguan", Variant: "L .6 330TSI", Year: "2022"}},
		{"year out of range kept in text", "Ford Mustang 1969 Fastback",
			SplitResult{Make: "Ford", Model: "Mustang", Variant: "1969 Fastback"}},
		{"no make", "Sedan 2015 Blue",
			SplitResult{Model: "Sedan", Variant: "Blue", Year: "2015"}},
		{"surrounding whitespace", "   Kia   Sportage  ",
			SplitResult{Make: "Kia", Model: "Sportage"}},
		{"empty", "", SplitResult{}},
		{"whitespace only", "   ", SplitResult{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Split(tc.input))
		})
	}
}

func TestSplitAny_NonString(t *testing.T) {
	assert.Equal(t, SplitResult{}, SplitAny(nil))
	assert.Equal(t, SplitResult{}, SplitAny(2020.0))
	assert.Equal(t, SplitResult{Make: "Audi", Model: "A4"}, SplitAny("Audi A4"))
}

func TestCanonicalMake(t *testing.T) {
	assert.Equal(t, "Volkswagen", canonicalMake("VW"))
	assert.Equal(t, "Chevrolet", canonicalMake("Chevy"))
	assert.Equal(t, "Gmc", canonicalMake("GMC"))
	assert.Equal(t, "BMW", canonicalMake("BMW"))
}
