package states

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

var fiftyStates = map[string]Code{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR", "California": "CA",
	"Colorado": "CO", "Connecticut": "CT", "Delaware": "DE", "Florida": "FL", "Georgia": "GA",
	"Hawaii": "HI", "Idaho": "ID", "Illinois": "IL", "Indiana": "IN", "Iowa": "IA",
	"Kansas": "KS", "Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS", "Missouri": "MO",
	"Montana": "MT", "Nebraska": "NE", "Nevada": "NV", "New Hampshire": "NH", "New Jersey": "NJ",
	"New Mexico": "NM", "New York": "NY", "North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH",
	"Oklahoma": "OK", "Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT", "Vermont": "VT",
	"Virginia": "VA", "Washington": "WA", "West Virginia": "WV", "Wisconsin": "WI", "Wyoming": "WY",
}

func TestNormalizeFullNames(t *testing.T) {
	assert.Len(t, fiftyStates, 50)

	for name, want := range fiftyStates {
		assert.Equal(t, want, Normalize(name), name)
		assert.Equal(t, want, Normalize(strings.ToLower(name)), name)
		assert.Equal(t, want, Normalize(strings.ToUpper(name)), name)
		assert.Equal(t, want, Normalize("  "+name+"\t"), name)
	}
}

func TestNormalizeCollapsesInnerWhitespace(t *testing.T) {
	assert.Equal(t, Code("NY"), Normalize("new   york"))
	assert.Equal(t, Code("DC"), Normalize("Washington DC"))
}

func TestNormalizeCodesIdempotent(t *testing.T) {
	for _, code := range All() {
		lower := strings.ToLower(string(code))
		got := Normalize(lower)
		assert.Equal(t, code, got)
		assert.Equal(t, got, Normalize(string(got)))
	}
}

func TestNormalizePassthrough(t *testing.T) {
	inputs := []string{"Narnia", " gotham city ", "zz", "x", "Ünïcode", "12345"}
	for _, in := range inputs {
		got := Normalize(in)
		trimmed := strings.TrimSpace(in)

		assert.NotEmpty(t, got, in)
		assert.Equal(t, strings.ToUpper(string(got)), string(got), in)
		assert.Equal(t, utf8.RuneCountInString(trimmed), utf8.RuneCountInString(string(got)), in)
		assert.False(t, got.Known(), in)
	}
}

func TestLookup(t *testing.T) {
	code, ok := Lookup("California")
	assert.True(t, ok)
	assert.Equal(t, Code("CA"), code)
	assert.Equal(t, "California", code.Name())

	_, ok = Lookup("   ")
	assert.False(t, ok)

	_, ok = Lookup("QQ")
	assert.False(t, ok)
}

func TestAllSorted(t *testing.T) {
	codes := All()
	assert.Len(t, codes, 56)
	for i := 1; i < len(codes); i++ {
		assert.Less(t, string(codes[i-1]), string(codes[i]))
	}
}
