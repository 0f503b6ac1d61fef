package states

import (
	"sort"
	"strings"
	"unicode"
)

// Code is a two-letter U.S. state or territory abbreviation as used by the NPS API.
type Code string

// String implements fmt.Stringer.
func (c Code) String() string {
	return string(c)
}

// Name returns the display name for a known code, or "" if the code is not recognized.
func (c Code) Name() string {
	return codeToName[c]
}

// Known reports whether c is one of the recognized state or territory codes.
func (c Code) Known() bool {
	_, ok := codeToName[c]
	return ok
}

var codeToName = map[Code]string{
	"AL": "Alabama",
	"AK": "Alaska",
	"AZ": "Arizona",
	"AR": "Arkansas",
	"CA": "California",
	"CO": "Colorado",
	"CT": "Connecticut",
	"DE": "Delaware",
	"FL": "Florida",
	"GA": "Georgia",
	"HI": "Hawaii",
	"ID": "Idaho",
	"IL": "Illinois",
	"IN": "Indiana",
	"IA": "Iowa",
	"KS": "Kansas",
	"KY": "Kentucky",
	"LA": "Louisiana",
	"ME": "Maine",
	"MD": "Maryland",
	"MA": "Massachusetts",
	"MI": "Michigan",
	"MN": "Minnesota",
	"MS": "Mississippi",
	"MO": "Missouri",
	"MT": "Montana",
	"NE": "Nebraska",
	"NV": "Nevada",
	"NH": "New Hampshire",
	"NJ": "New Jersey",
	"NM": "New Mexico",
	"NY": "New York",
	"NC": "North Carolina",
	"ND": "North Dakota",
	"OH": "Ohio",
	"OK": "Oklahoma",
	"OR": "Oregon",
	"PA": "Pennsylvania",
	"RI": "Rhode Island",
	"SC": "South Carolina",
	"SD": "South Dakota",
	"TN": "Tennessee",
	"TX": "Texas",
	"UT": "Utah",
	"VT": "Vermont",
	"VA": "Virginia",
	"WA": "Washington",
	"WV": "West Virginia",
	"WI": "Wisconsin",
	"WY": "Wyoming",

	// District and territories the NPS also indexes.
	"DC": "District of Columbia",
	"PR": "Puerto Rico",
	"GU": "Guam",
	"VI": "U.S. Virgin Islands",
	"AS": "American Samoa",
	"MP": "Northern Mariana Islands",
}

// nameToCode is keyed by lowercased, whitespace-collapsed names.
var nameToCode = func() map[string]Code {
	m := make(map[string]Code, len(codeToName)+2)
	for code, name := range codeToName {
		m[foldName(name)] = code
	}
	// Common alternate spellings.
	m["washington dc"] = "DC"
	m["washington d.c."] = "DC"
	m["virgin islands"] = "VI"
	return m
}()

// Normalize maps free-text state input to a two-letter code. Full names and known codes
// resolve case-insensitively; anything else is returned trimmed and uppercased.
func Normalize(input string) Code {
	if code, ok := Lookup(input); ok {
		return code
	}
	return Code(strings.Map(unicode.ToUpper, strings.TrimSpace(input)))
}

// Lookup resolves input to a known code and reports whether it was recognized.
func Lookup(input string) (Code, bool) {
	folded := foldName(input)
	if folded == "" {
		return "", false
	}
	if code, ok := nameToCode[folded]; ok {
		return code, true
	}
	if len(folded) == 2 {
		code := Code(strings.ToUpper(folded))
		if code.Known() {
			return code, true
		}
	}
	return "", false
}

// All returns every recognized code in ascending order.
func All() []Code {
	codes := make([]Code, 0, len(codeToName))
	for c := range codeToName {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func foldName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
