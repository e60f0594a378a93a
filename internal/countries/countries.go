// Package countries maps country display names to ISO 3166-1 alpha-2 codes.
package countries

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Names are stored folded (lowercase, no diacritics) so that "Japón",
// "japon" and "JAPÓN" all resolve to JP.
var codes = map[string]string{
	"argentina":                  "AR",
	"australia":                  "AU",
	"brasil":                     "BR",
	"brazil":                     "BR",
	"cambodia":                   "KH",
	"camboya":                    "KH",
	"canada":                     "CA",
	"chile":                      "CL",
	"china":                      "CN",
	"colombia":                   "CO",
	"corea del sur":              "KR",
	"south korea":                "KR",
	"korea":                      "KR",
	"republic of korea":          "KR",
	"espana":                     "ES",
	"spain":                      "ES",
	"estados unidos":             "US",
	"united states":              "US",
	"usa":                        "US",
	"filipinas":                  "PH",
	"philippines":                "PH",
	"francia":                    "FR",
	"france":                     "FR",
	"hong kong":                  "HK",
	"india":                      "IN",
	"indonesia":                  "ID",
	"italia":                     "IT",
	"italy":                      "IT",
	"japon":                      "JP",
	"japan":                      "JP",
	"laos":                       "LA",
	"malasia":                    "MY",
	"malaysia":                   "MY",
	"mexico":                     "MX",
	"myanmar":                    "MM",
	"peru":                       "PE",
	"reino unido":                "GB",
	"united kingdom":             "GB",
	"singapur":                   "SG",
	"singapore":                  "SG",
	"tailandia":                  "TH",
	"thailand":                   "TH",
	"taiwan":                     "TW",
	"vietnam":                    "VN",
	"viet nam":                   "VN",
	"alemania":                   "DE",
	"germany":                    "DE",
	"uruguay":                    "UY",
	"venezuela":                  "VE",
	"israel":                     "IL",
	"turquia":                    "TR",
	"turkey":                     "TR",
	"republica popular de china": "CN",
}

// Code returns the ISO code for name, or "" when the name is unknown.
func Code(name string) string {
	return codes[Fold(name)]
}

// Fold lowercases name, strips diacritics and collapses inner whitespace.
func Fold(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
