// Package jurisdiction maps a country of residence to the regulatory bucket
// that downstream compliance rules key on.
package jurisdiction

import "strings"

// Jurisdiction is a regulatory bucket.
type Jurisdiction string

const (
	DE    Jurisdiction = "DE"
	EU    Jurisdiction = "EU"
	US    Jurisdiction = "US"
	Other Jurisdiction = "Other"
)

// euMembers lists ISO 3166-1 alpha-2 codes of EU member states other than DE,
// which has its own bucket.
var euMembers = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "GR": true, "HU": true,
	"IE": true, "IT": true, "LV": true, "LT": true, "LU": true, "MT": true,
	"NL": true, "PL": true, "PT": true, "RO": true, "SK": true, "SI": true,
	"ES": true, "SE": true,
}

// Resolve maps a country code to its jurisdiction. Unknown or malformed codes
// resolve to Other.
func Resolve(countryCode string) Jurisdiction {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	switch {
	case code == "DE":
		return DE
	case code == "US":
		return US
	case euMembers[code]:
		return EU
	default:
		return Other
	}
}

// Parse accepts an explicitly supplied jurisdiction, case-insensitively.
func Parse(s string) (Jurisdiction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DE":
		return DE, true
	case "EU":
		return EU, true
	case "US":
		return US, true
	case "OTHER":
		return Other, true
	}
	return "", false
}

func (j Jurisdiction) String() string {
	return string(j)
}
