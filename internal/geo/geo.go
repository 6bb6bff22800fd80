// Package geo holds the static postal code / commune reference table for
// the monitored area (Paris and petite couronne) and the enrichment pass
// that fills and validates the location fields of reconciled records.
package geo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/util"
)

// postalByCity maps the normalized commune name to its main postal code.
var postalByCity = map[string]string{
	// Hauts-de-Seine (92)
	"boulogne billancourt":  "92100",
	"nanterre":              "92000",
	"courbevoie":            "92400",
	"colombes":              "92700",
	"asnieres sur seine":    "92600",
	"rueil malmaison":       "92500",
	"levallois perret":      "92300",
	"issy les moulineaux":   "92130",
	"neuilly sur seine":     "92200",
	"antony":                "92160",
	"clamart":               "92140",
	"montrouge":             "92120",
	"meudon":                "92190",
	"suresnes":              "92150",
	"puteaux":               "92800",
	"gennevilliers":         "92230",
	"clichy":                "92110",
	"malakoff":              "92240",
	"vanves":                "92170",
	"chatillon":             "92320",
	"bagneux":               "92220",
	"fontenay aux roses":    "92260",
	"le plessis robinson":   "92350",
	"sceaux":                "92330",
	"bourg la reine":        "92340",
	"chatenay malabry":      "92290",
	// Seine-Saint-Denis (93)
	"saint denis":           "93200",
	"montreuil":             "93100",
	"aubervilliers":         "93300",
	"aulnay sous bois":      "93600",
	"drancy":                "93700",
	"noisy le grand":        "93160",
	"pantin":                "93500",
	"bondy":                 "93140",
	"epinay sur seine":      "93800",
	"sevran":                "93270",
	"le blanc mesnil":       "93150",
	"bobigny":               "93000",
	"saint ouen":            "93400",
	"rosny sous bois":       "93110",
	"livry gargan":          "93190",
	"la courneuve":          "93120",
	"bagnolet":              "93170",
	"le pre saint gervais":  "93310",
	"les lilas":             "93260",
	"romainville":           "93230",
	"noisy le sec":          "93130",
	"villepinte":            "93420",
	"tremblay en france":    "93290",
	"stains":                "93240",
	// Val-de-Marne (94)
	"creteil":               "94000",
	"vitry sur seine":       "94400",
	"saint maur des fosses": "94100",
	"champigny sur marne":   "94500",
	"ivry sur seine":        "94200",
	"maisons alfort":        "94700",
	"fontenay sous bois":    "94120",
	"villejuif":             "94800",
	"vincennes":             "94300",
	"alfortville":           "94140",
	"choisy le roi":         "94600",
	"le kremlin bicetre":    "94270",
	"cachan":                "94230",
	"charenton le pont":     "94220",
	"nogent sur marne":      "94130",
	"joinville le pont":     "94340",
	"saint mande":           "94160",
	"thiais":                "94320",
	"orly":                  "94310",
	"gentilly":              "94250",
	"arcueil":               "94110",
	"fresnes":               "94260",
	"le perreux sur marne":  "94170",
	"bry sur marne":         "94360",
	"sucy en brie":          "94370",
}

var cityByPostal = map[string]string{}

func init() {
	// Paris arrondissements 75001..75020.
	for i := 1; i <= 20; i++ {
		code := fmt.Sprintf("750%02d", i)
		name := fmt.Sprintf("paris %deme", i)
		if i == 1 {
			name = "paris 1er"
		}
		postalByCity[name] = code
		cityByPostal[code] = name
	}
	postalByCity["paris"] = "75001"

	for city, code := range postalByCity {
		if _, taken := cityByPostal[code]; !taken {
			cityByPostal[code] = city
		}
	}
}

// districtRe matches city names carrying a numbered district, e.g.
// "Paris 14ème" or "Marseille 3eme arrondissement".
var districtRe = regexp.MustCompile(`^(paris|marseille|lyon)\s*(\d{1,2})`)

// districtPrefix gives the 3-digit postal prefix of cities whose districts
// have their own postal codes.
var districtPrefix = map[string]string{
	"paris":     "750",
	"marseille": "130",
	"lyon":      "690",
}

// CityForPostalCode returns the commune name registered for a postal code,
// in display casing.
func CityForPostalCode(codePostal string) (string, bool) {
	city, ok := cityByPostal[codePostal]
	if !ok {
		return "", false
	}
	return displayName(city), true
}

// PostalCodeForCity resolves a free-text city name to its postal code,
// synthesizing district codes for Paris/Marseille/Lyon ("Paris 14ème" →
// "75014").
func PostalCodeForCity(ville string) (string, bool) {
	norm := util.NormalizeText(ville)
	if norm == "" {
		return "", false
	}

	if m := districtRe.FindStringSubmatch(norm); m != nil {
		district, err := strconv.Atoi(m[2])
		if err == nil && district >= 1 && district <= 20 {
			return fmt.Sprintf("%s%02d", districtPrefix[m[1]], district), true
		}
	}

	code, ok := postalByCity[norm]
	return code, ok
}

// KnownCity reports whether a free-text city name resolves against the
// reference table.
func KnownCity(ville string) bool {
	_, ok := PostalCodeForCity(ville)
	return ok
}

// Department returns the department prefix of a postal code.
func Department(codePostal string) string {
	if len(codePostal) < 2 {
		return ""
	}
	return codePostal[:2]
}

func displayName(normalized string) string {
	words := strings.Fields(normalized)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// minCitySimilarity is the threshold below which a free-text city is
// considered inconsistent with its postal code and gets overwritten.
const minCitySimilarity = 0.6

// Enrich fills and validates the location fields of a record against the
// reference table. Every change is appended to the record notes; nothing
// is corrected silently. Inferred fields are tagged "inferred" in the
// provenance map.
func Enrich(record *auction.MergedRecord) {
	if record.FieldSources == nil {
		record.FieldSources = make(map[string]string)
	}

	if record.CodePostal != "" && record.Ville == "" {
		if city, ok := CityForPostalCode(record.CodePostal); ok {
			record.Ville = city
			record.FieldSources["ville"] = "inferred"
			record.Notes = append(record.Notes,
				fmt.Sprintf("ville inferred from postal code: %s", city))
		}
	}

	if record.Ville != "" && record.CodePostal == "" {
		if code, ok := PostalCodeForCity(record.Ville); ok {
			record.CodePostal = code
			record.FieldSources["code_postal"] = "inferred"
			record.Notes = append(record.Notes,
				fmt.Sprintf("postal code inferred from city: %s", code))
		}
	}

	if record.CodePostal != "" && record.Ville != "" {
		if expected, ok := CityForPostalCode(record.CodePostal); ok {
			if util.SimilarityRatio(record.Ville, expected) < minCitySimilarity {
				old := record.Ville
				record.Ville = expected
				record.FieldSources["ville"] = "inferred"
				record.Notes = append(record.Notes,
					fmt.Sprintf("ville corrected from %q to %q (based on postal code %s)",
						old, expected, record.CodePostal))
			}
		}
	}

	if record.CodePostal != "" && record.Department == "" {
		record.Department = Department(record.CodePostal)
		record.FieldSources["department"] = "inferred"
		record.Notes = append(record.Notes,
			fmt.Sprintf("department inferred: %s", record.Department))
	}
}
