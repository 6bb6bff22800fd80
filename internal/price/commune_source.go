package price

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/util"
)

const communeSourceUrl = "https://www.data.gouv.fr/fr/datasets/indicateurs-immobiliers-par-commune-et-par-annee-prix-et-volumes-sur-la-periode-2014-2024/"

// CommuneYearStats is one vintage of the yearly commune aggregate.
type CommuneYearStats struct {
	PrixM2          *float64 `json:"prix_m2"`
	PrixMoyen       *float64 `json:"prix_moyen"`
	NbMutations     int      `json:"nb_mutations"`
	SurfaceMoyenne  *float64 `json:"surface_moy"`
}

// CommuneStats holds every vintage known for one commune, keyed by year.
type CommuneStats struct {
	InseeCode  string                      `json:"insee_code"`
	CodePostal string                      `json:"code_postal"`
	Department string                      `json:"department"`
	Years      map[string]CommuneYearStats `json:"years"`
}

// CommuneSource estimates prices from the yearly commune indicators
// published on data.gouv.fr. The indicators are read from a local JSON
// cache maintained by a separate download job; without that cache the
// source simply reports no data.
type CommuneSource struct {
	indicators map[string]CommuneStats
}

// NewCommuneSource loads the indicators cache at path. A missing file is
// not an error: the source starts empty and every estimate is "no data".
func NewCommuneSource(path string) *CommuneSource {
	source := &CommuneSource{indicators: make(map[string]CommuneStats)}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.GetLogger().WithField("File", path).Warn("no commune indicators cache, source will report no data")
		return source
	}

	if err := json.Unmarshal(raw, &source.indicators); err != nil {
		log.GetLogger().WithField("File", path).Warnf("unreadable commune indicators cache: %v", err)
		return source
	}

	log.GetLogger().WithField("CommuneCount", len(source.indicators)).Debug("loaded commune indicators")
	return source
}

func (s *CommuneSource) Kind() SourceKind { return SourceCommune }

func (s *CommuneSource) Name() string { return "Indicateurs commune (data.gouv.fr)" }

func (s *CommuneSource) Estimate(query Query) (*Estimate, error) {
	if len(s.indicators) == 0 || query.CodePostal == "" {
		return nil, nil
	}

	stats, ok := s.indicators[query.CodePostal]
	if !ok {
		// Fall back to any commune sharing the department prefix.
		dept := query.CodePostal[:2]
		keys := make([]string, 0, len(s.indicators))
		for key := range s.indicators {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if s.indicators[key].Department == dept || strings.HasPrefix(key, dept) {
				stats = s.indicators[key]
				ok = true
				break
			}
		}
	}
	if !ok || len(stats.Years) == 0 {
		return nil, nil
	}

	years := make([]string, 0, len(stats.Years))
	for year := range stats.Years {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	latestYear := years[0]
	latest := stats.Years[latestYear]
	if latest.PrixM2 == nil || *latest.PrixM2 <= 0 {
		return nil, nil
	}

	ageDays := 365
	if y, err := strconv.Atoi(latestYear); err == nil {
		ageDays = util.DaysSince(util.MidYear(y))
	}

	prixM2 := math.Round(*latest.PrixM2)
	var total *float64
	if query.Surface != nil {
		v := math.Round(prixM2 * *query.Surface)
		total = &v
	}

	comparables := make([]Comparable, 0, 5)
	for _, year := range years {
		if len(comparables) == 5 {
			break
		}
		vintage := stats.Years[year]
		if vintage.PrixM2 == nil {
			continue
		}
		comparables = append(comparables, Comparable{
			Label:  fmt.Sprintf("moyenne commune %s (%d mutations)", year, vintage.NbMutations),
			PrixM2: math.Round(*vintage.PrixM2),
			Source: "commune",
		})
	}

	return &Estimate{
		Kind:          s.Kind(),
		SourceName:    s.Name(),
		PrixM2:        &prixM2,
		PrixTotal:     total,
		NbDataPoints:  latest.NbMutations,
		DataAgeDays:   ageDays,
		GeographicFit: PrecisionCommune,
		Comparables:   comparables,
		SourceUrl:     communeSourceUrl,
		Notes:         fmt.Sprintf("moyenne commune %s (%d mutations)", latestYear, latest.NbMutations),
	}, nil
}
