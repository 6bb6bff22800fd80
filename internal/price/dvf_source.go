package price

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/dvf"
)

const (
	dvfSourceUrl = "https://app.dvf.etalab.gouv.fr/"

	// Comparable search window.
	dvfSurfaceTolerancePct = 30
	dvfMonthsWindow        = 24
	dvfComparablesLimit    = 50
	dvfDefaultSurface      = 60

	maxComparablesKept = 10
)

// dvfTypeLocal maps our property types to the DVF type_local vocabulary.
var dvfTypeLocal = map[string]string{
	"appartement":      "Appartement",
	"maison":           "Maison",
	"local_commercial": "Local",
	"parking":          "Dépendance",
	"terrain":          "Terrain",
}

// DVFSource estimates prices from the official transaction history.
type DVFSource struct {
	client *dvf.Client
}

func NewDVFSource(client *dvf.Client) *DVFSource {
	return &DVFSource{client: client}
}

func (s *DVFSource) Kind() SourceKind { return SourceDVF }

func (s *DVFSource) Name() string { return "DVF (transactions officielles)" }

func (s *DVFSource) Estimate(query Query) (*Estimate, error) {
	if query.CodePostal == "" {
		return nil, nil
	}

	typeLocal, ok := dvfTypeLocal[query.TypeBien]
	if !ok {
		typeLocal = "Appartement"
	}
	surface := query.SurfaceOrDefault(dvfDefaultSurface)

	precision := PrecisionCommune
	transactions, err := s.client.FindComparableSales(
		query.CodePostal, surface, typeLocal,
		dvfSurfaceTolerancePct, dvfMonthsWindow, dvfComparablesLimit)
	if err != nil {
		var noData *dvf.NoDataError
		if errors.As(err, &noData) {
			// Missing extracts on disk are "insufficient data", not a failure.
			return nil, nil
		}
		return nil, fmt.Errorf("finding comparable sales: %w", err)
	}

	if len(transactions) < MinSampleCount && len(query.CodePostal) >= 2 {
		// Postal code has too little history, widen to the department.
		dateMin := time.Now().AddDate(0, -dvfMonthsWindow, 0)
		widened, err := s.client.Search(dvf.SearchParams{
			Department: query.CodePostal[:2],
			TypeLocal:  typeLocal,
			DateMin:    &dateMin,
			SurfaceMin: surface * (1 - dvfSurfaceTolerancePct/100.0),
			SurfaceMax: surface * (1 + dvfSurfaceTolerancePct/100.0),
		})
		if err == nil && len(widened) > len(transactions) {
			if len(widened) > dvfComparablesLimit {
				widened = widened[:dvfComparablesLimit]
			}
			transactions = widened
			precision = PrecisionDepartment
		}
	}

	if len(transactions) == 0 {
		return nil, nil
	}

	var samples []float64
	var comparables []Comparable
	var oldest *time.Time
	for _, t := range transactions {
		if t.PrixM2 == nil {
			continue
		}
		if *t.PrixM2 < MinPriceM2 || *t.PrixM2 > MaxPriceM2 {
			continue
		}
		samples = append(samples, *t.PrixM2)
		if len(comparables) < maxComparablesKept {
			comparables = append(comparables, Comparable{
				Label:   fmt.Sprintf("%s, %s", t.Adresse, t.Commune),
				Prix:    t.ValeurFonciere,
				Surface: *t.SurfaceReelle,
				PrixM2:  math.Round(*t.PrixM2),
				Date:    t.DateMutation,
				Source:  "dvf",
			})
		}
		if t.DateMutation != nil && (oldest == nil || t.DateMutation.Before(*oldest)) {
			oldest = t.DateMutation
		}
	}

	median, count, ok := Aggregate(samples, MinPriceM2, MaxPriceM2, MinSampleCount)
	if !ok {
		return &Estimate{
			Kind:          s.Kind(),
			SourceName:    s.Name(),
			NbDataPoints:  count,
			GeographicFit: precision,
			SourceUrl:     dvfSourceUrl,
			Notes:         fmt.Sprintf("données insuffisantes (%d transactions)", count),
		}, nil
	}

	ageDays := dvfMonthsWindow * 30
	if oldest != nil {
		ageDays = int(time.Since(*oldest).Hours() / 24)
	}

	median = math.Round(median)
	var total *float64
	if query.Surface != nil {
		v := math.Round(median * *query.Surface)
		total = &v
	}

	return &Estimate{
		Kind:          s.Kind(),
		SourceName:    s.Name(),
		PrixM2:        &median,
		PrixTotal:     total,
		NbDataPoints:  count,
		DataAgeDays:   ageDays,
		GeographicFit: precision,
		Comparables:   comparables,
		SourceUrl:     dvfSourceUrl,
		Notes:         fmt.Sprintf("médiane de %d transactions sur %d mois", count, dvfMonthsWindow),
	}, nil
}
