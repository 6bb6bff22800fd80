package price

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
)

// Analysis is the full multi-source price picture for one query.
type Analysis struct {
	Query     Query
	MiseAPrix *float64

	Combined Combined

	PrixM2Recommande *float64
	PrixTotalEstime  *float64

	// DecoteVsMarche is the percentage by which the estimated market
	// value exceeds the auction starting price. Requires a price, a
	// surface and a starting price.
	DecoteVsMarche *float64

	Notes    []string
	Warnings []string

	AnalyzedAt time.Time
}

// Analyzer queries the closed set of price sources and combines their
// estimates. Sources run concurrently; a failing source degrades to "no
// estimate" and the combination tolerates any number of contributors.
type Analyzer struct {
	sources []Source
}

func NewAnalyzer(sources ...Source) *Analyzer {
	return &Analyzer{sources: sources}
}

// EstimatePrice runs every source for the query and folds the results.
// miseAPrix, when given, adds the discount-vs-market computation.
func (a *Analyzer) EstimatePrice(query Query, miseAPrix *float64) Analysis {
	analysis := Analysis{
		Query:      query,
		MiseAPrix:  miseAPrix,
		AnalyzedAt: time.Now(),
	}

	logger := log.GetLogger().
		WithField("CodePostal", query.CodePostal).
		WithField("TypeBien", query.TypeBien)

	type outcome struct {
		estimate *Estimate
		err      error
	}

	outcomes := make([]outcome, len(a.sources))
	var wg sync.WaitGroup
	for i, source := range a.sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()
			estimate, err := source.Estimate(query)
			outcomes[i] = outcome{estimate: estimate, err: err}
		}(i, source)
	}
	wg.Wait()

	// Completion order is irrelevant: estimates are folded in the fixed
	// source order so output is deterministic.
	var estimates []*Estimate
	for i, source := range a.sources {
		switch {
		case outcomes[i].err != nil:
			logger.WithField("Source", source.Name()).Warnf("price source failed: %v", outcomes[i].err)
			analysis.Warnings = append(analysis.Warnings,
				fmt.Sprintf("erreur %s: %v", source.Name(), outcomes[i].err))
		case outcomes[i].estimate == nil || outcomes[i].estimate.PrixM2 == nil:
			analysis.Notes = append(analysis.Notes,
				fmt.Sprintf("%s: données insuffisantes", source.Name()))
		default:
			e := outcomes[i].estimate
			estimates = append(estimates, e)
			analysis.Notes = append(analysis.Notes,
				fmt.Sprintf("%s: %.0f €/m² (%d données, confiance %.0f%%)",
					source.Name(), *e.PrixM2, e.NbDataPoints, e.Confidence()))
		}
	}

	analysis.Combined = Combine(estimates)
	a.recommend(&analysis)

	return analysis
}

func (a *Analyzer) recommend(analysis *Analysis) {
	combined := &analysis.Combined

	if len(combined.Estimates) == 0 {
		analysis.Warnings = append(analysis.Warnings, "aucune source de données disponible")
		return
	}

	if combined.PrixM2 != nil {
		recommended := math.Round(*combined.PrixM2)
		analysis.PrixM2Recommande = &recommended

		if analysis.Query.Surface != nil {
			total := math.Round(recommended * *analysis.Query.Surface)
			analysis.PrixTotalEstime = &total
		}
	}

	if len(combined.Estimates) >= 2 {
		switch {
		case combined.SourcesAgreement >= 80:
			analysis.Notes = append(analysis.Notes,
				fmt.Sprintf("sources en accord (%.0f%%)", combined.SourcesAgreement))
		case combined.SourcesAgreement >= 50:
			analysis.Notes = append(analysis.Notes,
				fmt.Sprintf("accord modéré entre sources (%.0f%%)", combined.SourcesAgreement))
		default:
			analysis.Warnings = append(analysis.Warnings,
				fmt.Sprintf("désaccord entre sources (%.0f%%), plage %.0f - %.0f €/m²",
					combined.SourcesAgreement, *combined.PrixM2Min, *combined.PrixM2Max))
		}
	}

	switch combined.Reliability {
	case ReliabilityLow:
		analysis.Warnings = append(analysis.Warnings, "fiabilité faible: peu de données ou sources en désaccord")
	case ReliabilityInsufficient:
		analysis.Warnings = append(analysis.Warnings, "données insuffisantes pour une estimation fiable")
	}

	if analysis.MiseAPrix != nil && analysis.PrixTotalEstime != nil && *analysis.PrixTotalEstime > 0 {
		decote := (*analysis.PrixTotalEstime - *analysis.MiseAPrix) / *analysis.PrixTotalEstime * 100
		analysis.DecoteVsMarche = &decote
	}
}
