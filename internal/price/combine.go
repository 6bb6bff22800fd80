package price

import "math"

// Reliability is the qualitative trust bucket of a combined estimate.
type Reliability string

const (
	ReliabilityHigh         Reliability = "high"
	ReliabilityMedium       Reliability = "medium"
	ReliabilityLow          Reliability = "low"
	ReliabilityInsufficient Reliability = "insufficient"
)

// Combined aggregates the opinions of every contributing source for one
// query.
type Combined struct {
	Estimates []*Estimate

	// PrixM2 is the confidence-weighted combined price. nil iff no
	// contributing estimate carries a price.
	PrixM2    *float64
	PrixM2Min *float64
	PrixM2Max *float64

	// Per-source-type breakdown for display; last seen value wins when a
	// kind contributes twice.
	DvfPrixM2      *float64
	CommunePrixM2  *float64
	ListingsPrixM2 *float64

	// SourcesAgreement is 0-100: 100 means identical prices, computed
	// from the coefficient of variation. Fixed at 50 with a single
	// estimate; zero-valued (not computed) with none.
	SourcesAgreement float64

	Reliability      Reliability
	ReliabilityScore float64
}

// Combine folds a list of estimates into a Combined result. Estimates
// without a price are dropped. The computation is a pure function of the
// full list; nothing is accumulated across calls.
func Combine(estimates []*Estimate) Combined {
	valid := make([]*Estimate, 0, len(estimates))
	for _, e := range estimates {
		if e != nil && e.PrixM2 != nil {
			valid = append(valid, e)
		}
	}

	combined := Combined{
		Estimates:   valid,
		Reliability: ReliabilityInsufficient,
	}

	if len(valid) == 0 {
		return combined
	}

	prices := make([]float64, len(valid))
	weights := make([]float64, len(valid))
	var weightSum, priceSum float64
	for i, e := range valid {
		prices[i] = *e.PrixM2
		weights[i] = e.Confidence()
		weightSum += weights[i]
		priceSum += prices[i]
	}

	var price float64
	if weightSum > 0 {
		for i := range prices {
			price += prices[i] * weights[i]
		}
		price /= weightSum
	} else {
		price = priceSum / float64(len(prices))
	}
	combined.PrixM2 = &price

	minPrice, maxPrice := prices[0], prices[0]
	for _, p := range prices[1:] {
		minPrice = math.Min(minPrice, p)
		maxPrice = math.Max(maxPrice, p)
	}
	combined.PrixM2Min = &minPrice
	combined.PrixM2Max = &maxPrice

	for _, e := range valid {
		v := *e.PrixM2
		switch e.Kind {
		case SourceDVF:
			combined.DvfPrixM2 = &v
		case SourceCommune:
			combined.CommunePrixM2 = &v
		case SourceListings:
			combined.ListingsPrixM2 = &v
		}
	}

	combined.SourcesAgreement = agreement(prices)

	// Reliability: average source confidence, a bonus per contributing
	// source, and the agreement term, clamped to [0, 100].
	avgConfidence := weightSum / float64(len(valid))
	sourceBonus := math.Min(20, float64(len(valid))*10)
	score := avgConfidence*0.5 + sourceBonus + combined.SourcesAgreement*0.3
	combined.ReliabilityScore = math.Min(100, score)

	// "high" additionally requires corroboration from at least two
	// independent sources; one very confident source is not enough.
	switch {
	case combined.ReliabilityScore >= 70 && len(valid) >= 2:
		combined.Reliability = ReliabilityHigh
	case combined.ReliabilityScore >= 40:
		combined.Reliability = ReliabilityMedium
	case combined.ReliabilityScore > 0:
		combined.Reliability = ReliabilityLow
	}

	return combined
}

func agreement(prices []float64) float64 {
	if len(prices) < 2 {
		return 50
	}

	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	if mean <= 0 {
		return 0
	}

	var variance float64
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(prices))

	cv := math.Sqrt(variance) / mean
	return math.Max(0, 100-cv*200)
}
