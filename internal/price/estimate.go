package price

import "time"

// SourceKind identifies one of the closed set of price data sources.
type SourceKind string

const (
	SourceDVF      SourceKind = "dvf"      // official transaction history
	SourceCommune  SourceKind = "commune"  // aggregated commune statistics
	SourceListings SourceKind = "listings" // live asking prices
)

// Precision describes how closely a source's data matches the target
// property's location.
type Precision string

const (
	PrecisionExact      Precision = "exact"
	PrecisionCommune    Precision = "commune"
	PrecisionDepartment Precision = "department"
)

// Comparable is one raw data point kept for transparency alongside an
// estimate.
type Comparable struct {
	Label    string
	Prix     float64
	Surface  float64
	PrixM2   float64
	Date     *time.Time
	Url      string
	Source   string
}

// Estimate is a single source's opinion of price per m² for one query.
// A nil PrixM2 signals "insufficient data" and is a legitimate value, not
// a failure; it is distinct from a zero price.
type Estimate struct {
	Kind       SourceKind
	SourceName string

	PrixM2    *float64
	PrixTotal *float64

	NbDataPoints  int
	DataAgeDays   int
	GeographicFit Precision

	Comparables []Comparable
	SourceUrl   string
	Notes       string
}

// Confidence scores the estimate's metadata on a 0-100 scale. The score
// is the sum of three independently capped components and is monotonic in
// each input: more samples, fresher data and tighter geographic fit never
// lower it.
func (e *Estimate) Confidence() float64 {
	var score float64

	switch {
	case e.NbDataPoints >= 20:
		score += 40
	case e.NbDataPoints >= 10:
		score += 30
	case e.NbDataPoints >= 5:
		score += 20
	case e.NbDataPoints >= 3:
		score += 10
	}

	switch {
	case e.DataAgeDays <= 180:
		score += 30
	case e.DataAgeDays <= 365:
		score += 20
	case e.DataAgeDays <= 730:
		score += 10
	}

	switch e.GeographicFit {
	case PrecisionExact:
		score += 30
	case PrecisionCommune:
		score += 20
	case PrecisionDepartment:
		score += 10
	}

	return score
}
