package price

// Query identifies the property a price estimate is requested for.
// Surface is optional; sources fall back to an assumed surface when it is
// missing.
type Query struct {
	CodePostal string
	Ville      string
	TypeBien   string
	Surface    *float64
}

// SurfaceOrDefault returns the queried surface, or fallback when none was
// given.
func (q Query) SurfaceOrDefault(fallback float64) float64 {
	if q.Surface != nil && *q.Surface > 0 {
		return *q.Surface
	}
	return fallback
}

// Source is one price data source. The set of implementations is closed:
// DVF transactions, commune aggregates and live listings. Estimate
// returns (nil, nil) or an Estimate with a nil price for "insufficient
// data"; errors are reserved for genuine source failures, which the
// caller degrades to "no estimate".
type Source interface {
	Kind() SourceKind
	Name() string
	Estimate(query Query) (*Estimate, error)
}
