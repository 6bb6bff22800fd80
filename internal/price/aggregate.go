package price

import "sort"

// Hard clipping bounds for price-per-m² samples. The low bound suppresses
// gift transfers, family transactions and data-entry errors; the high
// bound suppresses luxury sales and mis-keyed values.
const (
	MinPriceM2     = 500
	MaxPriceM2     = 15000
	MinSampleCount = 3
)

// Aggregate clips samples to [minPrice, maxPrice] and returns the median
// of the survivors together with their count. ok is false when fewer than
// minSamples survive; that is the "insufficient data" outcome, not an
// error. The input slice is not modified and any permutation of it yields
// identical output.
func Aggregate(samples []float64, minPrice, maxPrice float64, minSamples int) (median float64, count int, ok bool) {
	valid := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s >= minPrice && s <= maxPrice {
			valid = append(valid, s)
		}
	}

	if len(valid) < minSamples {
		return 0, len(valid), false
	}

	sort.Float64s(valid)

	n := len(valid)
	if n%2 == 0 {
		median = (valid[n/2-1] + valid[n/2]) / 2
	} else {
		median = valid[n/2]
	}

	return median, n, true
}
