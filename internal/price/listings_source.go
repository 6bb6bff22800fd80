package price

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	// Asking prices systematically exceed realized sale prices; listing
	// medians are corrected down by this factor.
	askingPricePremium = 0.10

	listingsCacheTTL     = 24 * time.Hour
	surfaceBucketM2      = 20
	maxListingComparable = 15
)

// FeedListing is one snippet returned by an external listing feed.
type FeedListing struct {
	Titre   string
	Prix    float64
	Surface float64
	Url     string
	Feed    string
}

// Feed is an external listing provider queried by the listings source.
// A feed that errors simply contributes zero listings.
type Feed interface {
	Name() string
	Search(query Query) ([]FeedListing, error)
}

type cachedListingEstimate struct {
	estimate Estimate
	cachedAt time.Time
}

// ListingsSource estimates prices from current asking prices across
// several feeds. Results are cached per (postal code, type, surface
// bucket) for a bounded duration; the cache belongs to this source, not
// to the estimation core.
type ListingsSource struct {
	feeds []Feed
	cache *xsync.MapOf[string, cachedListingEstimate]
	ttl   time.Duration
	now   func() time.Time
}

func NewListingsSource(feeds []Feed) *ListingsSource {
	return &ListingsSource{
		feeds: feeds,
		cache: xsync.NewMapOf[string, cachedListingEstimate](),
		ttl:   listingsCacheTTL,
		now:   time.Now,
	}
}

func (s *ListingsSource) Kind() SourceKind { return SourceListings }

func (s *ListingsSource) Name() string { return "Annonces en ligne" }

func cacheKey(query Query) string {
	bucket := "any"
	if query.Surface != nil && *query.Surface > 0 {
		bucket = fmt.Sprintf("%d", int(*query.Surface/surfaceBucketM2)*surfaceBucketM2)
	}
	return fmt.Sprintf("%s_%s_%s", query.CodePostal, query.TypeBien, bucket)
}

func (s *ListingsSource) Estimate(query Query) (*Estimate, error) {
	if query.CodePostal == "" {
		return nil, nil
	}

	key := cacheKey(query)
	if cached, ok := s.cache.Load(key); ok && s.now().Sub(cached.cachedAt) < s.ttl {
		estimate := cached.estimate
		return &estimate, nil
	}

	logger := log.GetLogger().WithField("CodePostal", query.CodePostal)

	var all []FeedListing
	for _, feed := range s.feeds {
		listings, err := feed.Search(query)
		if err != nil {
			// A failing feed degrades to zero listings, never aborts.
			logger.WithField("Feed", feed.Name()).Warnf("listing feed failed: %v", err)
			continue
		}
		all = append(all, listings...)
	}

	// Surface filters can be too narrow; retry the feeds unconstrained
	// before giving up.
	if len(all) == 0 && query.Surface != nil {
		broad := query
		broad.Surface = nil
		for _, feed := range s.feeds {
			listings, err := feed.Search(broad)
			if err != nil {
				continue
			}
			all = append(all, listings...)
		}
	}

	if len(all) == 0 {
		return nil, nil
	}

	var samples []float64
	var comparables []Comparable
	for _, listing := range all {
		if listing.Prix <= 0 || listing.Surface <= 0 {
			continue
		}
		prixM2 := listing.Prix / listing.Surface
		if prixM2 < MinPriceM2 || prixM2 > MaxPriceM2 {
			continue
		}
		samples = append(samples, prixM2)
		comparables = append(comparables, Comparable{
			Label:   listing.Titre,
			Prix:    listing.Prix,
			Surface: listing.Surface,
			PrixM2:  math.Round(prixM2),
			Url:     listing.Url,
			Source:  listing.Feed,
		})
	}

	median, count, ok := Aggregate(samples, MinPriceM2, MaxPriceM2, MinSampleCount)
	if !ok {
		logger.WithField("ValidListings", count).Debug("not enough listings for an estimate")
		return nil, nil
	}

	corrected := math.Round(median * (1 - askingPricePremium))

	sort.SliceStable(comparables, func(i, j int) bool {
		return math.Abs(comparables[i].PrixM2-median) < math.Abs(comparables[j].PrixM2-median)
	})
	if len(comparables) > maxListingComparable {
		comparables = comparables[:maxListingComparable]
	}

	var total *float64
	if query.Surface != nil {
		v := math.Round(corrected * *query.Surface)
		total = &v
	}

	estimate := Estimate{
		Kind:          s.Kind(),
		SourceName:    s.Name(),
		PrixM2:        &corrected,
		PrixTotal:     total,
		NbDataPoints:  count,
		DataAgeDays:   1,
		GeographicFit: PrecisionCommune,
		Comparables:   comparables,
		Notes:         fmt.Sprintf("prix demandés -%.0f%% (%d annonces)", askingPricePremium*100, count),
	}

	s.cache.Store(key, cachedListingEstimate{estimate: estimate, cachedAt: s.now()})

	result := estimate
	return &result, nil
}
