package reconcile

import (
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/geo"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
)

// Stats summarizes one reconciliation run.
type Stats struct {
	Processed     int
	MatchesFound  int
	MergedRecords int
	OnlySourceA   int
	OnlySourceB   int
}

// Reconcile runs the full pipeline over two source batches: greedy
// matching, field-level merging of the pairs, and geo enrichment of
// matched and unmatched records alike. Unmatched listings pass through
// as single-source records. Input order is preserved: merged pairs first
// (in listA order), then A-only, then B-only.
func Reconcile(listA, listB []*auction.Listing, threshold float64) ([]*auction.MergedRecord, Stats) {
	stats := Stats{Processed: len(listA) + len(listB)}

	matches := FindMatches(listA, listB, threshold)
	stats.MatchesFound = len(matches)

	matchedA := make(map[int]struct{}, len(matches))
	matchedB := make(map[int]struct{}, len(matches))

	results := make([]*auction.MergedRecord, 0, len(listA)+len(listB))
	for _, match := range matches {
		record := Merge(listA[match.IndexA], listB[match.IndexB])
		results = append(results, record)
		matchedA[match.IndexA] = struct{}{}
		matchedB[match.IndexB] = struct{}{}

		if len(record.Notes) > 0 {
			log.GetLogger().
				WithField("Ville", record.Ville).
				WithField("MatchScore", match.Score).
				Debugf("merged listing pair: %v", record.Notes)
		}
	}
	stats.MergedRecords = len(results)

	for i, listing := range listA {
		if _, ok := matchedA[i]; ok {
			continue
		}
		results = append(results, standalone(listing))
		stats.OnlySourceA++
	}
	for i, listing := range listB {
		if _, ok := matchedB[i]; ok {
			continue
		}
		results = append(results, standalone(listing))
		stats.OnlySourceB++
	}

	log.GetLogger().
		WithField("Merged", stats.MergedRecords).
		WithField("OnlySourceA", stats.OnlySourceA).
		WithField("OnlySourceB", stats.OnlySourceB).
		Info("reconciled source batches")

	return results, stats
}

// standalone wraps an unmatched listing into a record and enriches it.
// With a single contributing source there is nothing to corroborate, so
// the merge confidence stays at the neutral 0.5.
func standalone(listing *auction.Listing) *auction.MergedRecord {
	record := &auction.MergedRecord{
		Listing:         *listing,
		FieldSources:    make(map[string]string),
		MergeConfidence: 0.5,
	}
	geo.Enrich(record)
	return record
}
