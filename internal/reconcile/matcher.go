// Package reconcile decides whether listings scraped from different
// sources describe the same property, merges matched pairs field by
// field, and enriches the results against the geo reference table.
package reconcile

import (
	"math"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/util"
)

// DefaultMatchThreshold is the minimum score under which two listings are
// not considered the same property.
const DefaultMatchThreshold = 0.5

// Signal weights. A signal only enters the score (and its weight the
// denominator) when the field is populated on both sides, so missing data
// never penalizes a pair.
const (
	weightDateVente = 0.30
	weightTribunal  = 0.15
	weightMiseAPrix = 0.20
	weightVille     = 0.15
	weightTypeBien  = 0.10
	weightSurface   = 0.10

	tribunalSimilarityMin = 0.7
	villeSimilarityMin    = 0.8
	priceRelDiffMax       = 0.10
	surfaceRelDiffMax     = 0.05
)

// MatchScore rates how likely a and b describe the same property, in
// [0, 1].
func MatchScore(a, b *auction.Listing) float64 {
	var score, weights float64

	if a.DateVente != nil && b.DateVente != nil {
		if a.DateVente.Equal(*b.DateVente) {
			score += weightDateVente
		}
		weights += weightDateVente
	}

	if a.Tribunal != "" && b.Tribunal != "" {
		if util.SimilarityRatio(a.Tribunal, b.Tribunal) > tribunalSimilarityMin {
			score += weightTribunal
		}
		weights += weightTribunal
	}

	if a.MiseAPrix != nil && b.MiseAPrix != nil {
		if relativeDiff(*a.MiseAPrix, *b.MiseAPrix) < priceRelDiffMax {
			score += weightMiseAPrix
		}
		weights += weightMiseAPrix
	}

	if a.Ville != "" && b.Ville != "" {
		if util.SimilarityRatio(a.Ville, b.Ville) > villeSimilarityMin {
			score += weightVille
		}
		weights += weightVille
	}

	if a.TypeBien != "" && b.TypeBien != "" {
		if a.TypeBien == b.TypeBien {
			score += weightTypeBien
		}
		weights += weightTypeBien
	}

	if a.Surface != nil && b.Surface != nil {
		if relativeDiff(*a.Surface, *b.Surface) < surfaceRelDiffMax {
			score += weightSurface
		}
		weights += weightSurface
	}

	if weights == 0 {
		return 0
	}
	return score / weights
}

func relativeDiff(a, b float64) float64 {
	avg := (a + b) / 2
	if avg == 0 {
		return 0
	}
	return math.Abs(a-b) / avg
}

// Match pairs a listing of list A with a listing of list B by index.
type Match struct {
	IndexA int
	IndexB int
	Score  float64
}

// FindMatches assigns listings greedily one-to-one: for each entry of
// listA in order, the best still-unconsumed entry of listB clearing the
// threshold wins. Ties keep the first candidate in iteration order; the
// input order is therefore part of the contract and must be stable.
func FindMatches(listA, listB []*auction.Listing, threshold float64) []Match {
	var matches []Match
	consumed := make(map[int]struct{}, len(listB))

	for i, a := range listA {
		bestScore := 0.0
		bestIdx := -1

		for j, b := range listB {
			if _, used := consumed[j]; used {
				continue
			}

			score := MatchScore(a, b)
			if score > bestScore && score >= threshold {
				bestScore = score
				bestIdx = j
			}
		}

		if bestIdx >= 0 {
			matches = append(matches, Match{IndexA: i, IndexB: bestIdx, Score: bestScore})
			consumed[bestIdx] = struct{}{}
		}
	}

	return matches
}
