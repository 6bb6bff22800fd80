package util

import "strings"

var diacriticReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a", "ä", "a",
	"ù", "u", "û", "u", "ü", "u",
	"ô", "o", "ö", "o",
	"î", "i", "ï", "i",
	"ç", "c",
	"-", " ", "'", " ",
	" ", " ",
)

// NormalizeText prepares free text for comparison: lower-cased, French
// diacritics folded to base letters, hyphens and apostrophes turned into
// spaces, whitespace collapsed.
func NormalizeText(input string) string {
	result := strings.ToLower(strings.TrimSpace(input))
	result = diacriticReplacer.Replace(result)
	result = strings.Join(strings.Fields(result), " ")

	return result
}

// SimilarityRatio returns a similarity score in [0, 1] between two strings,
// computed on their normalized forms. The score is the classic sequence
// ratio 2*LCS/(len(a)+len(b)), so identical strings score 1 and disjoint
// strings score 0. Empty input on either side scores 0.
func SimilarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	an := NormalizeText(a)
	bn := NormalizeText(b)
	if an == "" || bn == "" {
		return 0
	}
	if an == bn {
		return 1
	}

	lcs := longestCommonSubsequence(an, bn)
	return float64(2*lcs) / float64(len([]rune(an))+len([]rune(bn)))
}

func longestCommonSubsequence(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
