package reconcile

import (
	"testing"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
)

func fptr(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

var saleDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

func fullListing(source string) *auction.Listing {
	return &auction.Listing{
		Source:    source,
		Ville:     "Boulogne-Billancourt",
		Tribunal:  "Tribunal judiciaire de Nanterre",
		TypeBien:  auction.Appartement,
		Surface:   fptr(52),
		MiseAPrix: fptr(150000),
		DateVente: tptr(saleDate),
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name    string
		mutateB func(b *auction.Listing)
		want    float64
	}{
		{
			name:    "identical listings",
			mutateB: func(b *auction.Listing) {},
			want:    1,
		},
		{
			name: "different sale date",
			mutateB: func(b *auction.Listing) {
				b.DateVente = tptr(saleDate.AddDate(0, 0, 7))
			},
			want: 0.70,
		},
		{
			name: "price off by more than ten percent",
			mutateB: func(b *auction.Listing) {
				b.MiseAPrix = fptr(200000)
			},
			want: 0.80,
		},
		{
			name: "surface slightly different stays within tolerance",
			mutateB: func(b *auction.Listing) {
				b.Surface = fptr(53)
			},
			want: 1,
		},
		{
			name: "unrelated listing",
			mutateB: func(b *auction.Listing) {
				b.DateVente = tptr(saleDate.AddDate(0, 2, 0))
				b.Ville = "Creteil"
				b.Tribunal = ""
				b.TypeBien = auction.Maison
				b.MiseAPrix = fptr(480000)
				b.Surface = fptr(140)
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := fullListing("licitor")
			b := fullListing("encheres_publiques")
			tt.mutateB(b)

			got := MatchScore(a, b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("MatchScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchScore_missingFieldsDoNotPenalize(t *testing.T) {
	// Only the sale date is shared; it matches, so the score is perfect
	// over the one available signal.
	a := &auction.Listing{DateVente: tptr(saleDate), Ville: "Pantin"}
	b := &auction.Listing{DateVente: tptr(saleDate)}

	if got := MatchScore(a, b); got != 1 {
		t.Errorf("MatchScore() = %v, want 1 when the only shared signal agrees", got)
	}
}

func TestMatchScore_noSharedFields(t *testing.T) {
	a := &auction.Listing{Ville: "Pantin"}
	b := &auction.Listing{Tribunal: "Tribunal judiciaire de Bobigny"}

	if got := MatchScore(a, b); got != 0 {
		t.Errorf("MatchScore() = %v, want 0 without comparable signals", got)
	}
}

func TestMatchScore_accentAndCaseInsensitiveCity(t *testing.T) {
	a := &auction.Listing{Ville: "Asnières-sur-Seine", DateVente: tptr(saleDate)}
	b := &auction.Listing{Ville: "ASNIERES SUR SEINE", DateVente: tptr(saleDate)}

	if got := MatchScore(a, b); got != 1 {
		t.Errorf("MatchScore() = %v, want 1 for the same city spelled differently", got)
	}
}

func TestFindMatches_greedyOneToOne(t *testing.T) {
	// Both A entries would match B[0]; only the first may have it.
	listA := []*auction.Listing{fullListing("licitor"), fullListing("licitor")}
	listB := []*auction.Listing{fullListing("encheres_publiques")}

	matches := FindMatches(listA, listB, DefaultMatchThreshold)
	if len(matches) != 1 {
		t.Fatalf("FindMatches() = %d matches, want 1", len(matches))
	}
	if matches[0].IndexA != 0 || matches[0].IndexB != 0 {
		t.Errorf("FindMatches()[0] = (%d, %d), want (0, 0): first A entry wins", matches[0].IndexA, matches[0].IndexB)
	}
}

func TestFindMatches_thresholdExcludesWeakPairs(t *testing.T) {
	a := fullListing("licitor")
	b := fullListing("encheres_publiques")
	b.DateVente = tptr(saleDate.AddDate(0, 0, 1))
	b.MiseAPrix = fptr(400000)
	b.Surface = fptr(120)
	b.Tribunal = "Tribunal judiciaire de Bobigny"

	// Date, price and surface all disagree.
	if got := MatchScore(a, b); got >= DefaultMatchThreshold {
		t.Fatalf("MatchScore() = %v, fixture should score below the threshold", got)
	}

	matches := FindMatches([]*auction.Listing{a}, []*auction.Listing{b}, DefaultMatchThreshold)
	if len(matches) != 0 {
		t.Errorf("FindMatches() = %d matches, want 0", len(matches))
	}
}

func TestFindMatches_bestCandidateWins(t *testing.T) {
	a := fullListing("licitor")

	near := fullListing("encheres_publiques")
	near.Surface = fptr(70)

	exact := fullListing("encheres_publiques")

	matches := FindMatches([]*auction.Listing{a}, []*auction.Listing{near, exact}, DefaultMatchThreshold)
	if len(matches) != 1 {
		t.Fatalf("FindMatches() = %d matches, want 1", len(matches))
	}
	if matches[0].IndexB != 1 {
		t.Errorf("FindMatches() picked B[%d], want B[1] with the higher score", matches[0].IndexB)
	}
}
