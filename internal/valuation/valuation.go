// Package valuation turns a reconciled record and its market price
// analysis into an opportunity rating for display and export.
package valuation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/price"
)

// Badge classifies how attractive an auction looks next to the market.
type Badge string

const (
	BadgeExceptional Badge = "opportunite_exceptionnelle"
	BadgeOpportunity Badge = "opportunite"
	BadgeGoodDeal    Badge = "bonne_affaire"
	BadgeFair        Badge = "prix_marche"
	BadgeOverpriced  Badge = "surevalue"
	BadgeUnknown     Badge = "a_analyser"
)

var badgeLabels = map[Badge]string{
	BadgeExceptional: "Opportunité exceptionnelle",
	BadgeOpportunity: "Opportunité",
	BadgeGoodDeal:    "Bonne affaire",
	BadgeFair:        "Prix marché",
	BadgeOverpriced:  "Surévalué",
	BadgeUnknown:     "À analyser",
}

func (b Badge) Label() string { return badgeLabels[b] }

// Result is the complete valuation of one record.
type Result struct {
	Record   *auction.MergedRecord
	Analysis price.Analysis

	OpportunityScore float64
	Badge            Badge

	Strengths []string
	Risks     []string
}

// Score components.
const (
	discountMax    = 50
	dataQualityMax = 20
	recencyMax     = 15
	agreementMax   = 15
)

// Valuate rates one record against its price analysis.
func Valuate(record *auction.MergedRecord, analysis price.Analysis) Result {
	result := Result{
		Record:   record,
		Analysis: analysis,
		Badge:    BadgeUnknown,
	}

	result.OpportunityScore = opportunityScore(analysis)
	result.Badge = badge(analysis.DecoteVsMarche)
	result.Strengths = strengths(record, analysis)
	result.Risks = risks(record, analysis)

	return result
}

func opportunityScore(analysis price.Analysis) float64 {
	var score float64

	// Discount below market, the dominant component.
	if d := analysis.DecoteVsMarche; d != nil {
		switch {
		case *d >= 40:
			score += discountMax
		case *d >= 30:
			score += 40
		case *d >= 20:
			score += 30
		case *d >= 10:
			score += 20
		case *d >= 0:
			score += 10
		}
	}

	dataPoints := 0
	minAge := math.MaxInt
	for _, e := range analysis.Combined.Estimates {
		dataPoints += e.NbDataPoints
		if e.DataAgeDays < minAge {
			minAge = e.DataAgeDays
		}
	}

	switch {
	case dataPoints >= 10:
		score += dataQualityMax
	case dataPoints >= 5:
		score += 15
	case dataPoints >= 3:
		score += 10
	case dataPoints >= 1:
		score += 5
	}

	if len(analysis.Combined.Estimates) > 0 {
		switch {
		case minAge <= 180:
			score += recencyMax
		case minAge <= 365:
			score += 10
		default:
			score += 5
		}
	}

	if len(analysis.Combined.Estimates) >= 2 {
		score += analysis.Combined.SourcesAgreement / 100 * agreementMax
	}

	return math.Min(100, score)
}

// badge buckets the discount. A discount of exactly 0% counts as "fair",
// not "overpriced".
func badge(decote *float64) Badge {
	if decote == nil {
		return BadgeUnknown
	}

	switch {
	case *decote >= 40:
		return BadgeExceptional
	case *decote >= 30:
		return BadgeOpportunity
	case *decote >= 20:
		return BadgeGoodDeal
	case *decote >= 0:
		return BadgeFair
	default:
		return BadgeOverpriced
	}
}

func strengths(record *auction.MergedRecord, analysis price.Analysis) []string {
	var out []string

	if analysis.DecoteVsMarche != nil && *analysis.DecoteVsMarche >= 20 {
		out = append(out, fmt.Sprintf("décote de %.0f%% par rapport au marché", *analysis.DecoteVsMarche))
	}
	if analysis.Combined.Reliability == price.ReliabilityHigh {
		out = append(out, "estimation corroborée par plusieurs sources")
	}
	if record.Surface != nil && *record.Surface > 50 {
		out = append(out, fmt.Sprintf("belle surface de %.0f m²", *record.Surface))
	}
	if len(record.DatesVisite) > 0 {
		out = append(out, fmt.Sprintf("%d date(s) de visite programmée(s)", len(record.DatesVisite)))
	}
	if record.PvUrl != "" {
		out = append(out, "procès-verbal disponible")
	}

	return out
}

func risks(record *auction.MergedRecord, analysis price.Analysis) []string {
	var out []string

	if analysis.Combined.Reliability == price.ReliabilityLow || analysis.Combined.Reliability == price.ReliabilityInsufficient {
		out = append(out, "peu de données comparables, estimation moins fiable")
	}
	if record.Surface == nil {
		out = append(out, "surface non renseignée")
	}
	if len(record.DatesVisite) == 0 {
		out = append(out, "aucune date de visite connue")
	}

	desc := strings.ToLower(record.Occupation + " " + record.Description)
	if strings.Contains(desc, "occupé") || strings.Contains(desc, "loué") {
		out = append(out, "bien potentiellement occupé")
	}
	if strings.Contains(desc, "travaux") || strings.Contains(desc, "rénovation") {
		out = append(out, "travaux probablement nécessaires")
	}

	if analysis.DecoteVsMarche != nil && *analysis.DecoteVsMarche < 0 {
		out = append(out, "mise à prix supérieure au marché")
	}

	if record.DateVente != nil {
		daysUntil := int(time.Until(*record.DateVente).Hours() / 24)
		if daysUntil < 0 {
			out = append(out, "vente passée")
		}
	}

	return out
}
