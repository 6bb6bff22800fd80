package price

import (
	"errors"
	"testing"
)

type stubSource struct {
	kind     SourceKind
	name     string
	estimate *Estimate
	err      error
}

func (s *stubSource) Kind() SourceKind { return s.kind }

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Estimate(query Query) (*Estimate, error) {
	return s.estimate, s.err
}

func stubEstimate(kind SourceKind, prixM2 float64) *Estimate {
	return &Estimate{
		Kind:          kind,
		PrixM2:        fptr(prixM2),
		NbDataPoints:  15,
		DataAgeDays:   60,
		GeographicFit: PrecisionExact,
	}
}

func TestAnalyzer_EstimatePrice(t *testing.T) {
	analyzer := NewAnalyzer(
		&stubSource{kind: SourceDVF, name: "dvf", estimate: stubEstimate(SourceDVF, 4000)},
		&stubSource{kind: SourceCommune, name: "commune", estimate: stubEstimate(SourceCommune, 4100)},
	)

	analysis := analyzer.EstimatePrice(Query{CodePostal: "75015", TypeBien: "appartement", Surface: fptr(50)}, fptr(150000))

	if len(analysis.Combined.Estimates) != 2 {
		t.Fatalf("kept %d estimates, want 2", len(analysis.Combined.Estimates))
	}
	if analysis.PrixM2Recommande == nil {
		t.Fatal("PrixM2Recommande = nil, want a recommendation")
	}
	if analysis.PrixTotalEstime == nil {
		t.Fatal("PrixTotalEstime = nil, want surface * price")
	}
	if *analysis.PrixTotalEstime < 195000 || *analysis.PrixTotalEstime > 210000 {
		t.Errorf("PrixTotalEstime = %v, want near 4050*50", *analysis.PrixTotalEstime)
	}

	if analysis.DecoteVsMarche == nil {
		t.Fatal("DecoteVsMarche = nil, want a discount")
	}
	if *analysis.DecoteVsMarche < 20 || *analysis.DecoteVsMarche > 35 {
		t.Errorf("DecoteVsMarche = %v, want roughly 26%%", *analysis.DecoteVsMarche)
	}
}

func TestAnalyzer_failingSourceBecomesWarning(t *testing.T) {
	analyzer := NewAnalyzer(
		&stubSource{kind: SourceDVF, name: "dvf", err: errors.New("boom")},
		&stubSource{kind: SourceCommune, name: "commune", estimate: stubEstimate(SourceCommune, 4100)},
	)

	analysis := analyzer.EstimatePrice(Query{CodePostal: "75015", TypeBien: "appartement"}, nil)

	if len(analysis.Combined.Estimates) != 1 {
		t.Fatalf("kept %d estimates, want 1", len(analysis.Combined.Estimates))
	}
	if len(analysis.Warnings) == 0 {
		t.Error("Warnings empty, want the source failure surfaced")
	}
	if analysis.PrixM2Recommande == nil {
		t.Error("PrixM2Recommande = nil, want the surviving source's price")
	}
}

func TestAnalyzer_noSources(t *testing.T) {
	analyzer := NewAnalyzer()

	analysis := analyzer.EstimatePrice(Query{CodePostal: "75015"}, fptr(100000))

	if analysis.PrixM2Recommande != nil {
		t.Errorf("PrixM2Recommande = %v, want nil", *analysis.PrixM2Recommande)
	}
	if analysis.DecoteVsMarche != nil {
		t.Errorf("DecoteVsMarche = %v, want nil without an estimate", *analysis.DecoteVsMarche)
	}
	if len(analysis.Warnings) == 0 {
		t.Error("Warnings empty, want a no-data warning")
	}
}

func TestAnalyzer_deterministicAcrossRuns(t *testing.T) {
	analyzer := NewAnalyzer(
		&stubSource{kind: SourceDVF, name: "dvf", estimate: stubEstimate(SourceDVF, 4000)},
		&stubSource{kind: SourceCommune, name: "commune", estimate: stubEstimate(SourceCommune, 4100)},
		&stubSource{kind: SourceListings, name: "listings", estimate: stubEstimate(SourceListings, 3900)},
	)

	query := Query{CodePostal: "75015", TypeBien: "appartement", Surface: fptr(50)}

	first := analyzer.EstimatePrice(query, nil)
	for i := 0; i < 20; i++ {
		next := analyzer.EstimatePrice(query, nil)
		if *next.PrixM2Recommande != *first.PrixM2Recommande {
			t.Fatalf("run %d: PrixM2Recommande = %v, want %v", i, *next.PrixM2Recommande, *first.PrixM2Recommande)
		}
		if len(next.Notes) != len(first.Notes) {
			t.Fatalf("run %d: %d notes, want %d", i, len(next.Notes), len(first.Notes))
		}
		for j := range next.Notes {
			if next.Notes[j] != first.Notes[j] {
				t.Fatalf("run %d: note %d = %q, want %q", i, j, next.Notes[j], first.Notes[j])
			}
		}
	}
}
