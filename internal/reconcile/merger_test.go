package reconcile

import (
	"testing"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
)

func TestMerge_numericNonZeroWins(t *testing.T) {
	a := &auction.Listing{Source: "licitor", Surface: fptr(45)}
	b := &auction.Listing{Source: "encheres_publiques", Surface: fptr(0)}

	record := Merge(a, b)

	if record.Surface == nil || *record.Surface != 45 {
		t.Fatalf("Surface = %v, want 45", record.Surface)
	}
	if got := record.FieldSources["surface"]; got != "licitor" {
		t.Errorf("FieldSources[surface] = %q, want %q", got, "licitor")
	}
}

func TestMerge_numericNeverAverages(t *testing.T) {
	a := &auction.Listing{Source: "licitor", MiseAPrix: fptr(150000)}
	b := &auction.Listing{Source: "encheres_publiques", MiseAPrix: fptr(160000)}

	record := Merge(a, b)

	if record.MiseAPrix == nil || *record.MiseAPrix != 150000 {
		t.Fatalf("MiseAPrix = %v, want 150000 from source A, never a blend", record.MiseAPrix)
	}
	if len(record.Notes) == 0 {
		t.Error("Notes empty, want the resolved disagreement recorded")
	}
}

func TestMerge_numericBothUnpopulated(t *testing.T) {
	record := Merge(
		&auction.Listing{Source: "licitor"},
		&auction.Listing{Source: "encheres_publiques", Surface: fptr(0)},
	)

	if record.Surface != nil {
		t.Errorf("Surface = %v, want nil when neither side has a real value", *record.Surface)
	}
	if _, tagged := record.FieldSources["surface"]; tagged {
		t.Error("FieldSources[surface] set, want no provenance for an absent value")
	}
}

func TestMerge_postalCodeValidityWins(t *testing.T) {
	a := &auction.Listing{Source: "licitor", CodePostal: "750x1"}
	b := &auction.Listing{Source: "encheres_publiques", CodePostal: "75015"}

	record := Merge(a, b)

	if record.CodePostal != "75015" {
		t.Fatalf("CodePostal = %q, want %q", record.CodePostal, "75015")
	}
	if got := record.FieldSources["code_postal"]; got != "encheres_publiques" {
		t.Errorf("FieldSources[code_postal] = %q, want %q", got, "encheres_publiques")
	}
}

func TestMerge_cityKnownNameWins(t *testing.T) {
	a := &auction.Listing{Source: "licitor", Ville: "Pantin Centre Ville"}
	b := &auction.Listing{Source: "encheres_publiques", Ville: "Pantin"}

	record := Merge(a, b)

	if record.Ville != "Pantin" {
		t.Errorf("Ville = %q, want the reference-table name %q", record.Ville, "Pantin")
	}
}

func TestMerge_longTextPrefersLonger(t *testing.T) {
	a := &auction.Listing{Source: "licitor", Description: "Appartement"}
	b := &auction.Listing{Source: "encheres_publiques", Description: "Appartement 3 pièces au 4ème étage avec cave"}

	record := Merge(a, b)

	if record.Description != b.Description {
		t.Errorf("Description = %q, want the longer text", record.Description)
	}
	if got := record.FieldSources["description"]; got != "encheres_publiques" {
		t.Errorf("FieldSources[description] = %q, want %q", got, "encheres_publiques")
	}
}

func TestMerge_listsUnionDeduplicated(t *testing.T) {
	a := &auction.Listing{Source: "licitor", Photos: []string{"p1.jpg", "p2.jpg"}}
	b := &auction.Listing{Source: "encheres_publiques", Photos: []string{"p2.jpg", "p3.jpg"}}

	record := Merge(a, b)

	want := []string{"p1.jpg", "p2.jpg", "p3.jpg"}
	if len(record.Photos) != len(want) {
		t.Fatalf("Photos = %v, want %v", record.Photos, want)
	}
	for i := range want {
		if record.Photos[i] != want[i] {
			t.Fatalf("Photos = %v, want %v (A first, order preserved)", record.Photos, want)
		}
	}
	if got := record.FieldSources["photos"]; got != "licitor+encheres_publiques" {
		t.Errorf("FieldSources[photos] = %q, want both sources", got)
	}
}

func TestMerge_visitDatesSorted(t *testing.T) {
	d1 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 9, 8, 10, 0, 0, 0, time.UTC)

	a := &auction.Listing{Source: "licitor", DatesVisite: []time.Time{d2}}
	b := &auction.Listing{Source: "encheres_publiques", DatesVisite: []time.Time{d1, d2}}

	record := Merge(a, b)

	if len(record.DatesVisite) != 2 {
		t.Fatalf("DatesVisite = %v, want 2 distinct dates", record.DatesVisite)
	}
	if !record.DatesVisite[0].Equal(d1) || !record.DatesVisite[1].Equal(d2) {
		t.Errorf("DatesVisite = %v, want sorted ascending", record.DatesVisite)
	}
}

func TestMerge_confidenceReflectsAgreement(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	identicalA := &auction.Listing{
		Source:    "licitor",
		Ville:     "Pantin",
		Tribunal:  "Tribunal judiciaire de Bobigny",
		MiseAPrix: fptr(150000),
		DateVente: &date,
	}
	identicalB := &auction.Listing{
		Source:    "encheres_publiques",
		Ville:     "Pantin",
		Tribunal:  "Tribunal judiciaire de Bobigny",
		MiseAPrix: fptr(150000),
		DateVente: &date,
	}

	agree := Merge(identicalA, identicalB)

	disagreeB := &auction.Listing{
		Source:    "encheres_publiques",
		Ville:     "Pantin",
		Tribunal:  "TJ Bobigny",
		MiseAPrix: fptr(180000),
		DateVente: &date,
	}

	disagree := Merge(identicalA, disagreeB)

	if agree.MergeConfidence <= disagree.MergeConfidence {
		t.Errorf("MergeConfidence agree = %v, disagree = %v, want agree strictly higher",
			agree.MergeConfidence, disagree.MergeConfidence)
	}
	if agree.MergeConfidence > 1 {
		t.Errorf("MergeConfidence = %v, want at most 1", agree.MergeConfidence)
	}
}

func TestMerge_sourceIsCombined(t *testing.T) {
	record := Merge(
		&auction.Listing{Source: "licitor", Url: "https://licitor.example/1"},
		&auction.Listing{Source: "encheres_publiques", Url: "https://ep.example/9"},
	)

	if record.Source != "licitor+encheres_publiques" {
		t.Errorf("Source = %q, want %q", record.Source, "licitor+encheres_publiques")
	}
	if record.Url != "https://licitor.example/1" {
		t.Errorf("Url = %q, want source A's url", record.Url)
	}
}

func TestReconcile_matchSurvivesMissingSurface(t *testing.T) {
	date := time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC)

	a := &auction.Listing{
		Source:    "licitor",
		Ville:     "Vincennes",
		MiseAPrix: fptr(200000),
		DateVente: &date,
		Surface:   fptr(48),
	}
	b := &auction.Listing{
		Source:    "encheres_publiques",
		Ville:     "Vincennes",
		MiseAPrix: fptr(205000),
		DateVente: &date,
	}

	// Date, price within 5% and city agree; the missing surface on B only
	// shrinks the weight denominator.
	if got := MatchScore(a, b); got < DefaultMatchThreshold {
		t.Fatalf("MatchScore() = %v, want at least %v", got, DefaultMatchThreshold)
	}

	records, stats := Reconcile([]*auction.Listing{a}, []*auction.Listing{b}, DefaultMatchThreshold)
	if stats.MergedRecords != 1 {
		t.Fatalf("MergedRecords = %d, want the pair merged", stats.MergedRecords)
	}
	if records[0].Surface == nil || *records[0].Surface != 48 {
		t.Errorf("merged Surface = %v, want 48 from the populated side", records[0].Surface)
	}
}

func TestReconcile_endToEnd(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	listA := []*auction.Listing{
		{
			Source:    "licitor",
			Ville:     "Montreuil",
			Tribunal:  "Tribunal judiciaire de Bobigny",
			TypeBien:  auction.Appartement,
			Surface:   fptr(60),
			MiseAPrix: fptr(120000),
			DateVente: &date,
		},
		{
			Source:    "licitor",
			Ville:     "Pantin",
			TypeBien:  auction.Maison,
			MiseAPrix: fptr(300000),
			DateVente: tptr(date.AddDate(0, 1, 0)),
		},
	}
	listB := []*auction.Listing{
		{
			Source:     "encheres_publiques",
			Ville:      "Montreuil",
			CodePostal: "93100",
			Tribunal:   "Tribunal judiciaire de Bobigny",
			TypeBien:   auction.Appartement,
			Surface:    fptr(61),
			MiseAPrix:  fptr(120000),
			DateVente:  &date,
		},
	}

	records, stats := Reconcile(listA, listB, DefaultMatchThreshold)

	if stats.Processed != 3 {
		t.Errorf("Processed = %d, want 3", stats.Processed)
	}
	if stats.MergedRecords != 1 {
		t.Fatalf("MergedRecords = %d, want 1", stats.MergedRecords)
	}
	if stats.OnlySourceA != 1 || stats.OnlySourceB != 0 {
		t.Errorf("OnlySourceA/B = %d/%d, want 1/0", stats.OnlySourceA, stats.OnlySourceB)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	merged := records[0]
	if merged.Source != "licitor+encheres_publiques" {
		t.Errorf("merged Source = %q, want both", merged.Source)
	}
	// Geo enrichment fills the department from B's postal code.
	if merged.Department != "93" {
		t.Errorf("merged Department = %q, want %q", merged.Department, "93")
	}

	standalone := records[1]
	if standalone.Ville != "Pantin" {
		t.Errorf("standalone Ville = %q, want the unmatched A listing", standalone.Ville)
	}
	if standalone.MergeConfidence != 0.5 {
		t.Errorf("standalone MergeConfidence = %v, want 0.5", standalone.MergeConfidence)
	}
	// Single-source records are enriched too.
	if standalone.CodePostal != "93500" {
		t.Errorf("standalone CodePostal = %q, want inferred %q", standalone.CodePostal, "93500")
	}
}
