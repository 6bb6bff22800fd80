package auction

import "time"

// PropertyType classifies the kind of property put up for judicial sale.
type PropertyType string

const (
	Appartement     PropertyType = "appartement"
	Maison          PropertyType = "maison"
	LocalCommercial PropertyType = "local_commercial"
	Terrain         PropertyType = "terrain"
	Parking         PropertyType = "parking"
	Autre           PropertyType = "autre"
)

// Document is a named attachment published with a sale (cahier des
// conditions, diagnostics, ...).
type Document struct {
	Nom string
	Url string
}

// Listing is one source's view of one judicial sale, exactly as scraped.
// A Listing is immutable once produced; reconciliation never writes back
// into it.
type Listing struct {
	Source   string
	SourceId string
	Url      string

	Adresse    string
	CodePostal string
	Ville      string
	Department string

	TypeBien    PropertyType
	Surface     *float64
	NbPieces    *int
	NbChambres  *int
	Etage       *int
	Description string
	Occupation  string

	MiseAPrix   *float64
	DateVente   *time.Time
	HeureVente  string
	DatesVisite []time.Time

	Tribunal string

	AvocatNom       string
	AvocatCabinet   string
	AvocatTelephone string
	AvocatEmail     string
	AvocatAdresse   string
	AvocatSiteWeb   string

	Photos    []string
	Documents []Document
	PvUrl     string
}

// MergedRecord is the authoritative record for one property, produced by
// reconciling one or two listings. FieldSources maps a field name to the
// source that supplied the winning value; Notes collects human-readable
// corrections and inferences made along the way. Never mutated after
// creation.
type MergedRecord struct {
	Listing

	// FieldSources holds per-field provenance ("licitor",
	// "encheres_publiques", or "a+b" for unioned lists). Fields inferred
	// by geo enrichment are tagged "inferred".
	FieldSources map[string]string

	Notes []string

	// MergeConfidence is the share of populated fields on which both
	// contributing sources agreed exactly. 0.5 when only one source
	// contributed or nothing is populated.
	MergeConfidence float64
}
