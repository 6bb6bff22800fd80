package db

import (
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
	"github.com/uptrace/bun"
)

// ListingModel is one scraped listing row, exactly as a scraper job wrote
// it.
type ListingModel struct {
	bun.BaseModel `bun:"table:raw_listings"`

	Id       int    `bun:"id,pk,autoincrement"`
	Source   string `bun:"source,notnull"`
	SourceId string `bun:"source_id"`
	Url      string `bun:"url"`

	Adresse    string `bun:"adresse"`
	CodePostal string `bun:"code_postal"`
	Ville      string `bun:"ville"`
	Department string `bun:"department"`

	TypeBien    string   `bun:"type_bien"`
	Surface     *float64 `bun:"surface"`
	NbPieces    *int     `bun:"nb_pieces"`
	NbChambres  *int     `bun:"nb_chambres"`
	Etage       *int     `bun:"etage"`
	Description string   `bun:"description"`
	Occupation  string   `bun:"occupation"`

	MiseAPrix   *float64    `bun:"mise_a_prix"`
	DateVente   *time.Time  `bun:"date_vente"`
	HeureVente  string      `bun:"heure_vente"`
	DatesVisite []time.Time `bun:"dates_visite,type:jsonb"`

	Tribunal string `bun:"tribunal"`

	AvocatNom       string `bun:"avocat_nom"`
	AvocatCabinet   string `bun:"avocat_cabinet"`
	AvocatTelephone string `bun:"avocat_telephone"`
	AvocatEmail     string `bun:"avocat_email"`
	AvocatAdresse   string `bun:"avocat_adresse"`
	AvocatSiteWeb   string `bun:"avocat_site_web"`

	Photos    []string           `bun:"photos,type:jsonb"`
	Documents []auction.Document `bun:"documents,type:jsonb"`
	PvUrl     string             `bun:"pv_url"`

	ScrapedAt time.Time `bun:"scraped_at,nullzero,default:now()"`
}

// MergedRecordModel is one reconciled, authoritative record.
type MergedRecordModel struct {
	bun.BaseModel `bun:"table:merged_records"`

	Id       int    `bun:"id,pk,autoincrement"`
	Source   string `bun:"source,notnull"`
	SourceId string `bun:"source_id"`
	Url      string `bun:"url,unique"`

	Adresse    string `bun:"adresse"`
	CodePostal string `bun:"code_postal"`
	Ville      string `bun:"ville"`
	Department string `bun:"department"`

	TypeBien    string   `bun:"type_bien"`
	Surface     *float64 `bun:"surface"`
	NbPieces    *int     `bun:"nb_pieces"`
	NbChambres  *int     `bun:"nb_chambres"`
	Etage       *int     `bun:"etage"`
	Description string   `bun:"description"`
	Occupation  string   `bun:"occupation"`

	MiseAPrix   *float64    `bun:"mise_a_prix"`
	DateVente   *time.Time  `bun:"date_vente"`
	HeureVente  string      `bun:"heure_vente"`
	DatesVisite []time.Time `bun:"dates_visite,type:jsonb"`

	Tribunal string `bun:"tribunal"`

	AvocatNom       string `bun:"avocat_nom"`
	AvocatCabinet   string `bun:"avocat_cabinet"`
	AvocatTelephone string `bun:"avocat_telephone"`
	AvocatEmail     string `bun:"avocat_email"`
	AvocatAdresse   string `bun:"avocat_adresse"`
	AvocatSiteWeb   string `bun:"avocat_site_web"`

	Photos    []string           `bun:"photos,type:jsonb"`
	Documents []auction.Document `bun:"documents,type:jsonb"`
	PvUrl     string             `bun:"pv_url"`

	FieldSources    map[string]string `bun:"field_sources,type:jsonb"`
	Notes           []string          `bun:"notes,type:jsonb"`
	MergeConfidence float64           `bun:"merge_confidence"`

	CreatedAt time.Time `bun:"created_at,nullzero,default:now()"`
}

// PriceAnalysisModel is one price estimation snapshot for a merged
// record.
type PriceAnalysisModel struct {
	bun.BaseModel `bun:"table:price_analyses"`

	Id             int    `bun:"id,pk,autoincrement"`
	MergedRecordId int    `bun:"merged_record_id"`
	CodePostal     string `bun:"code_postal"`
	TypeBien       string `bun:"type_bien"`

	PrixM2Recommande *float64 `bun:"prix_m2_recommande"`
	PrixTotalEstime  *float64 `bun:"prix_total_estime"`
	PrixM2Min        *float64 `bun:"prix_m2_min"`
	PrixM2Max        *float64 `bun:"prix_m2_max"`

	DvfPrixM2      *float64 `bun:"dvf_prix_m2"`
	CommunePrixM2  *float64 `bun:"commune_prix_m2"`
	ListingsPrixM2 *float64 `bun:"listings_prix_m2"`

	SourcesAgreement float64 `bun:"sources_agreement"`
	Reliability      string  `bun:"reliability"`
	ReliabilityScore float64 `bun:"reliability_score"`

	DecoteVsMarche   *float64 `bun:"decote_vs_marche"`
	OpportunityScore float64  `bun:"opportunity_score"`
	Badge            string   `bun:"badge"`

	Notes    []string `bun:"notes,type:jsonb"`
	Warnings []string `bun:"warnings,type:jsonb"`

	AnalyzedAt time.Time `bun:"analyzed_at,nullzero,default:now()"`
}

// ToListing converts a stored row to the domain listing consumed by the
// reconciliation core.
func (m *ListingModel) ToListing() *auction.Listing {
	return &auction.Listing{
		Source:          m.Source,
		SourceId:        m.SourceId,
		Url:             m.Url,
		Adresse:         m.Adresse,
		CodePostal:      m.CodePostal,
		Ville:           m.Ville,
		Department:      m.Department,
		TypeBien:        auction.PropertyType(m.TypeBien),
		Surface:         m.Surface,
		NbPieces:        m.NbPieces,
		NbChambres:      m.NbChambres,
		Etage:           m.Etage,
		Description:     m.Description,
		Occupation:      m.Occupation,
		MiseAPrix:       m.MiseAPrix,
		DateVente:       m.DateVente,
		HeureVente:      m.HeureVente,
		DatesVisite:     m.DatesVisite,
		Tribunal:        m.Tribunal,
		AvocatNom:       m.AvocatNom,
		AvocatCabinet:   m.AvocatCabinet,
		AvocatTelephone: m.AvocatTelephone,
		AvocatEmail:     m.AvocatEmail,
		AvocatAdresse:   m.AvocatAdresse,
		AvocatSiteWeb:   m.AvocatSiteWeb,
		Photos:          m.Photos,
		Documents:       m.Documents,
		PvUrl:           m.PvUrl,
	}
}

// NewMergedRecordModel maps a reconciled record onto its storage row.
func NewMergedRecordModel(r *auction.MergedRecord) *MergedRecordModel {
	return &MergedRecordModel{
		Source:          r.Source,
		SourceId:        r.SourceId,
		Url:             r.Url,
		Adresse:         r.Adresse,
		CodePostal:      r.CodePostal,
		Ville:           r.Ville,
		Department:      r.Department,
		TypeBien:        string(r.TypeBien),
		Surface:         r.Surface,
		NbPieces:        r.NbPieces,
		NbChambres:      r.NbChambres,
		Etage:           r.Etage,
		Description:     r.Description,
		Occupation:      r.Occupation,
		MiseAPrix:       r.MiseAPrix,
		DateVente:       r.DateVente,
		HeureVente:      r.HeureVente,
		DatesVisite:     r.DatesVisite,
		Tribunal:        r.Tribunal,
		AvocatNom:       r.AvocatNom,
		AvocatCabinet:   r.AvocatCabinet,
		AvocatTelephone: r.AvocatTelephone,
		AvocatEmail:     r.AvocatEmail,
		AvocatAdresse:   r.AvocatAdresse,
		AvocatSiteWeb:   r.AvocatSiteWeb,
		Photos:          r.Photos,
		Documents:       r.Documents,
		PvUrl:           r.PvUrl,
		FieldSources:    r.FieldSources,
		Notes:           r.Notes,
		MergeConfidence: r.MergeConfidence,
	}
}
