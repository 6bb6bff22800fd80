package reconcile

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/auction"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/geo"
)

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

// merger accumulates the per-field selection state for one matched pair.
type merger struct {
	sourceA, sourceB string
	record           *auction.MergedRecord
	agreements       int
}

// Merge combines a matched pair into one record, field by field, each
// field following its own selection rule. The resulting record carries
// per-field provenance, human-readable notes for every disagreement that
// was resolved, and a merge confidence reflecting how often the two
// sources agreed. Geo enrichment runs on the result.
func Merge(a, b *auction.Listing) *auction.MergedRecord {
	sourceA := orDefault(a.Source, "source1")
	sourceB := orDefault(b.Source, "source2")

	m := &merger{
		sourceA: sourceA,
		sourceB: sourceB,
		record: &auction.MergedRecord{
			FieldSources: make(map[string]string),
		},
	}
	record := m.record
	record.Source = sourceA + "+" + sourceB
	record.Url = orDefault(a.Url, b.Url)
	record.SourceId = orDefault(a.SourceId, b.SourceId)

	record.Adresse = m.longText("adresse", a.Adresse, b.Adresse)
	record.CodePostal = m.postalCode(a.CodePostal, b.CodePostal)
	record.Ville = m.city(a.Ville, b.Ville)
	record.Department = m.text("department", a.Department, b.Department)

	record.TypeBien = auction.PropertyType(m.text("type_bien", string(a.TypeBien), string(b.TypeBien)))
	record.Surface = m.numeric("surface", a.Surface, b.Surface)
	record.NbPieces = m.count("nb_pieces", a.NbPieces, b.NbPieces)
	record.NbChambres = m.count("nb_chambres", a.NbChambres, b.NbChambres)
	record.Etage = m.count("etage", a.Etage, b.Etage)
	record.Description = m.longText("description", a.Description, b.Description)
	record.Occupation = m.text("occupation", a.Occupation, b.Occupation)

	record.MiseAPrix = m.numeric("mise_a_prix", a.MiseAPrix, b.MiseAPrix)
	record.DateVente = m.date("date_vente", a.DateVente, b.DateVente)
	record.HeureVente = m.text("heure_vente", a.HeureVente, b.HeureVente)
	record.Tribunal = m.text("tribunal", a.Tribunal, b.Tribunal)

	record.AvocatNom = m.text("avocat_nom", a.AvocatNom, b.AvocatNom)
	record.AvocatCabinet = m.text("avocat_cabinet", a.AvocatCabinet, b.AvocatCabinet)
	record.AvocatTelephone = m.text("avocat_telephone", a.AvocatTelephone, b.AvocatTelephone)
	record.AvocatEmail = m.text("avocat_email", a.AvocatEmail, b.AvocatEmail)
	record.AvocatAdresse = m.longText("avocat_adresse", a.AvocatAdresse, b.AvocatAdresse)
	record.AvocatSiteWeb = m.text("avocat_site_web", a.AvocatSiteWeb, b.AvocatSiteWeb)
	record.PvUrl = m.text("pv_url", a.PvUrl, b.PvUrl)

	record.Photos = m.stringList("photos", a.Photos, b.Photos)
	record.Documents = m.documentList("documents", a.Documents, b.Documents)
	record.DatesVisite = m.visitDates("dates_visite", a.DatesVisite, b.DatesVisite)

	geo.Enrich(record)

	populated := populatedFieldCount(record)
	if populated > 0 {
		record.MergeConfidence = float64(m.agreements) / float64(populated)
	} else {
		record.MergeConfidence = 0.5
	}

	return record
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// pick finalizes one field choice: records provenance, counts agreement
// and notes a resolved disagreement when both sides were populated.
func (m *merger) pick(field string, chosen string, fromA bool, va, vb string) {
	if chosen == "" {
		return
	}

	source := m.sourceA
	if !fromA {
		source = m.sourceB
	}
	m.record.FieldSources[field] = source

	if va != "" && vb != "" {
		if va == vb {
			m.agreements++
		} else {
			loser := vb
			if !fromA {
				loser = va
			}
			m.record.Notes = append(m.record.Notes,
				fmt.Sprintf("%s: picked %q from %s over %q", field, chosen, source, loser))
		}
	}
}

// text is the fallback rule: the populated side wins, source A on a tie.
func (m *merger) text(field, va, vb string) string {
	switch {
	case va == "" && vb == "":
		return ""
	case vb == "":
		m.pick(field, va, true, va, vb)
		return va
	case va == "":
		m.pick(field, vb, false, va, vb)
		return vb
	default:
		m.pick(field, va, true, va, vb)
		return va
	}
}

// longText prefers the longer, more complete string.
func (m *merger) longText(field, va, vb string) string {
	if va == "" || vb == "" {
		return m.text(field, va, vb)
	}
	if len(va) >= len(vb) {
		m.pick(field, va, true, va, vb)
		return va
	}
	m.pick(field, vb, false, va, vb)
	return vb
}

// postalCode prefers a strictly valid 5-digit code; source A wins when
// both or neither validate.
func (m *merger) postalCode(va, vb string) string {
	const field = "code_postal"
	if va == "" || vb == "" {
		return m.text(field, va, vb)
	}

	validA := postalCodeRe.MatchString(va)
	validB := postalCodeRe.MatchString(vb)
	switch {
	case validA && !validB:
		m.pick(field, va, true, va, vb)
		return va
	case validB && !validA:
		m.pick(field, vb, false, va, vb)
		return vb
	default:
		m.pick(field, va, true, va, vb)
		return va
	}
}

// city prefers the name known to the reference table; when both are
// known the longer, more specific name wins and source B breaks the tie.
func (m *merger) city(va, vb string) string {
	const field = "ville"
	if va == "" || vb == "" {
		return m.text(field, va, vb)
	}

	knownA := geo.KnownCity(va)
	knownB := geo.KnownCity(vb)
	switch {
	case knownA && !knownB:
		m.pick(field, va, true, va, vb)
		return va
	case knownB && !knownA:
		m.pick(field, vb, false, va, vb)
		return vb
	}

	if len(va) > len(vb) {
		m.pick(field, va, true, va, vb)
		return va
	}
	m.pick(field, vb, false, va, vb)
	return vb
}

// numeric never averages: a wrong value from an unreliable scrape must
// not blend with a correct one. Non-zero wins, source A on a tie.
func (m *merger) numeric(field string, va, vb *float64) *float64 {
	sa, sb := floatStr(va), floatStr(vb)
	switch {
	case populatedFloat(va) && !populatedFloat(vb):
		m.pick(field, sa, true, sa, sb)
		return va
	case populatedFloat(vb) && !populatedFloat(va):
		m.pick(field, sb, false, sa, sb)
		return vb
	case populatedFloat(va) && populatedFloat(vb):
		m.pick(field, sa, true, sa, sb)
		return va
	default:
		return nil
	}
}

func (m *merger) count(field string, va, vb *int) *int {
	var fa, fb *float64
	if va != nil {
		v := float64(*va)
		fa = &v
	}
	if vb != nil {
		v := float64(*vb)
		fb = &v
	}

	switch m.numeric(field, fa, fb) {
	case nil:
		return nil
	case fa:
		return va
	default:
		return vb
	}
}

func (m *merger) date(field string, va, vb *time.Time) *time.Time {
	sa, sb := "", ""
	if va != nil {
		sa = va.Format(time.DateOnly)
	}
	if vb != nil {
		sb = vb.Format(time.DateOnly)
	}

	chosen := m.text(field, sa, sb)
	if chosen == sa && va != nil {
		return va
	}
	return vb
}

// stringList unions with order preserved: A's items first, then B's new
// items.
func (m *merger) stringList(field string, va, vb []string) []string {
	if len(va) == 0 && len(vb) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(va)+len(vb))
	merged := make([]string, 0, len(va)+len(vb))
	for _, v := range append(append([]string{}, va...), vb...) {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
	}

	m.listProvenance(field, len(va) > 0, len(vb) > 0)
	return merged
}

func (m *merger) documentList(field string, va, vb []auction.Document) []auction.Document {
	if len(va) == 0 && len(vb) == 0 {
		return nil
	}

	seen := make(map[auction.Document]struct{}, len(va)+len(vb))
	merged := make([]auction.Document, 0, len(va)+len(vb))
	for _, v := range append(append([]auction.Document{}, va...), vb...) {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
	}

	m.listProvenance(field, len(va) > 0, len(vb) > 0)
	return merged
}

// visitDates unions and sorts ascending.
func (m *merger) visitDates(field string, va, vb []time.Time) []time.Time {
	if len(va) == 0 && len(vb) == 0 {
		return nil
	}

	seen := make(map[time.Time]struct{}, len(va)+len(vb))
	merged := make([]time.Time, 0, len(va)+len(vb))
	for _, v := range append(append([]time.Time{}, va...), vb...) {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		merged = append(merged, v)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Before(merged[j]) })

	m.listProvenance(field, len(va) > 0, len(vb) > 0)
	return merged
}

func (m *merger) listProvenance(field string, hasA, hasB bool) {
	switch {
	case hasA && hasB:
		m.record.FieldSources[field] = m.sourceA + "+" + m.sourceB
	case hasA:
		m.record.FieldSources[field] = m.sourceA
	case hasB:
		m.record.FieldSources[field] = m.sourceB
	}
}

func populatedFloat(v *float64) bool { return v != nil && *v != 0 }

func floatStr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

// populatedFieldCount counts the merged fields carrying a value, the
// denominator of the merge confidence.
func populatedFieldCount(r *auction.MergedRecord) int {
	count := 0
	for _, populated := range []bool{
		r.Adresse != "",
		r.CodePostal != "",
		r.Ville != "",
		r.Department != "",
		r.TypeBien != "",
		populatedFloat(r.Surface),
		r.NbPieces != nil,
		r.NbChambres != nil,
		r.Etage != nil,
		r.Description != "",
		r.Occupation != "",
		populatedFloat(r.MiseAPrix),
		r.DateVente != nil,
		r.HeureVente != "",
		r.Tribunal != "",
		r.AvocatNom != "",
		r.AvocatCabinet != "",
		r.AvocatTelephone != "",
		r.AvocatEmail != "",
		r.AvocatAdresse != "",
		r.AvocatSiteWeb != "",
		r.PvUrl != "",
		len(r.Photos) > 0,
		len(r.Documents) > 0,
		len(r.DatesVisite) > 0,
	} {
		if populated {
			count++
		}
	}
	return count
}
