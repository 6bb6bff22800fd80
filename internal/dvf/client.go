// Package dvf reads the DVF (Demandes de Valeurs Foncières) open-data
// extracts: the official record of French real estate transactions,
// published per department as CSV. Files are expected under the configured
// data directory as dvf_<department>_<year>.csv; downloading them is a
// separate operation outside this package.
package dvf

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
)

// Transaction is one sale row from a DVF extract.
type Transaction struct {
	DateMutation   *time.Time
	NatureMutation string
	ValeurFonciere float64
	Adresse        string
	CodePostal     string
	Commune        string
	TypeLocal      string
	SurfaceReelle  *float64
	NbPieces       *int
	PrixM2         *float64
}

// SearchParams filters transactions. Zero values mean "no constraint".
// When Department is set instead of CodePostal, the match widens to every
// commune of the department.
type SearchParams struct {
	CodePostal string
	Department string
	Commune    string
	TypeLocal  string
	DateMin    *time.Time
	DateMax    *time.Time
	SurfaceMin float64
	SurfaceMax float64
}

// NoDataError reports that no DVF extract is on disk for a department.
type NoDataError struct {
	Department string
}

func (e NoDataError) Error() string {
	return fmt.Sprintf("no dvf data files for department %s", e.Department)
}

func (e NoDataError) Is(target error) bool {
	var t *NoDataError
	return errors.As(target, &t)
}

// Client loads and queries DVF extracts, keeping parsed departments in
// memory. Safe for concurrent use.
type Client struct {
	dataDir string

	mu    sync.RWMutex
	cache map[string][]*Transaction
}

func NewClient(dataDir string) *Client {
	return &Client{
		dataDir: dataDir,
		cache:   make(map[string][]*Transaction),
	}
}

// LoadDepartment returns every transaction parsed from the department's
// files, loading and caching them on first use.
func (c *Client) LoadDepartment(department string) ([]*Transaction, error) {
	c.mu.RLock()
	cached, ok := c.cache[department]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	pattern := filepath.Join(c.dataDir, fmt.Sprintf("dvf_%s_*.csv", department))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NoDataError{Department: department}
	}

	var transactions []*Transaction
	for _, file := range files {
		rows, err := c.parseFile(file)
		if err != nil {
			log.GetLogger().WithField("File", file).Warnf("skipping unreadable dvf file: %v", err)
			continue
		}
		transactions = append(transactions, rows...)
	}

	c.mu.Lock()
	c.cache[department] = transactions
	c.mu.Unlock()

	log.GetLogger().
		WithField("Department", department).
		WithField("TransactionCount", len(transactions)).
		Debug("loaded dvf transactions")

	return transactions, nil
}

func (c *Client) parseFile(path string) ([]*Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var transactions []*Transaction
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One bad row must not abort the batch.
			continue
		}

		if t := rowToTransaction(row, columns); t != nil {
			transactions = append(transactions, t)
		}
	}

	return transactions, nil
}

func rowToTransaction(row []string, columns map[string]int) *Transaction {
	get := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	valeur, err := strconv.ParseFloat(strings.ReplaceAll(get("valeur_fonciere"), ",", "."), 64)
	if err != nil || valeur <= 0 {
		return nil
	}

	t := &Transaction{
		NatureMutation: get("nature_mutation"),
		ValeurFonciere: valeur,
		CodePostal:     get("code_postal"),
		Commune:        get("nom_commune"),
		TypeLocal:      get("type_local"),
		Adresse:        strings.TrimSpace(get("adresse_numero") + " " + get("adresse_nom_voie")),
	}

	if d, err := time.Parse(time.DateOnly, get("date_mutation")); err == nil {
		t.DateMutation = &d
	}

	if s, err := strconv.ParseFloat(strings.ReplaceAll(get("surface_reelle_bati"), ",", "."), 64); err == nil && s > 0 {
		t.SurfaceReelle = &s
		prixM2 := valeur / s
		t.PrixM2 = &prixM2
	}

	if n, err := strconv.Atoi(get("nombre_pieces_principales")); err == nil {
		t.NbPieces = &n
	}

	return t
}

// Search returns the department's transactions matching params. The
// department is derived from the postal code.
func (c *Client) Search(params SearchParams) ([]*Transaction, error) {
	department := params.Department
	if department == "" {
		if len(params.CodePostal) < 2 {
			return nil, fmt.Errorf("invalid postal code %q", params.CodePostal)
		}
		department = params.CodePostal[:2]
	}

	all, err := c.LoadDepartment(department)
	if err != nil {
		return nil, err
	}

	var results []*Transaction
	for _, t := range all {
		if matches(t, params) {
			results = append(results, t)
		}
	}

	return results, nil
}

func matches(t *Transaction, params SearchParams) bool {
	if params.CodePostal != "" && t.CodePostal != params.CodePostal {
		return false
	}
	if params.Commune != "" && !strings.Contains(strings.ToLower(t.Commune), strings.ToLower(params.Commune)) {
		return false
	}
	if params.TypeLocal != "" && !strings.Contains(strings.ToLower(t.TypeLocal), strings.ToLower(params.TypeLocal)) {
		return false
	}
	if params.DateMin != nil && (t.DateMutation == nil || t.DateMutation.Before(*params.DateMin)) {
		return false
	}
	if params.DateMax != nil && t.DateMutation != nil && t.DateMutation.After(*params.DateMax) {
		return false
	}
	if params.SurfaceMin > 0 && (t.SurfaceReelle == nil || *t.SurfaceReelle < params.SurfaceMin) {
		return false
	}
	if params.SurfaceMax > 0 && (t.SurfaceReelle == nil || *t.SurfaceReelle > params.SurfaceMax) {
		return false
	}
	return true
}

// FindComparableSales returns up to limit transactions in the postal code
// with the given type, within tolerancePct of the surface and the trailing
// months window, most recent first.
func (c *Client) FindComparableSales(codePostal string, surface float64, typeLocal string, tolerancePct float64, months int, limit int) ([]*Transaction, error) {
	dateMin := time.Now().AddDate(0, -months, 0)

	results, err := c.Search(SearchParams{
		CodePostal: codePostal,
		TypeLocal:  typeLocal,
		DateMin:    &dateMin,
		SurfaceMin: surface * (1 - tolerancePct/100),
		SurfaceMax: surface * (1 + tolerancePct/100),
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		di, dj := results[i].DateMutation, results[j].DateMutation
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return di.After(*dj)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
