// Package ucs implements the Universal Category System taxonomy: category
// lookup, synonym search, and UCS-pattern filename parsing/generation.
package ucs

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

//go:embed UCS.csv
var content embed.FS

func openSource() (fs.File, error) {
	if fp := os.Getenv("UCS_CSV_FILE"); fp != "" {
		return os.Open(fp)
	}

	return content.Open("UCS.csv")
}

// Subcategory is one row of the UCS taxonomy: a CatID and the category
// it belongs to, plus its synonym list for fuzzy lookup.
type Subcategory struct {
	Category    string
	Name        string
	CatID       string
	CatShort    string
	Explanation string
	Synonyms    []string
}

// Engine is a loaded, indexed UCS taxonomy.
type Engine struct {
	subcats    []Subcategory
	byCatID    map[string]Subcategory
	categories []string
}

// New loads the taxonomy, from the file named by UCS_CSV_FILE if set, or
// the embedded default table otherwise.
func New() (*Engine, error) {
	f, err := openSource()
	if err != nil {
		return nil, fmt.Errorf("open UCS source: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read UCS source: %w", err)
	}

	e := &Engine{byCatID: map[string]Subcategory{}}
	seenCategory := map[string]bool{}

	for i, r := range records {
		if i == 0 || len(r) < 6 {
			continue // header row, or malformed
		}

		sub := Subcategory{
			Category:    strings.TrimSpace(r[0]),
			Name:        strings.TrimSpace(r[1]),
			CatID:       strings.TrimSpace(r[2]),
			CatShort:    strings.TrimSpace(r[3]),
			Explanation: strings.TrimSpace(r[4]),
			Synonyms:    splitSynonyms(r[5]),
		}

		if sub.CatID == "" {
			continue
		}

		e.subcats = append(e.subcats, sub)
		e.byCatID[sub.CatID] = sub

		if !seenCategory[sub.Category] {
			seenCategory[sub.Category] = true
			e.categories = append(e.categories, sub.Category)
		}
	}

	sort.Strings(e.categories)
	sort.Slice(e.subcats, func(i, j int) bool { return e.subcats[i].CatID < e.subcats[j].CatID })

	return e, nil
}

func splitSynonyms(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// ListCategories returns every top-level category name, sorted.
func (e *Engine) ListCategories() []string {
	return append([]string(nil), e.categories...)
}

// ListSubcategories returns every subcategory belonging to category,
// sorted by CatID. An unknown category returns an empty slice.
func (e *Engine) ListSubcategories(category string) []Subcategory {
	var out []Subcategory

	for _, s := range e.subcats {
		if strings.EqualFold(s.Category, category) {
			out = append(out, s)
		}
	}

	return out
}

// LookupCatID returns the subcategory for an exact CatID.
func (e *Engine) LookupCatID(catID string) (Subcategory, bool) {
	s, ok := e.byCatID[catID]
	return s, ok
}

// GetCatIDInfo is an alias for LookupCatID kept for callers that want the
// full taxonomy row (category, synonyms, explanation) rather than just a
// membership check.
func (e *Engine) GetCatIDInfo(catID string) (Subcategory, bool) {
	return e.LookupCatID(catID)
}

// SynonymHit is one taxonomy row matched by SynonymHits, along with the
// synonym that matched and whether the match was exact or a prefix.
type SynonymHit struct {
	Subcategory Subcategory
	Synonym     string
	Exact       bool
}

// minSynonymPrefixLen is the shortest query that may prefix-match a
// synonym; shorter queries (e.g. "car") would otherwise match far too
// broadly against unrelated synonyms ("card", "carpet", "cartoon").
const minSynonymPrefixLen = 4

// SynonymHits searches every subcategory's synonym list for query, exact
// matches first, then prefix matches of at least minSynonymPrefixLen
// characters. Matching is case-insensitive.
func (e *Engine) SynonymHits(query string) []SynonymHit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var exact, prefix []SynonymHit

	for _, sub := range e.subcats {
		for _, syn := range sub.Synonyms {
			lower := strings.ToLower(syn)

			switch {
			case lower == q:
				exact = append(exact, SynonymHit{Subcategory: sub, Synonym: syn, Exact: true})
			case len(q) >= minSynonymPrefixLen && strings.HasPrefix(lower, q):
				prefix = append(prefix, SynonymHit{Subcategory: sub, Synonym: syn})
			}
		}
	}

	return append(exact, prefix...)
}
