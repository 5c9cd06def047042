package ucs

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// ParsedName is a UCS filename broken into its named segments:
//
//	CatID[-UserCategory]_[VendorCategory-]FXName_CreatorID_SourceID[_UserData].ext
type ParsedName struct {
	CatID          string
	UserCategory   string
	VendorCategory string
	FXName         string
	CreatorID      string
	SourceID       string
	UserData       string
	Ext            string
}

// FuzzyCandidate is a taxonomy entry suggested as a likely CatID for a
// filename whose leading segment didn't resolve to one, ranked by how many
// distinct filename tokens matched one of its synonyms.
type FuzzyCandidate struct {
	Subcategory Subcategory
	Score       int
}

// Parse splits filename into its UCS segments:
// CatID[-UserCategory]_[VendorCategory-]FXName_CreatorID_SourceID[_UserData].ext
//
// A name with fewer than 3 segments doesn't carry enough structure to trust
// positionally, so Parse skips straight to fuzzy matching and returns no
// ParsedName. A name with more than 4 segments is still accepted: segments
// beyond the fourth collapse into UserData (UserData itself may legally
// contain underscores). Fuzzy candidates are reported alongside a
// successful parse only when e cannot resolve the CatID segment against
// the taxonomy.
func Parse(e *Engine, filename string) (*ParsedName, []FuzzyCandidate, error) {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	segs := strings.Split(stem, "_")
	if len(segs) < 3 {
		var candidates []FuzzyCandidate
		if e != nil {
			candidates = Fuzzy(e, base)
		}

		return nil, candidates, nil
	}

	p := &ParsedName{Ext: ext}

	catSeg := strings.SplitN(segs[0], "-", 2)
	p.CatID = catSeg[0]

	if len(catSeg) == 2 {
		p.UserCategory = catSeg[1]
	}

	fxSeg := strings.SplitN(segs[1], "-", 2)
	if len(fxSeg) == 2 {
		p.VendorCategory = fxSeg[0]
		p.FXName = fxSeg[1]
	} else {
		p.FXName = fxSeg[0]
	}

	p.CreatorID = segs[2]

	switch {
	case len(segs) == 3:
		// SourceID and UserData both absent.
	case len(segs) == 4:
		p.SourceID = segs[3]
	default:
		p.SourceID = segs[3]
		p.UserData = strings.Join(segs[4:], "_")
	}

	var candidates []FuzzyCandidate

	if e != nil {
		if _, ok := e.LookupCatID(p.CatID); !ok {
			candidates = Fuzzy(e, base)
		}
	}

	return p, candidates, nil
}

// Generate renders p back into the canonical UCS filename.
func (p ParsedName) Generate() string {
	first := p.CatID
	if p.UserCategory != "" {
		first += "-" + p.UserCategory
	}

	second := p.FXName
	if p.VendorCategory != "" {
		second = p.VendorCategory + "-" + p.FXName
	}

	segs := []string{first, second, p.CreatorID, p.SourceID}
	if p.UserData != "" {
		segs = append(segs, p.UserData)
	}

	ext := p.Ext
	if ext == "" {
		ext = ".wav"
	}

	return strings.Join(segs, "_") + ext
}

// Fuzzy tokenizes filename and ranks taxonomy entries by how many distinct
// tokens hit one of their synonyms, highest first.
func Fuzzy(e *Engine, filename string) []FuzzyCandidate {
	tokens := tokenize(filename)

	scores := map[string]int{}
	subByID := map[string]Subcategory{}
	order := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		counted := map[string]bool{}

		for _, hit := range e.SynonymHits(tok) {
			id := hit.Subcategory.CatID
			if counted[id] {
				continue
			}

			counted[id] = true

			if _, ok := scores[id]; !ok {
				order = append(order, id)
				subByID[id] = hit.Subcategory
			}

			scores[id]++
		}
	}

	candidates := make([]FuzzyCandidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, FuzzyCandidate{Subcategory: subByID[id], Score: scores[id]})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}

		return candidates[i].Subcategory.CatID < candidates[j].Subcategory.CatID
	})

	return candidates
}

// tokenize splits a filename into lowercase words for fuzzy matching:
// non-alphanumeric runs are delimiters, each resulting word is further
// split on camelCase boundaries, and the result is deduplicated with
// anything shorter than 3 characters dropped as too ambiguous to match on.
func tokenize(name string) []string {
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var words []string

	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}

	flush()

	var camelSplit []string
	for _, w := range words {
		camelSplit = append(camelSplit, splitCamelCase(w)...)
	}

	seen := make(map[string]bool, len(camelSplit))

	out := make([]string, 0, len(camelSplit))

	for _, t := range camelSplit {
		lower := strings.ToLower(t)
		if len(lower) < 3 || seen[lower] {
			continue
		}

		seen[lower] = true

		out = append(out, lower)
	}

	return out
}

func splitCamelCase(s string) []string {
	runes := []rune(s)

	var words []string

	var cur []rune

	for i, r := range runes {
		startsNewWord := i > 0 && unicode.IsUpper(r) &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])))

		if startsNewWord {
			words = append(words, string(cur))
			cur = nil
		}

		cur = append(cur, r)
	}

	if len(cur) > 0 {
		words = append(words, string(cur))
	}

	return words
}
