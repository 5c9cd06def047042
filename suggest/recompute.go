// Package suggest derives per-file suggestion structs on every read from a
// cached classifier result, live settings, and the UCS taxonomy. Nothing
// here is persisted: Recompute is a pure function of its three inputs.
package suggest

import (
	"fmt"
	"math"
	"strings"

	"github.com/nomenaudio/corewav/classifier"
	"github.com/nomenaudio/corewav/settings"
	"github.com/nomenaudio/corewav/ucs"
)

// blendAlpha and epsilon are the spec.md §4.5 softmax blend constants.
const (
	blendAlpha = 10.0
	epsilon    = 1e-9
)

// Source tags the provenance of one suggested field.
type Source string

const (
	SourceCLAP      Source = "clap"
	SourceCLAPCap   Source = "clapcap"
	SourceDerived   Source = "derived"
	SourceGenerated Source = "generated"
)

// Field is one suggested value with its provenance and, where meaningful,
// a confidence in [0,1].
type Field struct {
	Value      string
	Source     Source
	Confidence *float64
}

// Result is the full set of suggestions recomputed for one file.
type Result struct {
	Category     Field
	Subcategory  Field
	CatID        Field
	CategoryFull Field
	Keywords     Field
	Filename     Field
	Description  Field
	FXName       Field
}

// Recompute blends classifier hits with filename-derived fuzzy scores,
// picks the top-ranked cat_id, and assembles a Result from the UCS row it
// resolves to plus the cached caption. hits is the AnalysisRecord's
// classification list; filenameTokenScores is the normalized fuzzy score
// per cat_id from ucs.Fuzzy over the file's current name (zero for cat_ids
// with no fuzzy hit). Recompute does no I/O and never suspends.
func Recompute(hits []classifier.Hit, caption string, filenameTokenScores map[string]float64, st settings.Settings, engine *ucs.Engine) Result {
	if len(hits) == 0 {
		return Result{}
	}

	ids := make([]string, len(hits))
	scores := make([]float64, len(hits))

	for i, h := range hits {
		ids[i] = h.CatID
		scores[i] = math.Log(h.Confidence+epsilon) + blendAlpha*filenameTokenScores[h.CatID]
	}

	weights := softmax(scores)

	best := 0
	for i := 1; i < len(weights); i++ {
		if weights[i] > weights[best] {
			best = i
		}
	}

	bestID := ids[best]
	bestWeight := weights[best]

	sub, ok := engine.LookupCatID(bestID)
	if !ok {
		return Result{}
	}

	out := Result{
		Category:     Field{Value: sub.Category, Source: SourceCLAP, Confidence: ptr(bestWeight)},
		Subcategory:  Field{Value: sub.Name, Source: SourceCLAP, Confidence: ptr(bestWeight)},
		CatID:        Field{Value: sub.CatID, Source: SourceCLAP, Confidence: ptr(bestWeight)},
		CategoryFull: Field{Value: fmt.Sprintf("%s-%s", sub.Category, sub.Name), Source: SourceDerived},
		Keywords:     Field{Value: strings.Join(firstN(sub.Synonyms, 10), ", "), Source: SourceDerived},
	}

	parsed := ucs.ParsedName{
		CatID:     sub.CatID,
		FXName:    "Untitled",
		CreatorID: st.CreatorID,
		SourceID:  st.SourceID,
	}

	if caption != "" {
		cleaned := cleanCaption(caption)
		out.Description = Field{Value: cleaned, Source: SourceCLAPCap}

		if fx := fxNameFromCaption(cleaned); fx != "" {
			parsed.FXName = fx
			out.FXName = Field{Value: fx, Source: SourceDerived}
		}
	}

	out.Filename = Field{Value: parsed.Generate(), Source: SourceGenerated}

	return out
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	exp := make([]float64, len(scores))

	var sum float64

	for i, s := range scores {
		exp[i] = math.Exp(s - max)
		sum += exp[i]
	}

	if sum == 0 {
		return exp
	}

	for i := range exp {
		exp[i] /= sum
	}

	return exp
}

func ptr(f float64) *float64 { return &f }

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}

// cleanCaption capitalizes the first letter, strips a trailing period, and
// collapses internal whitespace, per spec.md §4.5.
func cleanCaption(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(strings.TrimSuffix(s, "."))

	if s == "" {
		return s
	}

	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]

	return string(r)
}

// fxNameFromCaption takes the first noun-like phrase up to 25 characters:
// the leading run of words before the first comma/semicolon/period,
// truncated at a word boundary.
func fxNameFromCaption(caption string) string {
	phrase := caption

	if i := strings.IndexAny(phrase, ",;."); i >= 0 {
		phrase = phrase[:i]
	}

	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return ""
	}

	if len(phrase) <= 25 {
		return phrase
	}

	cut := phrase[:25]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}

	return strings.TrimSpace(cut)
}
