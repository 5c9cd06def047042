package ucs

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBuiltinTaxonomy(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	require.NotEmpty(t, e.categories)
	require.NotEmpty(t, e.subcats)
	require.True(t, sort.StringsAreSorted(e.categories))

	sub, ok := e.LookupCatID("WATRDrip")
	require.True(t, ok)
	require.Equal(t, "WATER", sub.Category)
	require.Contains(t, sub.Synonyms, "drip")
}

func TestNewOverrideTaxonomy(t *testing.T) {
	t.Setenv("UCS_CSV_FILE", filepath.Join("testdata", "override.csv"))

	e, err := New()
	require.NoError(t, err)
	require.Len(t, e.subcats, 1)
	require.Equal(t, "AIRBlow", e.subcats[0].CatID)
}

func TestListCategories(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	cats := e.ListCategories()
	require.NotEmpty(t, cats)
	require.Contains(t, cats, "WATER")
	require.Contains(t, cats, "FOOTSTEPS")
}

func TestListSubcategories(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	subs := e.ListSubcategories("WATER")
	require.NotEmpty(t, subs)

	for _, s := range subs {
		require.Equal(t, "WATER", s.Category)
	}
}

func TestLookupCatIDUnknown(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, ok := e.LookupCatID("NOPE_NOT_A_CATID")
	require.False(t, ok)
}

func TestSynonymHitsExactBeforePrefix(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	hits := e.SynonymHits("drip")
	require.NotEmpty(t, hits)
	require.True(t, hits[0].Exact)
	require.Equal(t, "WATRDrip", hits[0].Subcategory.CatID)
}

func TestSynonymHitsPrefixRequiresMinLength(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	hits := e.SynonymHits("dri")
	for _, h := range hits {
		require.True(t, h.Exact, "sub-minimum-length query should only produce exact matches")
	}
}
