package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
)

func chart(song string) catalog.ChartKey {
	return catalog.ChartKey{
		Song:       catalog.SongID(song),
		Generation: catalog.GenerationDeluxe,
		Difficulty: catalog.DifficultyMaster,
	}
}

func level(t *testing.T, base int, plus bool) catalog.Level {
	t.Helper()
	l, err := catalog.NewLevel(base, plus)
	require.NoError(t, err)
	return l
}

func TestNewLevelValidation(t *testing.T) {
	_, err := catalog.NewLevel(0, false)
	assert.ErrorIs(t, err, catalog.ErrInvalidLevel)

	_, err = catalog.NewLevel(16, false)
	assert.ErrorIs(t, err, catalog.ErrInvalidLevel)

	// Plus levels only exist from 7 up, and 15 has no plus.
	_, err = catalog.NewLevel(6, true)
	assert.ErrorIs(t, err, catalog.ErrInvalidLevel)
	_, err = catalog.NewLevel(15, true)
	assert.ErrorIs(t, err, catalog.ErrInvalidLevel)

	_, err = catalog.NewLevel(7, true)
	assert.NoError(t, err)
}

func TestLevelCandidates(t *testing.T) {
	cases := []struct {
		level    catalog.Level
		lo, hi   formula.ScoreConstant
	}{
		{level(t, 5, false), 50, 59},
		{level(t, 13, false), 130, 136},
		{level(t, 13, true), 137, 139},
		{level(t, 15, false), 150, 150},
	}
	for _, tc := range cases {
		got := tc.level.Candidates()
		require.NotEmpty(t, got, "level %s", tc.level)
		assert.Equal(t, tc.lo, got[0], "level %s", tc.level)
		assert.Equal(t, tc.hi, got[len(got)-1], "level %s", tc.level)
		assert.Len(t, got, int(tc.hi-tc.lo)+1, "level %s", tc.level)
	}
}

func TestParseLevel(t *testing.T) {
	l, err := catalog.ParseLevel("13+")
	require.NoError(t, err)
	assert.Equal(t, "13+", l.String())

	l, err = catalog.ParseLevel(" 9 ")
	require.NoError(t, err)
	assert.Equal(t, "9", l.String())

	_, err = catalog.ParseLevel("x")
	assert.ErrorIs(t, err, catalog.ErrInvalidLevel)
}

func TestEntryVersionRange(t *testing.T) {
	e := catalog.Entry{Chart: chart("a"), Level: level(t, 13, false), Introduced: 2, Removed: 4}
	assert.False(t, e.InVersion(1))
	assert.True(t, e.InVersion(2))
	assert.True(t, e.InVersion(3))
	assert.False(t, e.InVersion(4))
	assert.True(t, e.NewIn(2))
	assert.False(t, e.NewIn(3))

	kept := catalog.Entry{Chart: chart("b"), Level: level(t, 13, false), Introduced: 1}
	assert.True(t, kept.InVersion(99))
}

func TestCatalogNew(t *testing.T) {
	entries := []catalog.Entry{
		{Chart: chart("a"), Level: level(t, 13, false), Introduced: 1},
		{Chart: chart("b"), Level: level(t, 12, true), Introduced: 3},
	}
	cat, err := catalog.New(entries)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, catalog.Version(3), cat.Latest())
	assert.Equal(t, []catalog.ChartKey{chart("a"), chart("b")}, cat.Charts())

	got, ok := cat.Entry(chart("b"))
	require.True(t, ok)
	assert.Equal(t, catalog.Version(3), got.Introduced)

	_, ok = cat.Entry(chart("missing"))
	assert.False(t, ok)
}

func TestCatalogNewRejectsBadEntries(t *testing.T) {
	dup := []catalog.Entry{
		{Chart: chart("a"), Level: level(t, 13, false), Introduced: 1},
		{Chart: chart("a"), Level: level(t, 13, false), Introduced: 2},
	}
	_, err := catalog.New(dup)
	assert.ErrorIs(t, err, catalog.ErrDuplicateChart)

	noIntro := []catalog.Entry{{Chart: chart("a"), Level: level(t, 13, false)}}
	_, err = catalog.New(noIntro)
	assert.ErrorIs(t, err, catalog.ErrInvalidEntry)

	badRange := []catalog.Entry{{Chart: chart("a"), Level: level(t, 13, false), Introduced: 3, Removed: 3}}
	_, err = catalog.New(badRange)
	assert.ErrorIs(t, err, catalog.ErrInvalidEntry)
}

func TestParseGenerationAndDifficulty(t *testing.T) {
	g, err := catalog.ParseGeneration("dx")
	require.NoError(t, err)
	assert.Equal(t, catalog.GenerationDeluxe, g)

	g, err = catalog.ParseGeneration("Standard")
	require.NoError(t, err)
	assert.Equal(t, catalog.GenerationStandard, g)

	_, err = catalog.ParseGeneration("??")
	assert.Error(t, err)

	d, err := catalog.ParseDifficulty("Re:MASTER")
	require.NoError(t, err)
	assert.Equal(t, catalog.DifficultyReMaster, d)

	_, err = catalog.ParseDifficulty("ultra")
	assert.Error(t, err)
}
