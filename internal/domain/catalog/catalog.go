// Package catalog holds the global chart catalog shared by every user's
// dataset: chart identities, coarse display levels, and the version ranges
// that decide whether a play counts as first-version evidence.
package catalog

import (
	"fmt"

	"github.com/otogelab/constprop/internal/domain/formula"
)

// Generation distinguishes the two chart lineages a song can carry.
type Generation int

const (
	GenerationStandard Generation = iota
	GenerationDeluxe
)

func (g Generation) String() string {
	switch g {
	case GenerationStandard:
		return "STD"
	case GenerationDeluxe:
		return "DX"
	default:
		return fmt.Sprintf("Generation(%d)", int(g))
	}
}

// Difficulty is a chart's difficulty tier.
type Difficulty int

const (
	DifficultyBasic Difficulty = iota
	DifficultyAdvanced
	DifficultyExpert
	DifficultyMaster
	DifficultyReMaster
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyBasic:
		return "BASIC"
	case DifficultyAdvanced:
		return "ADVANCED"
	case DifficultyExpert:
		return "EXPERT"
	case DifficultyMaster:
		return "MASTER"
	case DifficultyReMaster:
		return "Re:MASTER"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// SongID identifies a song within one generation.
type SongID string

// ChartKey is the unique key of one playable chart. It is comparable and is
// used as the map key everywhere charts are tracked.
type ChartKey struct {
	Song       SongID
	Generation Generation
	Difficulty Difficulty
}

func (k ChartKey) String() string {
	return fmt.Sprintf("%s [%s %s]", k.Song, k.Generation, k.Difficulty)
}

// Version is the ordinal of a game release. Versions are dense and start at 1;
// VersionNone marks "no version" (e.g. a chart that was never removed).
type Version int

// VersionNone is the zero Version.
const VersionNone Version = 0

// Level is a chart's coarse displayed level, e.g. "13" or "13+". It bounds the
// initial candidate set before any play evidence is applied.
type Level struct {
	base int
	plus bool
}

// plusLevelMin is the lowest level that the game splits into plain and plus.
const plusLevelMin = 7

// NewLevel validates a displayed level. Plus levels exist only from 7 up.
func NewLevel(base int, plus bool) (Level, error) {
	if base < 1 || base > 15 {
		return Level{}, fmt.Errorf("%w: %d", ErrInvalidLevel, base)
	}
	if plus && (base < plusLevelMin || base == 15) {
		return Level{}, fmt.Errorf("%w: %d+", ErrInvalidLevel, base)
	}
	return Level{base: base, plus: plus}, nil
}

func (l Level) String() string {
	if l.plus {
		return fmt.Sprintf("%d+", l.base)
	}
	return fmt.Sprintf("%d", l.base)
}

// Candidates returns the constants a chart at this level can hide.
// A plain level L spans [L.0, L.6] once plus levels exist, the whole unit
// below that, and "L+" spans [L.7, L.9].
func (l Level) Candidates() []formula.ScoreConstant {
	lo := formula.ScoreConstant(l.base * 10)
	hi := lo + 9
	if l.base >= plusLevelMin {
		if l.plus {
			lo += 7
		} else {
			hi = lo + 6
		}
	}
	if hi > formula.ConstantMax {
		hi = formula.ConstantMax
	}
	out := make([]formula.ScoreConstant, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		out = append(out, c)
	}
	return out
}

// Entry is one catalog row: a chart, its displayed level, and the version
// range in which it is playable.
type Entry struct {
	Chart      ChartKey
	Level      Level
	Introduced Version
	// Removed is the version the chart was pulled in, or VersionNone.
	Removed Version
}

// InVersion reports whether the chart is playable in version v.
func (e Entry) InVersion(v Version) bool {
	return v >= e.Introduced && (e.Removed == VersionNone || v < e.Removed)
}

// NewIn reports whether version v is the chart's debut version.
func (e Entry) NewIn(v Version) bool {
	return e.Introduced == v
}

// Catalog is an immutable chart catalog. Build one with New and share it
// read-only across users.
type Catalog struct {
	entries map[ChartKey]Entry
	order   []ChartKey
	latest  Version
}

// New builds a catalog from entries, rejecting duplicates and version ranges
// that end before they begin.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[ChartKey]Entry, len(entries)),
		order:   make([]ChartKey, 0, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.entries[e.Chart]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateChart, e.Chart)
		}
		if e.Introduced == VersionNone {
			return nil, fmt.Errorf("%w: %s has no introduction version", ErrInvalidEntry, e.Chart)
		}
		if e.Removed != VersionNone && e.Removed <= e.Introduced {
			return nil, fmt.Errorf("%w: %s removed in %d but introduced in %d",
				ErrInvalidEntry, e.Chart, e.Removed, e.Introduced)
		}
		c.entries[e.Chart] = e
		c.order = append(c.order, e.Chart)
		if e.Introduced > c.latest {
			c.latest = e.Introduced
		}
	}
	return c, nil
}

// Entry looks up one chart.
func (c *Catalog) Entry(key ChartKey) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Charts returns every chart key in catalog order.
func (c *Catalog) Charts() []ChartKey {
	out := make([]ChartKey, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of charts.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Latest returns the newest version any chart debuted in.
func (c *Catalog) Latest() Version {
	return c.latest
}
