// Package synth generates deterministic synthetic worlds: a catalog with
// known hidden constants plus per-user play histories and rating-target
// snapshots consistent with those constants. The pipeline's end-to-end and
// distrust tests run against these worlds, and the synth-dataset command
// writes them out as loadable files.
package synth

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
	"github.com/otogelab/constprop/internal/estimate"
)

// Default generation constants.
const (
	defaultCharts      = 60
	defaultUsers       = 3
	defaultPlays       = 30
	defaultSnapshots   = 4
	defaultTargetLen   = 15
	defaultBelowCutoff = 5
	defaultVersions    = 3
	defaultRandomSeed  = 42

	// Synthetic constants stay in the 10.0..15.0 band where rating targets
	// actually come from.
	constantFloor = 100
	constantBand  = 51

	// Achievements are drawn from 97.0000% to 101.0000% in 0.1% steps.
	achievementFloor = 970_000
	achievementSteps = 41
	achievementStep  = 1_000
)

// Config controls world generation. Zero fields fall back to defaults.
type Config struct {
	Charts       int
	Users        int
	PlaysPerUser int
	Snapshots    int
	TargetLen    int
	BelowCutoff  int
	Versions     int
	Seed         int64
}

func (c Config) withDefaults() Config {
	if c.Charts <= 0 {
		c.Charts = defaultCharts
	}
	if c.Users <= 0 {
		c.Users = defaultUsers
	}
	if c.PlaysPerUser <= 0 {
		c.PlaysPerUser = defaultPlays
	}
	if c.Snapshots <= 0 {
		c.Snapshots = defaultSnapshots
	}
	if c.TargetLen <= 0 {
		c.TargetLen = defaultTargetLen
	}
	if c.BelowCutoff < 0 {
		c.BelowCutoff = defaultBelowCutoff
	}
	if c.Versions <= 0 {
		c.Versions = defaultVersions
	}
	if c.Seed == 0 {
		c.Seed = defaultRandomSeed
	}
	return c
}

// World is one generated universe: the catalog, the hidden truth, and every
// user's evidence derived from it.
type World struct {
	Catalog  *catalog.Catalog
	Truth    map[catalog.ChartKey]formula.ScoreConstant
	Datasets []estimate.Dataset
	Version  catalog.Version
}

// Generate builds a world. The same Config always yields the same world.
func Generate(cfg Config) (*World, error) {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic worlds are the point

	current := catalog.Version(cfg.Versions)
	truth := make(map[catalog.ChartKey]formula.ScoreConstant, cfg.Charts)
	entries := make([]catalog.Entry, 0, cfg.Charts)
	for i := 0; i < cfg.Charts; i++ {
		c := formula.ScoreConstant(constantFloor + rng.Intn(constantBand))
		level, err := catalog.NewLevel(int(c)/10, int(c)%10 >= 7)
		if err != nil {
			return nil, err
		}
		gen := catalog.GenerationDeluxe
		if i%2 == 0 {
			gen = catalog.GenerationStandard
		}
		key := catalog.ChartKey{
			Song:       catalog.SongID(fmt.Sprintf("synth-%03d", i)),
			Generation: gen,
			Difficulty: catalog.DifficultyMaster,
		}
		entries = append(entries, catalog.Entry{
			Chart:      key,
			Level:      level,
			Introduced: catalog.Version(1 + rng.Intn(cfg.Versions)),
		})
		truth[key] = c
	}
	cat, err := catalog.New(entries)
	if err != nil {
		return nil, err
	}

	var newCharts, oldCharts []catalog.ChartKey
	for _, chart := range cat.Charts() {
		e, _ := cat.Entry(chart)
		if e.NewIn(current) {
			newCharts = append(newCharts, chart)
		} else {
			oldCharts = append(oldCharts, chart)
		}
	}

	w := &World{Catalog: cat, Truth: truth, Version: current}
	start := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for u := 0; u < cfg.Users; u++ {
		user := model.UserID(fmt.Sprintf("user-%02d", u))
		ds := estimate.Dataset{User: user}

		playedAt := start.Add(time.Duration(u) * time.Hour)
		for j := 0; j < cfg.PlaysPerUser && len(newCharts) > 0; j++ {
			chart := newCharts[rng.Intn(len(newCharts))]
			a := randomAchievement(rng)
			ds.Records = append(ds.Records, model.PlayRecord{
				User:        user,
				Chart:       chart,
				Achievement: a,
				RatingDelta: formula.SingleSongRating(truth[chart], a, formula.RankCoef(a)),
				Version:     current,
				PlayedAt:    playedAt,
			})
			playedAt = playedAt.Add(7 * time.Minute)
		}

		for k := 0; k < cfg.Snapshots; k++ {
			takenAt := start.Add(time.Duration(24*(k+1)) * time.Hour)
			ds.Targets = append(ds.Targets, model.RatingTarget{
				User:    user,
				TakenAt: takenAt,
				New:     w.rankedList(rng, newCharts, cfg.TargetLen, cfg.BelowCutoff),
				Old:     w.rankedList(rng, oldCharts, cfg.TargetLen, cfg.BelowCutoff),
			})
		}
		w.Datasets = append(w.Datasets, ds)
	}
	return w, nil
}

// rankedList samples charts, assigns best achievements, and orders them by
// their true ratings, descending, splitting off the below-cutoff tail.
func (w *World) rankedList(rng *rand.Rand, pool []catalog.ChartKey, listed, below int) model.TargetList {
	want := listed + below
	if want > len(pool) {
		want = len(pool)
	}
	picks := rng.Perm(len(pool))[:want]

	entries := make([]model.TargetEntry, 0, want)
	for _, idx := range picks {
		entries = append(entries, model.TargetEntry{
			Chart:       pool[idx],
			Achievement: randomAchievement(rng),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return w.trueRating(entries[i]) > w.trueRating(entries[j])
	})

	cut := listed
	if cut > len(entries) {
		cut = len(entries)
	}
	return model.TargetList{Target: entries[:cut], Candidates: entries[cut:]}
}

func (w *World) trueRating(e model.TargetEntry) formula.RatingValue {
	return formula.SingleSongRating(w.Truth[e.Chart], e.Achievement, formula.RankCoef(e.Achievement))
}

func randomAchievement(rng *rand.Rand) formula.AchievementValue {
	return formula.AchievementValue(achievementFloor + rng.Intn(achievementSteps)*achievementStep)
}
