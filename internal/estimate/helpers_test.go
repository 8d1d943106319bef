package estimate_test

import (
	"fmt"
	"testing"

	"github.com/otogelab/constprop/internal/domain/candidates"
	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
)

const currentVersion = catalog.Version(3)

func chart(song string) catalog.ChartKey {
	return catalog.ChartKey{
		Song:       catalog.SongID(song),
		Generation: catalog.GenerationDeluxe,
		Difficulty: catalog.DifficultyMaster,
	}
}

// twoVersionCatalog builds charts "new-0".."new-(n-1)" debuting in the
// current version and "old-0".."old-(n-1)" debuting in version 1, all at
// level 12 through 14 so any constant used in tests fits some level.
func twoVersionCatalog(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	lvl := func(base int) catalog.Level {
		l, err := catalog.NewLevel(base, false)
		if err != nil {
			t.Fatalf("level: %v", err)
		}
		return l
	}
	var entries []catalog.Entry
	for i := 0; i < n; i++ {
		entries = append(entries,
			catalog.Entry{Chart: chart(fmt.Sprintf("new-%d", i)), Level: lvl(12 + i%3), Introduced: currentVersion},
			catalog.Entry{Chart: chart(fmt.Sprintf("old-%d", i)), Level: lvl(12 + i%3), Introduced: 1},
		)
	}
	cat, err := catalog.New(entries)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

// fullDomainStore seeds a full-domain store and pins the given charts to the
// given candidate sets, then clears the pass flag.
func fullDomainStore(t *testing.T, cat *catalog.Catalog, sets map[catalog.ChartKey][]formula.ScoreConstant) *candidates.Store {
	t.Helper()
	store := candidates.New(cat, candidates.WithFullDomain())
	for key, set := range sets {
		if _, err := store.Narrow(key, set); err != nil {
			t.Fatalf("narrow %s: %v", key, err)
		}
	}
	store.ResetPass()
	return store
}

func snapshot(user model.UserID, entries ...model.TargetEntry) model.RatingTarget {
	return model.RatingTarget{
		User: user,
		New:  model.TargetList{Target: entries},
	}
}

func entry(key catalog.ChartKey, a formula.AchievementValue) model.TargetEntry {
	return model.TargetEntry{Chart: key, Achievement: a}
}
