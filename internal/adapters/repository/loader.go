package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
)

// JSON shapes for locally stored, already-parsed evidence. These are this
// repo's own files, not anything the game serves.

type chartJSON struct {
	Song       string `json:"song"`
	Generation string `json:"generation"`
	Difficulty string `json:"difficulty"`
}

func (c chartJSON) key() (catalog.ChartKey, error) {
	gen, err := catalog.ParseGeneration(c.Generation)
	if err != nil {
		return catalog.ChartKey{}, err
	}
	diff, err := catalog.ParseDifficulty(c.Difficulty)
	if err != nil {
		return catalog.ChartKey{}, err
	}
	return catalog.ChartKey{Song: catalog.SongID(c.Song), Generation: gen, Difficulty: diff}, nil
}

type playJSON struct {
	chartJSON
	Achievement int       `json:"achievement"`
	RatingDelta int       `json:"rating_delta"`
	Version     int       `json:"version"`
	PlayedAt    time.Time `json:"played_at"`
}

type entryJSON struct {
	chartJSON
	Achievement int `json:"achievement"`
}

type listJSON struct {
	Target     []entryJSON `json:"target"`
	Candidates []entryJSON `json:"candidates,omitempty"`
}

type targetJSON struct {
	TakenAt time.Time `json:"taken_at"`
	New     listJSON  `json:"new"`
	Old     listJSON  `json:"old"`
}

type datasetJSON struct {
	User    string       `json:"user"`
	Plays   []playJSON   `json:"plays"`
	Targets []targetJSON `json:"targets"`
}

// LoadDatasetFile reads one user dataset file into the store.
func LoadDatasetFile(ctx context.Context, store Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dataset %s: %w", path, err)
	}
	var file datasetJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	user := model.UserID(file.User)

	recs := make([]model.PlayRecord, 0, len(file.Plays))
	for _, p := range file.Plays {
		key, err := p.key()
		if err != nil {
			return fmt.Errorf("dataset %s: %w", path, err)
		}
		recs = append(recs, model.PlayRecord{
			User:        user,
			Chart:       key,
			Achievement: formula.AchievementValue(p.Achievement),
			RatingDelta: formula.RatingValue(p.RatingDelta),
			Version:     catalog.Version(p.Version),
			PlayedAt:    p.PlayedAt,
		})
	}
	if _, err := store.AddPlayRecords(ctx, recs); err != nil {
		return fmt.Errorf("dataset %s: %w", path, err)
	}

	targets := make([]model.RatingTarget, 0, len(file.Targets))
	for _, t := range file.Targets {
		newList, err := toList(t.New)
		if err != nil {
			return fmt.Errorf("dataset %s: %w", path, err)
		}
		oldList, err := toList(t.Old)
		if err != nil {
			return fmt.Errorf("dataset %s: %w", path, err)
		}
		targets = append(targets, model.RatingTarget{
			User:    user,
			TakenAt: t.TakenAt,
			New:     newList,
			Old:     oldList,
		})
	}
	if _, err := store.AddRatingTargets(ctx, targets); err != nil {
		return fmt.Errorf("dataset %s: %w", path, err)
	}
	return nil
}

// LoadDatasetDir loads every *.json dataset under dir. Returns the number of
// files loaded.
func LoadDatasetDir(ctx context.Context, store Store, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, err
	}
	for _, path := range paths {
		if err := LoadDatasetFile(ctx, store, path); err != nil {
			return 0, err
		}
	}
	return len(paths), nil
}

func toList(l listJSON) (model.TargetList, error) {
	out := model.TargetList{}
	for _, e := range l.Target {
		en, err := toEntry(e)
		if err != nil {
			return out, err
		}
		out.Target = append(out.Target, en)
	}
	for _, e := range l.Candidates {
		en, err := toEntry(e)
		if err != nil {
			return out, err
		}
		out.Candidates = append(out.Candidates, en)
	}
	return out, nil
}

func toEntry(e entryJSON) (model.TargetEntry, error) {
	key, err := e.key()
	if err != nil {
		return model.TargetEntry{}, err
	}
	return model.TargetEntry{Chart: key, Achievement: formula.AchievementValue(e.Achievement)}, nil
}

type catalogEntryJSON struct {
	chartJSON
	Level      string `json:"level"`
	Introduced int    `json:"introduced"`
	Removed    int    `json:"removed,omitempty"`
}

type catalogJSON struct {
	Charts []catalogEntryJSON `json:"charts"`
}

// LoadCatalogFile reads the shared chart catalog.
func LoadCatalogFile(path string) (*catalog.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	var file catalogJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	entries := make([]catalog.Entry, 0, len(file.Charts))
	for _, c := range file.Charts {
		key, err := c.key()
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		level, err := catalog.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %s: %w", path, key, err)
		}
		entries = append(entries, catalog.Entry{
			Chart:      key,
			Level:      level,
			Introduced: catalog.Version(c.Introduced),
			Removed:    catalog.Version(c.Removed),
		})
	}
	return catalog.New(entries)
}

type seedEntryJSON struct {
	chartJSON
	// Constant is in tenths, e.g. 130 for 13.0.
	Constant int `json:"constant"`
}

type seedJSON struct {
	Constants []seedEntryJSON `json:"constants"`
}

// LoadSeedFile reads a community seed map of confirmed constants.
func LoadSeedFile(path string) (map[catalog.ChartKey]formula.ScoreConstant, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	var file seedJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing seed %s: %w", path, err)
	}
	out := make(map[catalog.ChartKey]formula.ScoreConstant, len(file.Constants))
	for _, s := range file.Constants {
		key, err := s.key()
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
		c := formula.ScoreConstant(s.Constant)
		if !c.Valid() {
			return nil, fmt.Errorf("seed %s: %s: constant %d out of domain", path, key, s.Constant)
		}
		out[key] = c
	}
	return out, nil
}
