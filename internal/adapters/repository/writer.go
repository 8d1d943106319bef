package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
	"github.com/otogelab/constprop/internal/estimate"
)

const fileMode = 0o644

func toChartJSON(key catalog.ChartKey) chartJSON {
	return chartJSON{
		Song:       string(key.Song),
		Generation: key.Generation.String(),
		Difficulty: key.Difficulty.String(),
	}
}

// WriteCatalogFile writes a catalog in the shape LoadCatalogFile reads.
func WriteCatalogFile(path string, cat *catalog.Catalog) error {
	out := catalogJSON{Charts: make([]catalogEntryJSON, 0, cat.Len())}
	for _, chart := range cat.Charts() {
		e, _ := cat.Entry(chart)
		out.Charts = append(out.Charts, catalogEntryJSON{
			chartJSON:  toChartJSON(chart),
			Level:      e.Level.String(),
			Introduced: int(e.Introduced),
			Removed:    int(e.Removed),
		})
	}
	return writeJSON(path, out)
}

// WriteSeedFile writes a constant map in the shape LoadSeedFile reads.
// Charts are emitted in cat's order for stable output.
func WriteSeedFile(path string, cat *catalog.Catalog, seed map[catalog.ChartKey]formula.ScoreConstant) error {
	out := seedJSON{}
	for _, chart := range cat.Charts() {
		c, ok := seed[chart]
		if !ok {
			continue
		}
		out.Constants = append(out.Constants, seedEntryJSON{
			chartJSON: toChartJSON(chart),
			Constant:  int(c),
		})
	}
	return writeJSON(path, out)
}

// WriteDatasetFile writes one user dataset in the shape LoadDatasetFile reads.
func WriteDatasetFile(path string, ds estimate.Dataset) error {
	out := datasetJSON{User: string(ds.User)}
	for _, rec := range ds.Records {
		out.Plays = append(out.Plays, playJSON{
			chartJSON:   toChartJSON(rec.Chart),
			Achievement: int(rec.Achievement),
			RatingDelta: int(rec.RatingDelta),
			Version:     int(rec.Version),
			PlayedAt:    rec.PlayedAt,
		})
	}
	for _, t := range ds.Targets {
		out.Targets = append(out.Targets, targetJSON{
			TakenAt: t.TakenAt,
			New:     fromList(t.New),
			Old:     fromList(t.Old),
		})
	}
	return writeJSON(path, out)
}

func fromList(l model.TargetList) listJSON {
	out := listJSON{}
	for _, e := range l.Target {
		out.Target = append(out.Target, entryJSON{chartJSON: toChartJSON(e.Chart), Achievement: int(e.Achievement)})
	}
	for _, e := range l.Candidates {
		out.Candidates = append(out.Candidates, entryJSON{chartJSON: toChartJSON(e.Chart), Achievement: int(e.Achievement)})
	}
	return out
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, fileMode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
