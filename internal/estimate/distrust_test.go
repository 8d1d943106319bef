package estimate_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/estimate"
	"github.com/otogelab/constprop/internal/synth"
)

func TestDistrust(t *testing.T) {
	world, err := synth.Generate(synth.Config{Charts: 40})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	Convey("Given trusted constants that match the evidence", t, func() {
		Convey("When the probe runs", func() {
			report, err := estimate.Distrust(context.Background(), world.Catalog, world.Datasets, world.Truth)

			Convey("Then no trusted constant is excluded", func() {
				So(err, ShouldBeNil)
				So(report.Exclusions, ShouldBeEmpty)
				So(report.Result.Contradictions, ShouldEqual, 0)
				So(report.Store, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a trusted constant the evidence rules out", t, func() {
		// pick a chart the run resolves, then trust a different constant
		baseline, err := estimate.Distrust(context.Background(), world.Catalog, world.Datasets, world.Truth)
		So(err, ShouldBeNil)

		var probe catalog.ChartKey
		var resolved formula.ScoreConstant
		for _, chart := range baseline.Store.Charts() {
			state, err := baseline.Store.State(chart)
			So(err, ShouldBeNil)
			if c, ok := state.Constant(); ok {
				probe, resolved = chart, c
				break
			}
		}
		So(probe.Song, ShouldNotBeEmpty)

		wrong := resolved + 1
		if wrong > formula.ConstantMax {
			wrong = resolved - 1
		}
		trusted := map[catalog.ChartKey]formula.ScoreConstant{probe: wrong}

		Convey("When the probe runs", func() {
			report, err := estimate.Distrust(context.Background(), world.Catalog, world.Datasets, trusted)

			Convey("Then the disagreement is reported with both sides", func() {
				So(err, ShouldBeNil)
				So(report.Exclusions, ShouldHaveLength, 1)
				So(report.Exclusions[0].Chart, ShouldResemble, probe)
				So(report.Exclusions[0].Prior, ShouldResemble, []formula.ScoreConstant{resolved})
				So(report.Exclusions[0].Attempted, ShouldResemble, []formula.ScoreConstant{wrong})
			})
		})
	})

	Convey("Given a trusted constant for an uncataloged chart", t, func() {
		trusted := map[catalog.ChartKey]formula.ScoreConstant{
			{Song: "missing", Generation: catalog.GenerationDeluxe, Difficulty: catalog.DifficultyMaster}: 130,
		}

		Convey("When the probe runs", func() {
			_, err := estimate.Distrust(context.Background(), world.Catalog, world.Datasets, trusted)

			Convey("Then it rejects the map up front", func() {
				So(errors.Is(err, catalog.ErrUnknownChart), ShouldBeTrue)
			})
		})
	})
}
