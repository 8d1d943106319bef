package model_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/model"
)

func TestTargetList(t *testing.T) {
	convey.Convey("Given a target list with both segments", t, func() {
		entry := func(song string) model.TargetEntry {
			return model.TargetEntry{
				Chart: catalog.ChartKey{
					Song:       catalog.SongID(song),
					Generation: catalog.GenerationDeluxe,
					Difficulty: catalog.DifficultyMaster,
				},
				Achievement: 1_000_000,
			}
		}
		list := model.TargetList{
			Target:     []model.TargetEntry{entry("a"), entry("b")},
			Candidates: []model.TargetEntry{entry("c")},
		}

		convey.Convey("When counting entries", func() {
			convey.Convey("Then both segments are included", func() {
				convey.So(list.Len(), convey.ShouldEqual, 3)
			})
		})
	})

	convey.Convey("Given an empty list", t, func() {
		convey.Convey("Then its length is zero", func() {
			convey.So(model.TargetList{}.Len(), convey.ShouldEqual, 0)
		})
	})
}

func TestRatingTargetZeroValues(t *testing.T) {
	convey.Convey("Given a zero snapshot", t, func() {
		var target model.RatingTarget

		convey.Convey("Then it carries no evidence", func() {
			convey.So(target.User, convey.ShouldBeEmpty)
			convey.So(target.TakenAt, convey.ShouldEqual, time.Time{})
			convey.So(target.New.Len(), convey.ShouldEqual, 0)
			convey.So(target.Old.Len(), convey.ShouldEqual, 0)
		})
	})
}
