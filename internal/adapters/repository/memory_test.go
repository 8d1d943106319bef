package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/otogelab/constprop/internal/adapters/repository"
	"github.com/otogelab/constprop/internal/domain/catalog"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
)

func chart(song string) catalog.ChartKey {
	return catalog.ChartKey{
		Song:       catalog.SongID(song),
		Generation: catalog.GenerationDeluxe,
		Difficulty: catalog.DifficultyMaster,
	}
}

var baseTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func playAt(user model.UserID, song string, offset time.Duration) model.PlayRecord {
	return model.PlayRecord{
		User:        user,
		Chart:       chart(song),
		Achievement: 1_000_000,
		RatingDelta: 280,
		Version:     3,
		PlayedAt:    baseTime.Add(offset),
	}
}

func targetAt(user model.UserID, offset time.Duration) model.RatingTarget {
	return model.RatingTarget{
		User:    user,
		TakenAt: baseTime.Add(offset),
		New: model.TargetList{Target: []model.TargetEntry{
			{Chart: chart("a"), Achievement: 1_000_000},
		}},
	}
}

func TestInMemoryStorePlays(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewInMemoryStore()

		Convey("When plays arrive out of order", func() {
			added, err := store.AddPlayRecords(ctx, []model.PlayRecord{
				playAt("u1", "b", 2*time.Hour),
				playAt("u1", "a", time.Hour),
			})

			Convey("Then the user's history is chronological", func() {
				So(err, ShouldBeNil)
				So(added, ShouldEqual, 2)

				ds, err := store.Dataset(ctx, "u1")
				So(err, ShouldBeNil)
				So(ds.Records, ShouldHaveLength, 2)
				So(ds.Records[0].Chart, ShouldResemble, chart("a"))
				So(ds.Records[1].Chart, ShouldResemble, chart("b"))
			})
		})

		Convey("When the same play is ingested twice", func() {
			batch := []model.PlayRecord{playAt("u1", "a", time.Hour)}
			added, err := store.AddPlayRecords(ctx, batch)
			So(err, ShouldBeNil)
			So(added, ShouldEqual, 1)

			added, err = store.AddPlayRecords(ctx, batch)

			Convey("Then the duplicate is collapsed", func() {
				So(err, ShouldBeNil)
				So(added, ShouldEqual, 0)

				ds, err := store.Dataset(ctx, "u1")
				So(err, ShouldBeNil)
				So(ds.Records, ShouldHaveLength, 1)
			})
		})

		Convey("When a play has no user", func() {
			_, err := store.AddPlayRecords(ctx, []model.PlayRecord{
				{Chart: chart("a"), Achievement: 1_000_000, PlayedAt: baseTime},
			})

			Convey("Then ingestion fails", func() {
				So(errors.Is(err, repository.ErrMissingUser), ShouldBeTrue)
			})
		})

		Convey("When a play's achievement is out of range", func() {
			bad := playAt("u1", "a", 0)
			bad.Achievement = 9_999_999
			_, err := store.AddPlayRecords(ctx, []model.PlayRecord{bad})

			Convey("Then ingestion fails", func() {
				So(errors.Is(err, formula.ErrAchievementOutOfRange), ShouldBeTrue)
			})
		})
	})
}

func TestInMemoryStoreTargets(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewInMemoryStore()

		Convey("When snapshots arrive out of order and with a duplicate", func() {
			added, err := store.AddRatingTargets(ctx, []model.RatingTarget{
				targetAt("u1", 48*time.Hour),
				targetAt("u1", 24*time.Hour),
				targetAt("u1", 48*time.Hour),
			})

			Convey("Then the timeline is chronological and deduplicated", func() {
				So(err, ShouldBeNil)
				So(added, ShouldEqual, 2)

				ds, err := store.Dataset(ctx, "u1")
				So(err, ShouldBeNil)
				So(ds.Targets, ShouldHaveLength, 2)
				So(ds.Targets[0].TakenAt.Before(ds.Targets[1].TakenAt), ShouldBeTrue)
			})
		})

		Convey("When a snapshot entry's achievement is out of range", func() {
			bad := targetAt("u1", time.Hour)
			bad.New.Target[0].Achievement = -1
			_, err := store.AddRatingTargets(ctx, []model.RatingTarget{bad})

			Convey("Then ingestion fails", func() {
				So(errors.Is(err, formula.ErrAchievementOutOfRange), ShouldBeTrue)
			})
		})
	})
}

func TestInMemoryStoreDatasets(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with two users", t, func() {
		store := repository.NewInMemoryStore()
		_, err := store.AddPlayRecords(ctx, []model.PlayRecord{
			playAt("u1", "a", time.Hour),
			playAt("u2", "a", time.Hour),
		})
		So(err, ShouldBeNil)

		Convey("When listing users and datasets", func() {
			users := store.Users(ctx)
			datasets := store.Datasets(ctx)

			Convey("Then both come back in first-seen order", func() {
				So(users, ShouldResemble, []model.UserID{"u1", "u2"})
				So(datasets, ShouldHaveLength, 2)
				So(datasets[0].User, ShouldEqual, model.UserID("u1"))
				So(datasets[1].User, ShouldEqual, model.UserID("u2"))
			})
		})

		Convey("When asking for a user that never appeared", func() {
			_, err := store.Dataset(ctx, "ghost")

			Convey("Then the lookup fails", func() {
				So(errors.Is(err, repository.ErrUnknownUser), ShouldBeTrue)
			})
		})

		Convey("When mutating a returned dataset", func() {
			ds, err := store.Dataset(ctx, "u1")
			So(err, ShouldBeNil)
			ds.Records[0].Achievement = 0

			Convey("Then the store is unaffected", func() {
				again, err := store.Dataset(ctx, "u1")
				So(err, ShouldBeNil)
				So(again.Records[0].Achievement, ShouldEqual, formula.AchievementValue(1_000_000))
			})
		})
	})
}
