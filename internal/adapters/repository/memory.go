package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/otogelab/constprop/internal/domain/dedupe"
	"github.com/otogelab/constprop/internal/domain/formula"
	"github.com/otogelab/constprop/internal/domain/model"
	"github.com/otogelab/constprop/internal/estimate"
)

// Namespaces for deriving stable record IDs from natural keys, so the same
// play or snapshot re-fetched later maps to the same ID.
var (
	playNamespace     = uuid.NewSHA1(uuid.NameSpaceURL, []byte("constprop/play"))
	snapshotNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("constprop/snapshot"))
)

type userData struct {
	records []model.PlayRecord
	targets []model.RatingTarget
}

// InMemoryStore implements Store with per-user slices and a deduper.
type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[model.UserID]*userData
	order   []model.UserID
	deduper dedupe.Deduper
}

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithDeduper substitutes the idempotency tracker.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *InMemoryStore) {
		if d != nil {
			s.deduper = d
		}
	}
}

// NewInMemoryStore creates an empty dataset store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		users:   make(map[model.UserID]*userData),
		deduper: dedupe.NewInMemoryDeduper(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) user(id model.UserID) *userData {
	u, ok := s.users[id]
	if !ok {
		u = &userData{}
		s.users[id] = u
		s.order = append(s.order, id)
	}
	return u
}

// AddPlayRecords ingests plays, validating achievements at this boundary and
// collapsing records already seen.
func (s *InMemoryStore) AddPlayRecords(ctx context.Context, recs []model.PlayRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	touched := make(map[model.UserID]struct{})
	for _, rec := range recs {
		if rec.User == "" {
			return added, fmt.Errorf("%w: play on %s", ErrMissingUser, rec.Chart)
		}
		if !rec.Achievement.Valid() {
			return added, fmt.Errorf("play on %s: %w: %d", rec.Chart, formula.ErrAchievementOutOfRange, int(rec.Achievement))
		}
		if rec.ID == "" {
			rec.ID = playID(rec)
		}
		if s.deduper.SeenAndRecord(ctx, rec.ID) {
			continue
		}
		s.user(rec.User).records = append(s.user(rec.User).records, rec)
		touched[rec.User] = struct{}{}
		added++
	}
	for id := range touched {
		u := s.users[id]
		sort.SliceStable(u.records, func(i, j int) bool {
			return u.records[i].PlayedAt.Before(u.records[j].PlayedAt)
		})
	}
	return added, nil
}

// AddRatingTargets ingests snapshots with the same guarantees.
func (s *InMemoryStore) AddRatingTargets(ctx context.Context, targets []model.RatingTarget) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	touched := make(map[model.UserID]struct{})
	for _, t := range targets {
		if t.User == "" {
			return added, fmt.Errorf("%w: snapshot at %s", ErrMissingUser, t.TakenAt)
		}
		for _, en := range append(flattenList(t.New), flattenList(t.Old)...) {
			if !en.Achievement.Valid() {
				return added, fmt.Errorf("snapshot entry %s: %w: %d", en.Chart, formula.ErrAchievementOutOfRange, int(en.Achievement))
			}
		}
		if t.ID == "" {
			t.ID = snapshotID(t)
		}
		if s.deduper.SeenAndRecord(ctx, t.ID) {
			continue
		}
		s.user(t.User).targets = append(s.user(t.User).targets, t)
		touched[t.User] = struct{}{}
		added++
	}
	for id := range touched {
		u := s.users[id]
		sort.SliceStable(u.targets, func(i, j int) bool {
			return u.targets[i].TakenAt.Before(u.targets[j].TakenAt)
		})
	}
	return added, nil
}

// Users lists every user with data, in first-seen order.
func (s *InMemoryStore) Users(_ context.Context) []model.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.UserID, len(s.order))
	copy(out, s.order)
	return out
}

// Dataset returns a copy of one user's evidence.
func (s *InMemoryStore) Dataset(_ context.Context, user model.UserID) (estimate.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[user]
	if !ok {
		return estimate.Dataset{}, fmt.Errorf("%w: %s", ErrUnknownUser, user)
	}
	return estimate.Dataset{
		User:    user,
		Records: append([]model.PlayRecord(nil), u.records...),
		Targets: append([]model.RatingTarget(nil), u.targets...),
	}, nil
}

// Datasets returns every user's evidence in first-seen user order.
func (s *InMemoryStore) Datasets(ctx context.Context) []estimate.Dataset {
	out := make([]estimate.Dataset, 0, len(s.Users(ctx)))
	for _, user := range s.Users(ctx) {
		ds, err := s.Dataset(ctx, user)
		if err != nil {
			continue
		}
		out = append(out, ds)
	}
	return out
}

func flattenList(l model.TargetList) []model.TargetEntry {
	return append(append([]model.TargetEntry(nil), l.Target...), l.Candidates...)
}

func playID(rec model.PlayRecord) string {
	key := fmt.Sprintf("%s|%s|%d|%d", rec.User, rec.Chart, rec.PlayedAt.UnixNano(), int(rec.Achievement))
	return uuid.NewSHA1(playNamespace, []byte(key)).String()
}

func snapshotID(t model.RatingTarget) string {
	key := fmt.Sprintf("%s|%d", t.User, t.TakenAt.UnixNano())
	return uuid.NewSHA1(snapshotNamespace, []byte(key)).String()
}
