package selector

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"redirector/internal/domain/models"
	"redirector/internal/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func newHitCounter() *hitCounter { return &hitCounter{hits: make(map[string]int)} }

func (h *hitCounter) IncrementHits(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[id]++
	return nil
}

func target(id string, weight int, created time.Time) models.RedirectTarget {
	return models.RedirectTarget{
		ID:        id,
		URL:       "https://line.me/R/ti/p/" + id,
		Weight:    weight,
		Active:    true,
		CreatedAt: created,
	}
}

var base = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestOrder(t *testing.T) {
	in := []models.RedirectTarget{
		target("low", 10, base),
		target("old-high", 50, base),
		target("new-high", 50, base.Add(time.Hour)),
		{ID: "inactive", Weight: 100, Active: false},
	}

	got := Order(in)

	ids := make([]string, 0, len(got))
	for _, t := range got {
		ids = append(ids, t.ID)
	}
	assert.Equal(t, []string{"new-high", "old-high", "low"}, ids)
}

func TestPick(t *testing.T) {
	ordered := Order([]models.RedirectTarget{
		target("a", 60, base),
		target("b", 30, base),
		target("c", 10, base),
	})

	tests := []struct {
		u    float64
		want string
	}{
		{u: 0, want: "a"},
		{u: 0.59, want: "a"},
		{u: 0.6, want: "a"},
		{u: 0.61, want: "b"},
		{u: 0.9, want: "b"},
		{u: 0.95, want: "c"},
		{u: 0.999999, want: "c"},
		// out-of-range draw falls back to the last target
		{u: 1.5, want: "c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pick(ordered, tt.u).ID, "u=%v", tt.u)
	}
}

func TestSelectAndRecord_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTargetStore(ctrl)
	// no IncrementHits call is expected
	s := New(store)

	_, err := s.SelectAndRecord(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoneAvailable)

	_, err = s.SelectAndRecord(context.Background(), []models.RedirectTarget{{ID: "x", Weight: 5}})
	require.ErrorIs(t, err, ErrNoneAvailable)
}

func TestSelectAndRecord_RecordsHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTargetStore(ctrl)
	store.EXPECT().IncrementHits(gomock.Any(), "a").Return(nil).Times(1)

	s := New(store, WithRand(fixedRand(0.5)))

	got, err := s.SelectAndRecord(context.Background(), []models.RedirectTarget{
		{ID: "a", URL: "https://line.me/R/ti/p/a", Weight: 100, Active: true, Hits: 41},
	})
	require.NoError(t, err)
	require.Equal(t, "https://line.me/R/ti/p/a", got.URL)
	require.EqualValues(t, 42, got.Hits)
}

func TestSelectAndRecord_HitError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTargetStore(ctrl)
	dbErr := errors.New("database is locked")
	store.EXPECT().IncrementHits(gomock.Any(), "a").Return(dbErr)

	s := New(store, WithRand(fixedRand(0.1)))

	got, err := s.SelectAndRecord(context.Background(), []models.RedirectTarget{target("a", 1, base)})
	require.ErrorIs(t, err, dbErr)
	assert.Equal(t, "a", got.ID, "the choice survives a failed hit write")
	assert.Zero(t, got.Hits)
}

func TestSelectAndRecord_ConvergesToWeights(t *testing.T) {
	hits := newHitCounter()
	s := New(hits, WithRand(rand.New(rand.NewPCG(7, 13))))

	targets := []models.RedirectTarget{
		target("a", 10, base),
		target("b", 30, base),
		target("c", 60, base),
	}

	const draws = 100000
	for i := 0; i < draws; i++ {
		_, err := s.SelectAndRecord(context.Background(), targets)
		require.NoError(t, err)
	}

	for _, tgt := range targets {
		want := float64(tgt.Weight) / 100
		got := float64(hits.hits[tgt.ID]) / draws
		assert.InDelta(t, want, got, 0.01, "target %s", tgt.ID)
	}
}

func TestLockedRand_Range(t *testing.T) {
	r := newLockedRand()
	for i := 0; i < 1000; i++ {
		v := r.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
