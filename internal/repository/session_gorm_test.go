package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/infra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) SessionStore {
	t.Helper()
	db, err := infra.OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store, err := NewGormSessionStore(db)
	require.NoError(t, err)
	return store
}

func tournament(date string, stake int64) *domain.Session {
	return &domain.Session{
		PlayedDate:  date,
		Venue:       "Club A",
		Type:        domain.SessionTournament,
		StakeCode:   "TOUR_SNG",
		StakeAmount: &stake,
		Entries:     1,
		Cashout:     0,
	}
}

func TestGormStore_NumberingPerDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := tournament("2024-03-01", 1000)
	b := tournament("2024-03-02", 1000)
	c := tournament("2024-03-01", 2000)
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))
	require.NoError(t, store.Create(ctx, c))

	assert.Equal(t, 1, a.SessionNo)
	assert.Equal(t, 1, b.SessionNo)
	assert.Equal(t, 2, c.SessionNo)
	assert.NotZero(t, a.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestGormStore_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Create(ctx, tournament("2024-05-05", 500))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)

	seen := map[int]bool{}
	for _, s := range list {
		assert.False(t, seen[s.SessionNo], "duplicate session_no %d", s.SessionNo)
		seen[s.SessionNo] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "missing session_no %d", i)
	}
}

func TestGormStore_GetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	level := int64(3400)
	format := domain.TourHU
	partner := "Kim"
	mental := "focused"
	s := &domain.Session{
		PlayedDate:     "2024-06-10",
		Venue:          "Online",
		Type:           domain.SessionTimedTournament,
		StakeCode:      "TIMED_3400",
		StakeAmount:    &level,
		Entries:        2,
		TimedLevel:     &level,
		TourFormat:     &format,
		Fees:           300,
		CouponCount:    1,
		CouponValue:    500,
		Cashout:        9000,
		PartnerShareBP: 2500,
		PartnerName:    &partner,
		MentalState:    &mental,
	}
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-10", got.PlayedDate)
	assert.Equal(t, domain.SessionTimedTournament, got.Type)
	assert.Equal(t, "TIMED_3400", got.StakeCode)
	require.NotNil(t, got.TimedLevel)
	assert.Equal(t, int64(3400), *got.TimedLevel)
	require.NotNil(t, got.TourFormat)
	assert.Equal(t, domain.TourHU, *got.TourFormat)
	assert.Equal(t, int64(2500), got.PartnerShareBP)
	assert.Equal(t, int64(9000), got.Cashout)
	require.NotNil(t, got.PartnerName)
	assert.Equal(t, "Kim", *got.PartnerName)
	assert.Nil(t, got.Note)
	assert.Nil(t, got.CashUnits)
}

func TestGormStore_GetMissing(t *testing.T) {
	store := newTestStore(t)
	got, err := store.Get(context.Background(), 4242)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGormStore_DeleteMissingIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	removed, err := store.Delete(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGormStore_DeleteLeavesGapAndMaxIsReused(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := tournament("2024-07-01", 1000)
	second := tournament("2024-07-01", 1000)
	third := tournament("2024-07-01", 1000)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Create(ctx, third))

	// Removing a middle number leaves a gap.
	removed, err := store.Delete(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	next := tournament("2024-07-01", 1000)
	require.NoError(t, store.Create(ctx, next))
	assert.Equal(t, 4, next.SessionNo)

	list, err := store.List(ctx)
	require.NoError(t, err)
	nos := make([]int, 0, len(list))
	for _, s := range list {
		nos = append(nos, s.SessionNo)
	}
	assert.Equal(t, []int{1, 3, 4}, nos)

	// Removing the maximum lets its number be handed out again.
	removed, err = store.Delete(ctx, next.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	again := tournament("2024-07-01", 1000)
	require.NoError(t, store.Create(ctx, again))
	assert.Equal(t, 4, again.SessionNo)
}

func TestGormStore_Ping(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
