package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/pokerledger/tracker/internal/accounting"
	"github.com/pokerledger/tracker/internal/analytics"
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory SessionStore.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.Session
	err    error
}

func (m *memStore) List(context.Context) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Session, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memStore) Get(_ context.Context, id int64) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			s := m.rows[i]
			return &s, nil
		}
	}
	return nil, m.err
}

func (m *memStore) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	next := 1
	for _, r := range m.rows {
		if r.PlayedDate == s.PlayedDate && r.SessionNo >= next {
			next = r.SessionNo + 1
		}
	}
	m.nextID++
	s.ID = m.nextID
	s.SessionNo = next
	m.rows = append(m.rows, *s)
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Ping(context.Context) error { return m.err }

func newTestService() (*SessionService, *memStore) {
	store := &memStore{}
	return NewSessionService(store, slog.New(slog.NewJSONHandler(io.Discard, nil))), store
}

func i64(v int64) *int64 { return &v }

func str(v string) *string { return &v }

func fmtp(f domain.TourFormat) *domain.TourFormat { return &f }

func TestBuildSession_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateSessionInput
		msg   string
	}{
		{"missing date", CreateSessionInput{Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1)}, "played_date"},
		{"bad date", CreateSessionInput{PlayedDate: "2024/01/01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1)}, "invalid date"},
		{"blank venue", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "  ", SessionType: domain.SessionCash, CashUnitAmount: i64(1)}, "venue"},
		{"unknown type", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: "BINGO"}, "session_type"},
		{"share too high", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1), PartnerShareBP: i64(10001)}, "partner_share_bp"},
		{"share negative", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1), PartnerShareBP: i64(-1)}, "partner_share_bp"},
		{"cash without unit amount", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash}, "cash_unit_amount"},
		{"tournament without stake", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionTournament}, "stake_amount"},
		{"timed without level or stake", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionTimedTournament}, "timed_level"},
		{"timed level off ladder", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionTimedTournament, TimedLevel: i64(1000)}, "timed_level"},
		{"unknown tour format", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionTournament, StakeAmount: i64(1), TourFormat: fmtp("MTT")}, "tour_format"},
		{"stake above column bound", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionTournament, StakeAmount: i64(domain.MaxAmount + 1)}, "stake_amount"},
		{"cashout above column bound", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1), Cashout: i64(1e16)}, "cashout"},
		{"fees above column bound", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1), Fees: i64(1e16)}, "fees"},
		{"entries above int4", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionTournament, StakeAmount: i64(1), Entries: i64(1 << 31)}, "entries"},
		{"stake buy-in overflows", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionTournament, StakeAmount: i64(4e9), Entries: i64(4e8)}, "stake buy-in"},
		{"cash buy-in overflows", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1e12), CashUnits: i64(1e6)}, "cash buy-in"},
		{"coupon total overflows", CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1), CouponCount: i64(1e9), CouponValue: i64(1e9)}, "coupon total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSession(tt.input)
			require.Error(t, err)
			var appErr *domain.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Equal(t, 400, appErr.Status)
			assert.Contains(t, appErr.Message, tt.msg)
		})
	}
}

func TestBuildSession_LargestAmountsKeepCostExact(t *testing.T) {
	sess, err := BuildSession(CreateSessionInput{
		PlayedDate:  "2024-01-01",
		Venue:       "A",
		SessionType: domain.SessionTournament,
		StakeAmount: i64(domain.MaxAmount / 1000),
		Entries:     i64(1000),
		Fees:        i64(domain.MaxAmount),
		Cashout:     i64(0),
	})
	require.NoError(t, err)

	figures := accounting.Derive(sess)
	assert.Equal(t, int64(999_999_999_999_000), figures.CostRaw)
	assert.Equal(t, int64(1_999_999_999_998_999), figures.CostNet)
	assert.Equal(t, -figures.CostNet, figures.ProfitTotal)
}

func TestBuildSession_Cash(t *testing.T) {
	s, err := BuildSession(CreateSessionInput{
		PlayedDate:     "2024-01-01",
		Venue:          " Club ",
		SessionType:    domain.SessionCash,
		CashUnitAmount: i64(5000),
		CashUnits:      i64(0),
		StakeAmount:    i64(999),
		Entries:        i64(4),
		TimedLevel:     i64(1200),
		Cashout:        i64(7000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Club", s.Venue)
	assert.Equal(t, "CASH", s.StakeCode)
	assert.Nil(t, s.StakeAmount)
	assert.Nil(t, s.TimedLevel)
	assert.Equal(t, int64(1), s.Entries)
	assert.Equal(t, int64(5000), *s.CashUnitAmount)
	assert.Equal(t, int64(1), *s.CashUnits, "units are at least one")
}

func TestBuildSession_TimedDefaultsStakeToLevel(t *testing.T) {
	s, err := BuildSession(CreateSessionInput{
		PlayedDate:  "2024-01-01",
		Venue:       "A",
		SessionType: domain.SessionTimedTournament,
		TimedLevel:  i64(2400),
		Entries:     i64(3),
		TourFormat:  fmtp(domain.TourHU),
	})
	require.NoError(t, err)
	assert.Equal(t, "TIMED_2400", s.StakeCode)
	assert.Equal(t, int64(2400), *s.StakeAmount)
	assert.Equal(t, int64(3), s.Entries)
	assert.Nil(t, s.TourFormat)
}

func TestBuildSession_TimedWithoutLevelFallsBack(t *testing.T) {
	s, err := BuildSession(CreateSessionInput{
		PlayedDate:  "2024-01-01",
		Venue:       "A",
		SessionType: domain.SessionTimedTournament,
		StakeAmount: i64(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, "TIMED_0", s.StakeCode)
	assert.Equal(t, int64(1500), *s.StakeAmount)
}

func TestBuildSession_TournamentAndOverrides(t *testing.T) {
	s, err := BuildSession(CreateSessionInput{
		PlayedDate:  "2024-01-01",
		Venue:       "A",
		SessionType: domain.SessionTournament,
		StakeAmount: i64(-10),
		Entries:     i64(-2),
		Fees:        i64(-5),
		CouponCount: i64(-1),
		CouponValue: i64(-1),
		Cashout:     i64(-100),
		MentalState: str("  "),
		Note:        str(" good run "),
	})
	require.NoError(t, err)
	assert.Equal(t, "TOUR_OTHER", s.StakeCode)
	assert.Equal(t, int64(0), *s.StakeAmount)
	assert.Equal(t, int64(1), s.Entries)
	assert.Zero(t, s.Fees)
	assert.Zero(t, s.CouponCount)
	assert.Zero(t, s.CouponValue)
	assert.Zero(t, s.Cashout)
	assert.Nil(t, s.MentalState)
	require.NotNil(t, s.Note)
	assert.Equal(t, "good run", *s.Note)

	s, err = BuildSession(CreateSessionInput{
		PlayedDate:  "2024-01-01",
		Venue:       "A",
		SessionType: domain.SessionTournament,
		StakeAmount: i64(100),
		TourFormat:  fmtp(domain.TourSNG),
		StakeCode:   str("LEGACY_MONTHLY"),
	})
	require.NoError(t, err)
	assert.Equal(t, "LEGACY_MONTHLY", s.StakeCode)

	s, err = BuildSession(CreateSessionInput{
		PlayedDate:  "2024-01-01",
		Venue:       "A",
		SessionType: domain.SessionTournament,
		StakeAmount: i64(100),
		TourFormat:  fmtp(domain.TourSNG),
		StakeCode:   str("   "),
	})
	require.NoError(t, err)
	assert.Equal(t, "TOUR_SNG", s.StakeCode)
}

func TestSessionService_CreateReturnsDerivedRecord(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, CreateSessionInput{
		PlayedDate:     "2024-02-01",
		Venue:          "Club",
		SessionType:    domain.SessionTournament,
		StakeAmount:    i64(1000),
		Entries:        i64(2),
		Fees:           i64(100),
		CouponCount:    i64(1),
		CouponValue:    i64(500),
		Cashout:        i64(3000),
		PartnerShareBP: i64(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.SessionNo)
	assert.Equal(t, int64(2000), rec.CostRaw)
	assert.Equal(t, int64(1600), rec.CostNet)
	assert.Equal(t, int64(1400), rec.ProfitTotal)
	assert.Equal(t, "700", rec.SelfProfit.String())
	assert.Equal(t, "800", rec.SelfCost.String())
}

func TestSessionService_ListIsCanonicalOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, d := range []string{"2024-03-02", "2024-03-01", "2024-03-02", "2024-03-01"} {
		_, err := svc.Create(ctx, CreateSessionInput{PlayedDate: d, Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(100)})
		require.NoError(t, err)
	}

	records, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4)

	got := make([]string, 0, 4)
	for _, r := range records {
		got = append(got, analytics.Entry{PlayedDate: r.PlayedDate, SessionNo: r.SessionNo}.Label())
	}
	assert.Equal(t, []string{"2024-03-01 #1", "2024-03-01 #2", "2024-03-02 #1", "2024-03-02 #2"}, got)
}

func TestSessionService_DeleteIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, CreateSessionInput{PlayedDate: "2024-04-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(100)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rec.ID))
	assert.Empty(t, store.rows)
	require.NoError(t, svc.Delete(ctx, rec.ID))
	require.NoError(t, svc.Delete(ctx, 12345))

	err = svc.Delete(ctx, 0)
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Status)
}

func TestSessionService_Get(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSessionInput{PlayedDate: "2024-04-02", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(100), Cashout: i64(250)})
	require.NoError(t, err)

	rec, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, rec.ID)
	assert.Equal(t, int64(150), rec.ProfitTotal)

	_, err = svc.Get(ctx, 999)
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, 404, appErr.Status)

	_, err = svc.Get(ctx, -1)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Status)
}

func TestSessionService_StoreFailureIsUnavailable(t *testing.T) {
	svc, store := newTestService()
	store.err = errors.New("connection refused")
	ctx := context.Background()

	check := func(err error) {
		t.Helper()
		var appErr *domain.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "UPSTREAM_UNAVAILABLE", appErr.Code)
		assert.Equal(t, 503, appErr.Status)
		assert.ErrorContains(t, err, "connection refused")
	}

	_, err := svc.List(ctx)
	check(err)
	_, err = svc.Report(ctx, analytics.Filter{})
	check(err)
	err = svc.Delete(ctx, 1)
	check(err)
	_, err = svc.Get(ctx, 1)
	check(err)
	_, err = svc.Create(ctx, CreateSessionInput{PlayedDate: "2024-01-01", Venue: "A", SessionType: domain.SessionCash, CashUnitAmount: i64(1)})
	check(err)
}

func TestSessionService_Report(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inputs := []CreateSessionInput{
		{PlayedDate: "2024-05-02", Venue: "B", SessionType: domain.SessionCash, CashUnitAmount: i64(100), Cashout: i64(50)},
		{PlayedDate: "2024-05-01", Venue: "A", SessionType: domain.SessionTournament, StakeAmount: i64(100), Cashout: i64(300)},
		{PlayedDate: "2024-05-03", Venue: "A", SessionType: domain.SessionTournament, StakeAmount: i64(100), Cashout: i64(0)},
	}
	for _, in := range inputs {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	report, err := svc.Report(ctx, analytics.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.Count)
	assert.Equal(t, []float64{200, -50, -100}, report.Series.PerSession)
	assert.Equal(t, []float64{200, 150, 50}, report.Series.Curve)
	assert.InDelta(t, 150.0, report.Summary.MaxDrawdown, 1e-9)
	assert.Equal(t, 2, report.Summary.MaxDrawdownIndex)
	assert.Equal(t, []string{"A", "B"}, report.Dimensions.Venues)

	report, err = svc.Report(ctx, analytics.Filter{Venue: "A", From: "2024-05-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Count)
	assert.Equal(t, []string{"2024-05-03 #1"}, report.Series.Labels)

	_, err = svc.Report(ctx, analytics.Filter{From: "yesterday"})
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Status)
}
