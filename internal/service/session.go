// Package service holds the use cases behind the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/pokerledger/tracker/internal/accounting"
	"github.com/pokerledger/tracker/internal/analytics"
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/repository"
)

// SessionService records, lists, deletes and analyzes sessions.
type SessionService struct {
	store  repository.SessionStore
	logger *slog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(store repository.SessionStore, logger *slog.Logger) *SessionService {
	return &SessionService{store: store, logger: logger}
}

// CreateSessionInput holds the raw fields of a new session. Which amount
// fields apply depends on SessionType.
type CreateSessionInput struct {
	PlayedDate  string             `json:"played_date"`
	Venue       string             `json:"venue"`
	SessionType domain.SessionType `json:"session_type"`
	StakeCode   *string            `json:"stake_code"`

	StakeAmount    *int64             `json:"stake_amount"`
	Entries        *int64             `json:"entries"`
	CashUnitAmount *int64             `json:"cash_unit_amount"`
	CashUnits      *int64             `json:"cash_units"`
	TimedLevel     *int64             `json:"timed_level"`
	TourFormat     *domain.TourFormat `json:"tour_format"`

	Fees        *int64 `json:"fees"`
	CouponCount *int64 `json:"coupon_count"`
	CouponValue *int64 `json:"coupon_value"`
	Cashout     *int64 `json:"cashout"`

	PartnerShareBP *int64  `json:"partner_share_bp"`
	PartnerName    *string `json:"partner_name"`
	MentalState    *string `json:"mental_state"`
	Note           *string `json:"note"`
}

// List returns every session with its derived figures in canonical order
// (played_date, then session_no).
func (s *SessionService) List(ctx context.Context) ([]accounting.Record, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, domain.ErrUnavailable("session store unavailable", err)
	}

	records := accounting.NewRecords(sessions)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PlayedDate != records[j].PlayedDate {
			return records[i].PlayedDate < records[j].PlayedDate
		}
		return records[i].SessionNo < records[j].SessionNo
	})
	return records, nil
}

// Get returns one session with its derived figures.
func (s *SessionService) Get(ctx context.Context, id int64) (*accounting.Record, error) {
	if id <= 0 {
		return nil, domain.ErrValidation("id must be a positive integer")
	}

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, domain.ErrUnavailable("session store unavailable", err)
	}
	if sess == nil {
		return nil, domain.ErrNotFound("session", strconv.FormatInt(id, 10))
	}

	rec := accounting.NewRecord(*sess)
	return &rec, nil
}

// Create validates input, stores the session and returns it with its
// derived figures. Nothing is written when validation fails.
func (s *SessionService) Create(ctx context.Context, input CreateSessionInput) (*accounting.Record, error) {
	sess, err := BuildSession(input)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, domain.ErrUnavailable("session store unavailable", err)
	}

	s.logger.Info("session created",
		"id", sess.ID,
		"played_date", sess.PlayedDate,
		"session_no", sess.SessionNo,
		"stake_code", sess.StakeCode,
	)

	rec := accounting.NewRecord(*sess)
	return &rec, nil
}

// Delete removes a session by id. Deleting an id that does not exist
// succeeds without changing anything.
func (s *SessionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrValidation("id must be a positive integer")
	}

	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return domain.ErrUnavailable("session store unavailable", err)
	}

	if removed {
		s.logger.Info("session deleted", "id", id)
	} else {
		s.logger.Debug("delete of unknown session ignored", "id", id)
	}
	return nil
}

// Report computes the analytics for the sessions matching f over a fresh
// snapshot of the store.
func (s *SessionService) Report(ctx context.Context, f analytics.Filter) (*analytics.Report, error) {
	if err := ValidateFilter(f); err != nil {
		return nil, err
	}

	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, domain.ErrUnavailable("session store unavailable", err)
	}

	entries := analytics.NewEntries(accounting.NewRecords(sessions))
	report := analytics.Compute(entries, f)
	return &report, nil
}

// ValidateFilter checks the date bounds of f.
func ValidateFilter(f analytics.Filter) error {
	for _, d := range []string{f.From, f.To} {
		if d == "" || d == analytics.AllValues {
			continue
		}
		if err := domain.ValidateDate(d); err != nil {
			return domain.ErrValidation(err.Error())
		}
	}
	return nil
}

// BuildSession turns raw input into a session ready to store. Category
// fields that do not apply are dropped, negative quantities are clamped to
// zero and the stake code is resolved when none was supplied.
func BuildSession(in CreateSessionInput) (*domain.Session, error) {
	if err := domain.ValidateDate(in.PlayedDate); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	venue := strings.TrimSpace(in.Venue)
	if venue == "" {
		return nil, domain.ErrValidation("venue is required")
	}
	if !in.SessionType.Valid() {
		return nil, domain.ErrValidation(fmt.Sprintf("session_type must be one of %s, %s, %s, got %q",
			domain.SessionTimedTournament, domain.SessionTournament, domain.SessionCash, in.SessionType))
	}

	bp := value(in.PartnerShareBP, 0)
	if err := domain.ValidatePartnerShare(bp); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	sess := &domain.Session{
		PlayedDate:     in.PlayedDate,
		Venue:          venue,
		Type:           in.SessionType,
		Fees:           nonNegative(value(in.Fees, 0)),
		CouponCount:    nonNegative(value(in.CouponCount, 0)),
		CouponValue:    nonNegative(value(in.CouponValue, 0)),
		Cashout:        nonNegative(value(in.Cashout, 0)),
		PartnerShareBP: bp,
		PartnerName:    trimmed(in.PartnerName),
		MentalState:    trimmed(in.MentalState),
		Note:           trimmed(in.Note),
	}

	switch in.SessionType {
	case domain.SessionCash:
		if in.CashUnitAmount == nil {
			return nil, domain.ErrValidation("cash_unit_amount is required for CASH sessions")
		}
		sess.CashUnitAmount = ptr(nonNegative(*in.CashUnitAmount))
		sess.CashUnits = ptr(atLeastOne(value(in.CashUnits, 1)))
		sess.Entries = 1

	case domain.SessionTimedTournament:
		if in.TimedLevel == nil && in.StakeAmount == nil {
			return nil, domain.ErrValidation("timed_level or stake_amount is required for TIMED_TOURNAMENT sessions")
		}
		if in.TimedLevel != nil {
			if err := domain.ValidateTimedLevel(*in.TimedLevel); err != nil {
				return nil, domain.ErrValidation(err.Error())
			}
			sess.TimedLevel = ptr(*in.TimedLevel)
		}
		stake := in.StakeAmount
		if stake == nil {
			stake = in.TimedLevel
		}
		sess.StakeAmount = ptr(nonNegative(*stake))
		sess.Entries = atLeastOne(value(in.Entries, 1))

	case domain.SessionTournament:
		if in.StakeAmount == nil {
			return nil, domain.ErrValidation("stake_amount is required for TOURNAMENT sessions")
		}
		if in.TourFormat != nil {
			if !in.TourFormat.Valid() {
				return nil, domain.ErrValidation(fmt.Sprintf("tour_format must be one of %s, %s, %s, got %q",
					domain.TourSNG, domain.TourHU, domain.TourOther, *in.TourFormat))
			}
			f := *in.TourFormat
			sess.TourFormat = &f
		}
		sess.StakeAmount = ptr(nonNegative(*in.StakeAmount))
		sess.Entries = atLeastOne(value(in.Entries, 1))
	}

	if err := checkBounds(sess); err != nil {
		return nil, err
	}

	if in.StakeCode != nil && strings.TrimSpace(*in.StakeCode) != "" {
		sess.StakeCode = strings.TrimSpace(*in.StakeCode)
	} else {
		sess.StakeCode = domain.ResolveStakeCode(sess.Type, sess.TimedLevel, sess.TourFormat)
	}

	return sess, nil
}

// checkBounds rejects amounts the store cannot hold and buy-in or coupon
// totals that would overflow the cost arithmetic.
func checkBounds(s *domain.Session) error {
	amounts := []struct {
		field string
		v     int64
	}{
		{"fees", s.Fees},
		{"coupon_count", s.CouponCount},
		{"coupon_value", s.CouponValue},
		{"cashout", s.Cashout},
		{"stake_amount", value(s.StakeAmount, 0)},
		{"cash_unit_amount", value(s.CashUnitAmount, 0)},
		{"cash_units", value(s.CashUnits, 1)},
	}
	for _, a := range amounts {
		if err := domain.ValidateAmount(a.field, a.v); err != nil {
			return domain.ErrValidation(err.Error())
		}
	}
	if err := domain.ValidateEntries(s.Entries); err != nil {
		return domain.ErrValidation(err.Error())
	}

	var err error
	if s.Type == domain.SessionCash {
		err = domain.ValidateProduct("cash buy-in", value(s.CashUnitAmount, 0), value(s.CashUnits, 1))
	} else {
		err = domain.ValidateProduct("stake buy-in", value(s.StakeAmount, 0), s.Entries)
	}
	if err == nil {
		err = domain.ValidateProduct("coupon total", s.CouponCount, s.CouponValue)
	}
	if err != nil {
		return domain.ErrValidation(err.Error())
	}
	return nil
}

func value(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func atLeastOne(v int64) int64 {
	if v < 1 {
		return 1
	}
	return v
}

func ptr(v int64) *int64 { return &v }

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
