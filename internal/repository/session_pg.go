package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/infra"
)

const sessionColumns = `
	id, to_char(played_date, 'YYYY-MM-DD'), session_no, venue, session_type, stake_code,
	stake_amount, cash_unit_amount, cash_units, entries, timed_level, tour_format,
	fees, coupon_count, coupon_value, cashout,
	partner_share_bp, partner_name, mental_state, note, created_at, updated_at`

type pgSessionStore struct {
	pool   *pgxpool.Pool
	outbox OutboxRepository
}

// NewPgSessionStore returns a Postgres-backed SessionStore. Every write also
// records a domain event in the outbox within the same transaction.
func NewPgSessionStore(pool *pgxpool.Pool, outbox OutboxRepository) SessionStore {
	return &pgSessionStore{pool: pool, outbox: outbox}
}

func (s *pgSessionStore) List(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sessionColumns+` FROM poker_sessions`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (s *pgSessionStore) Get(ctx context.Context, id int64) (*domain.Session, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM poker_sessions WHERE id = $1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sess, err
}

// Create numbers the session inside a transaction holding an advisory lock
// on its played date, so concurrent creations for one date cannot read the
// same maximum. The unique (played_date, session_no) constraint backs this up.
func (s *pgSessionStore) Create(ctx context.Context, sess *domain.Session) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "poker_sessions:"+sess.PlayedDate); err != nil {
		return fmt.Errorf("lock played date: %w", err)
	}

	var next int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(session_no), 0) + 1
		FROM poker_sessions
		WHERE played_date = $1::date`, sess.PlayedDate).Scan(&next)
	if err != nil {
		return fmt.Errorf("next session_no: %w", err)
	}

	var tourFormat *string
	if sess.TourFormat != nil {
		f := string(*sess.TourFormat)
		tourFormat = &f
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO poker_sessions (
			played_date, session_no, venue, session_type, stake_code,
			stake_amount, cash_unit_amount, cash_units, entries, timed_level, tour_format,
			fees, coupon_count, coupon_value, cashout,
			partner_share_bp, partner_name, mental_state, note
		) VALUES (
			$1::date, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19
		)
		RETURNING id, created_at, updated_at`,
		sess.PlayedDate, next, sess.Venue, string(sess.Type), nullIfEmpty(sess.StakeCode),
		infra.NullableInt64ToNumeric(sess.StakeAmount),
		infra.NullableInt64ToNumeric(sess.CashUnitAmount),
		infra.NullableInt64ToNumeric(sess.CashUnits),
		sess.Entries,
		infra.NullableInt64ToNumeric(sess.TimedLevel),
		tourFormat,
		infra.Int64ToNumeric(sess.Fees),
		infra.Int64ToNumeric(sess.CouponCount),
		infra.Int64ToNumeric(sess.CouponValue),
		infra.Int64ToNumeric(sess.Cashout),
		sess.PartnerShareBP, sess.PartnerName, sess.MentalState, sess.Note,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	sess.SessionNo = next

	if err := s.outbox.Insert(ctx, tx, domain.NewSessionCreatedEvent(sess)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *pgSessionStore) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var playedDate string
	var sessionNo int
	err = tx.QueryRow(ctx, `
		DELETE FROM poker_sessions WHERE id = $1
		RETURNING to_char(played_date, 'YYYY-MM-DD'), session_no`, id).Scan(&playedDate, &sessionNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewSessionDeletedEvent(id, playedDate, sessionNo)); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

func (s *pgSessionStore) Ping(ctx context.Context) error {
	return infra.HealthCheck(ctx, s.pool)
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var sess domain.Session
	var stakeCode, tourFormat *string
	var stakeNum, unitNum, unitsNum, levelNum pgtype.Numeric
	var feesNum, couponCountNum, couponValueNum, cashoutNum pgtype.Numeric

	err := row.Scan(
		&sess.ID, &sess.PlayedDate, &sess.SessionNo, &sess.Venue, &sess.Type, &stakeCode,
		&stakeNum, &unitNum, &unitsNum, &sess.Entries, &levelNum, &tourFormat,
		&feesNum, &couponCountNum, &couponValueNum, &cashoutNum,
		&sess.PartnerShareBP, &sess.PartnerName, &sess.MentalState, &sess.Note,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if stakeCode != nil {
		sess.StakeCode = *stakeCode
	}
	if tourFormat != nil {
		f := domain.TourFormat(*tourFormat)
		sess.TourFormat = &f
	}

	nullable := []struct {
		name string
		src  pgtype.Numeric
		dst  **int64
	}{
		{"stake_amount", stakeNum, &sess.StakeAmount},
		{"cash_unit_amount", unitNum, &sess.CashUnitAmount},
		{"cash_units", unitsNum, &sess.CashUnits},
		{"timed_level", levelNum, &sess.TimedLevel},
	}
	for _, n := range nullable {
		v, err := infra.NullableNumericToInt64(n.src)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", n.name, err)
		}
		*n.dst = v
	}

	required := []struct {
		name string
		src  pgtype.Numeric
		dst  *int64
	}{
		{"fees", feesNum, &sess.Fees},
		{"coupon_count", couponCountNum, &sess.CouponCount},
		{"coupon_value", couponValueNum, &sess.CouponValue},
		{"cashout", cashoutNum, &sess.Cashout},
	}
	for _, n := range required {
		v, err := infra.NumericToInt64(n.src)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", n.name, err)
		}
		*n.dst = v
	}

	return &sess, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
