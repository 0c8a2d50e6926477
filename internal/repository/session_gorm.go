package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pokerledger/tracker/internal/domain"
	"gorm.io/gorm"
)

// sessionRow is the gorm model of poker_sessions for the embedded store.
type sessionRow struct {
	ID             int64   `gorm:"primaryKey;autoIncrement"`
	PlayedDate     string  `gorm:"type:text;not null;uniqueIndex:idx_poker_sessions_date_no,priority:1"`
	SessionNo      int     `gorm:"not null;uniqueIndex:idx_poker_sessions_date_no,priority:2"`
	Venue          string  `gorm:"not null"`
	SessionType    string  `gorm:"not null"`
	StakeCode      *string
	StakeAmount    *int64
	CashUnitAmount *int64
	CashUnits      *int64
	Entries        int64 `gorm:"not null"`
	TimedLevel     *int64
	TourFormat     *string
	Fees           int64 `gorm:"not null"`
	CouponCount    int64 `gorm:"not null"`
	CouponValue    int64 `gorm:"not null"`
	Cashout        int64 `gorm:"not null"`
	PartnerShareBP int64 `gorm:"column:partner_share_bp;not null"`
	PartnerName    *string
	MentalState    *string
	Note           *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (sessionRow) TableName() string { return "poker_sessions" }

type gormSessionStore struct {
	db *gorm.DB
	// mu serializes numbering: SQLite has a single writer, and holding the
	// lock across read-max-then-insert keeps session_no free of lost updates.
	mu sync.Mutex
}

// NewGormSessionStore returns a SessionStore on top of gorm (used with the
// embedded SQLite driver) and migrates its schema.
func NewGormSessionStore(db *gorm.DB) (SessionStore, error) {
	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("migrate poker_sessions: %w", err)
	}
	return &gormSessionStore{db: db}, nil
}

func (s *gormSessionStore) List(ctx context.Context) ([]domain.Session, error) {
	var rows []sessionRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	out := make([]domain.Session, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (s *gormSessionStore) Get(ctx context.Context, id int64) (*domain.Session, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	sess := row.toDomain()
	return &sess, nil
}

func (s *gormSessionStore) Create(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&sessionRow{}).
			Select("COALESCE(MAX(session_no), 0) + 1").
			Where("played_date = ?", sess.PlayedDate).
			Row().Scan(&next)
		if err != nil {
			return fmt.Errorf("next session_no: %w", err)
		}

		row := newSessionRow(sess)
		row.SessionNo = next
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		*sess = row.toDomain()
		return nil
	})
}

func (s *gormSessionStore) Delete(ctx context.Context, id int64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&sessionRow{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete session: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormSessionStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func newSessionRow(s *domain.Session) sessionRow {
	var tourFormat *string
	if s.TourFormat != nil {
		f := string(*s.TourFormat)
		tourFormat = &f
	}
	return sessionRow{
		PlayedDate:     s.PlayedDate,
		Venue:          s.Venue,
		SessionType:    string(s.Type),
		StakeCode:      nullIfEmpty(s.StakeCode),
		StakeAmount:    s.StakeAmount,
		CashUnitAmount: s.CashUnitAmount,
		CashUnits:      s.CashUnits,
		Entries:        s.Entries,
		TimedLevel:     s.TimedLevel,
		TourFormat:     tourFormat,
		Fees:           s.Fees,
		CouponCount:    s.CouponCount,
		CouponValue:    s.CouponValue,
		Cashout:        s.Cashout,
		PartnerShareBP: s.PartnerShareBP,
		PartnerName:    s.PartnerName,
		MentalState:    s.MentalState,
		Note:           s.Note,
	}
}

func (r sessionRow) toDomain() domain.Session {
	s := domain.Session{
		ID:             r.ID,
		PlayedDate:     r.PlayedDate,
		SessionNo:      r.SessionNo,
		Venue:          r.Venue,
		Type:           domain.SessionType(r.SessionType),
		StakeAmount:    r.StakeAmount,
		CashUnitAmount: r.CashUnitAmount,
		CashUnits:      r.CashUnits,
		Entries:        r.Entries,
		TimedLevel:     r.TimedLevel,
		Fees:           r.Fees,
		CouponCount:    r.CouponCount,
		CouponValue:    r.CouponValue,
		Cashout:        r.Cashout,
		PartnerShareBP: r.PartnerShareBP,
		PartnerName:    r.PartnerName,
		MentalState:    r.MentalState,
		Note:           r.Note,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.StakeCode != nil {
		s.StakeCode = *r.StakeCode
	}
	if r.TourFormat != nil {
		f := domain.TourFormat(*r.TourFormat)
		s.TourFormat = &f
	}
	return s
}
