package domain

import "time"

// SessionType is the closed set of session categories.
type SessionType string

const (
	SessionTimedTournament SessionType = "TIMED_TOURNAMENT"
	SessionTournament      SessionType = "TOURNAMENT"
	SessionCash            SessionType = "CASH"
)

// Valid reports whether t is one of the known categories.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTimedTournament, SessionTournament, SessionCash:
		return true
	}
	return false
}

// TourFormat distinguishes tournament sub-types.
type TourFormat string

const (
	TourSNG   TourFormat = "SNG"
	TourHU    TourFormat = "HU"
	TourOther TourFormat = "OTHER"
)

// Valid reports whether f is one of the known tournament formats.
func (f TourFormat) Valid() bool {
	switch f {
	case TourSNG, TourHU, TourOther:
		return true
	}
	return false
}

// TimedLevels is the buy-in ladder of timed tournaments.
var TimedLevels = []int64{1200, 2400, 3400, 6600, 11000, 21500}

// IsTimedLevel reports whether level is on the timed ladder.
func IsTimedLevel(level int64) bool {
	for _, l := range TimedLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Session is one played event as it is stored: raw, user-entered fields only.
// Derived cost and profit figures are never stored; see package accounting.
type Session struct {
	ID         int64       `json:"id"`
	PlayedDate string      `json:"played_date"`
	SessionNo  int         `json:"session_no"`
	Venue      string      `json:"venue"`
	Type       SessionType `json:"session_type"`
	StakeCode  string      `json:"stake_code"`

	// Category-specific raw fields.
	StakeAmount    *int64      `json:"stake_amount"`
	CashUnitAmount *int64      `json:"cash_unit_amount"`
	CashUnits      *int64      `json:"cash_units"`
	Entries        int64       `json:"entries"`
	TimedLevel     *int64      `json:"timed_level"`
	TourFormat     *TourFormat `json:"tour_format"`

	Fees        int64 `json:"fees"`
	CouponCount int64 `json:"coupon_count"`
	CouponValue int64 `json:"coupon_value"`
	Cashout     int64 `json:"cashout"`

	PartnerShareBP int64   `json:"partner_share_bp"`
	PartnerName    *string `json:"partner_name"`

	MentalState *string   `json:"mental_state"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventKey is the grouping key used by analytics: the stake code, or
// UnknownEventKey when none was recorded.
func (s *Session) EventKey() string {
	return EventKeyOf(s.StakeCode)
}
