package domain

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar-date format used for played_date everywhere.
const DateLayout = "2006-01-02"

// MaxPartnerShareBP is 100% in basis points.
const MaxPartnerShareBP = 10000

// MaxAmount is the largest value a NUMERIC(15,0) amount column holds. Buy-in
// and coupon totals are held to the same bound.
const MaxAmount int64 = 999_999_999_999_999

// MaxEntries is the largest entry count the INTEGER entries column holds.
const MaxEntries int64 = math.MaxInt32

// ValidateDate checks that s is a calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if s == "" {
		return fmt.Errorf("played_date is required")
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}

// ValidatePartnerShare checks that bp lies in [0, 10000].
func ValidatePartnerShare(bp int64) error {
	if bp < 0 || bp > MaxPartnerShareBP {
		return fmt.Errorf("partner_share_bp must be between 0 and %d, got %d", MaxPartnerShareBP, bp)
	}
	return nil
}

// ValidateTimedLevel checks that level is on the timed tournament ladder.
func ValidateTimedLevel(level int64) error {
	if !IsTimedLevel(level) {
		return fmt.Errorf("timed_level %d is not one of %v", level, TimedLevels)
	}
	return nil
}

// ValidateAmount checks that v fits an amount column.
func ValidateAmount(field string, v int64) error {
	if v < 0 || v > MaxAmount {
		return fmt.Errorf("%s must be between 0 and %d, got %d", field, MaxAmount, v)
	}
	return nil
}

// ValidateEntries checks that n fits the entries column.
func ValidateEntries(n int64) error {
	if n < 1 || n > MaxEntries {
		return fmt.Errorf("entries must be between 1 and %d, got %d", MaxEntries, n)
	}
	return nil
}

// ValidateProduct checks that a x b stays within MaxAmount. a and b must
// already be valid amounts.
func ValidateProduct(field string, a, b int64) error {
	if a != 0 && b > MaxAmount/a {
		return fmt.Errorf("%s (%d x %d) exceeds %d", field, a, b, MaxAmount)
	}
	return nil
}
