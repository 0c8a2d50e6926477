package domain

import (
	"strconv"
	"strings"
)

// UnknownEventKey groups sessions stored without a stake code.
const UnknownEventKey = "UNKNOWN"

const (
	stakeCash      = "CASH"
	stakeTimedPfx  = "TIMED_"
	stakeTourPfx   = "TOUR_"
	stakeTourSNG   = stakeTourPfx + string(TourSNG)
	stakeTourHU    = stakeTourPfx + string(TourHU)
	stakeTourOther = stakeTourPfx + string(TourOther)
)

// ResolveStakeCode maps a session category and its sub-selection to the
// canonical event key. An absent timed level resolves to TIMED_0 and an
// absent tournament format to TOUR_OTHER.
func ResolveStakeCode(t SessionType, timedLevel *int64, format *TourFormat) string {
	switch t {
	case SessionCash:
		return stakeCash
	case SessionTimedTournament:
		var level int64
		if timedLevel != nil {
			level = *timedLevel
		}
		return stakeTimedPfx + strconv.FormatInt(level, 10)
	default:
		f := TourOther
		if format != nil && *format != "" {
			f = *format
		}
		return stakeTourPfx + string(f)
	}
}

// EventKeyOf returns code, or UnknownEventKey when code is empty.
func EventKeyOf(code string) string {
	if code == "" {
		return UnknownEventKey
	}
	return code
}

// EventLabel renders an event key for humans. Unknown keys display as-is.
func EventLabel(key string) string {
	switch {
	case key == stakeCash:
		return "Cash Game"
	case isTimedKey(key):
		return "Timed Tournament " + strings.TrimPrefix(key, stakeTimedPfx)
	case key == stakeTourSNG:
		return "Tournament SNG"
	case key == stakeTourHU:
		return "Tournament HU"
	case key == stakeTourOther:
		return "Tournament Other"
	}
	return key
}

// isTimedKey reports whether key is TIMED_ followed by an integer level.
func isTimedKey(key string) bool {
	level, ok := strings.CutPrefix(key, stakeTimedPfx)
	if !ok {
		return false
	}
	_, err := strconv.ParseInt(level, 10, 64)
	return err == nil
}
