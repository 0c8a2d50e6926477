// Package analytics derives curves, drawdown, profit factor, ROI and event
// rankings from a snapshot of normalized sessions. Every call recomputes
// from scratch; nothing is cached between calls.
package analytics

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pokerledger/tracker/internal/accounting"
	"github.com/pokerledger/tracker/internal/domain"
)

// Entry is the per-session input of the engine.
type Entry struct {
	ID          int64   `json:"id"`
	PlayedDate  string  `json:"played_date"`
	SessionNo   int     `json:"session_no"`
	SessionType string  `json:"session_type"`
	Venue       string  `json:"venue"`
	MentalState string  `json:"mental_state"`
	StakeCode   string  `json:"stake_code"`
	SelfProfit  float64 `json:"self_profit"`
	SelfCost    float64 `json:"self_cost"`
}

// EventKey is the grouping key of e.
func (e Entry) EventKey() string {
	return domain.EventKeyOf(e.StakeCode)
}

// Label identifies e on the time axis.
func (e Entry) Label() string {
	return e.PlayedDate + " #" + strconv.Itoa(e.SessionNo)
}

// NewEntry builds an engine input from a derived record.
func NewEntry(r accounting.Record) Entry {
	var mental string
	if r.MentalState != nil {
		mental = *r.MentalState
	}
	return Entry{
		ID:          r.ID,
		PlayedDate:  r.PlayedDate,
		SessionNo:   r.SessionNo,
		SessionType: string(r.Type),
		Venue:       r.Venue,
		MentalState: mental,
		StakeCode:   r.StakeCode,
		SelfProfit:  Finite(r.SelfProfit.InexactFloat64()),
		SelfCost:    Finite(r.SelfCost.InexactFloat64()),
	}
}

// NewEntries converts records in order.
func NewEntries(records []accounting.Record) []Entry {
	out := make([]Entry, len(records))
	for i := range records {
		out[i] = NewEntry(records[i])
	}
	return out
}

// UnmarshalJSON accepts the session listing format, where amounts may be
// JSON numbers, numeric strings (with thousands separators) or null.
// Anything that does not parse to a finite number reads as zero so one bad
// field never drops a session from the curve.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID          int64           `json:"id"`
		PlayedDate  string          `json:"played_date"`
		SessionNo   int             `json:"session_no"`
		SessionType string          `json:"session_type"`
		Venue       string          `json:"venue"`
		MentalState *string         `json:"mental_state"`
		StakeCode   *string         `json:"stake_code"`
		SelfProfit  json.RawMessage `json:"self_profit"`
		SelfCost    json.RawMessage `json:"self_cost"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Entry{
		ID:          aux.ID,
		PlayedDate:  aux.PlayedDate,
		SessionNo:   aux.SessionNo,
		SessionType: aux.SessionType,
		Venue:       aux.Venue,
		SelfProfit:  ParseAmount(aux.SelfProfit),
		SelfCost:    ParseAmount(aux.SelfCost),
	}
	if aux.MentalState != nil {
		e.MentalState = *aux.MentalState
	}
	if aux.StakeCode != nil {
		e.StakeCode = *aux.StakeCode
	}
	return nil
}

// ParseAmount reads a raw JSON amount leniently. See Entry.UnmarshalJSON.
func ParseAmount(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		s = strings.NewReplacer(",", "", " ", "").Replace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Finite(v)
}

// Finite returns v, or zero when v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
