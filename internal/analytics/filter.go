package analytics

import "sort"

// AllValues disables a predicate, as does the empty string.
const AllValues = "ALL"

// Filter is an AND of optional predicates. Dates are inclusive YYYY-MM-DD
// bounds; the other fields are exact matches.
type Filter struct {
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	SessionType string `json:"session_type,omitempty"`
	Venue       string `json:"venue,omitempty"`
	MentalState string `json:"mental_state,omitempty"`
	EventKey    string `json:"event_key,omitempty"`
}

// Match reports whether e satisfies every active predicate of f.
func (f Filter) Match(e Entry) bool {
	if active(f.From) && e.PlayedDate < f.From {
		return false
	}
	if active(f.To) && e.PlayedDate > f.To {
		return false
	}
	if active(f.SessionType) && e.SessionType != f.SessionType {
		return false
	}
	if active(f.Venue) && e.Venue != f.Venue {
		return false
	}
	if active(f.MentalState) && e.MentalState != f.MentalState {
		return false
	}
	if active(f.EventKey) && e.EventKey() != f.EventKey {
		return false
	}
	return true
}

func active(v string) bool {
	return v != "" && v != AllValues
}

// Less is the canonical order: played_date, then session_no.
func Less(a, b Entry) bool {
	if a.PlayedDate != b.PlayedDate {
		return a.PlayedDate < b.PlayedDate
	}
	return a.SessionNo < b.SessionNo
}

// Sort orders entries canonically in place. The sort is stable.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}

// Select returns a canonically ordered copy of entries restricted to f.
// Sorting happens before filtering; the input is left untouched.
func Select(entries []Entry, f Filter) []Entry {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	Sort(ordered)

	out := ordered[:0]
	for _, e := range ordered {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
