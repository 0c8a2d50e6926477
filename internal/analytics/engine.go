package analytics

import (
	"math"
	"sort"

	"github.com/pokerledger/tracker/internal/domain"
)

// roiSentinel stands in for an undefined ROI when ranking by ROI, so those
// groups sink below every realistic ROI.
const roiSentinel = -999

// Summary holds the KPIs of a filtered, ordered set.
type Summary struct {
	Count            int     `json:"count"`
	TotalSelfProfit  float64 `json:"total_self_profit"`
	TotalSelfCost    float64 `json:"total_self_cost"`
	ROI              Ratio   `json:"roi"`
	GrossWin         float64 `json:"gross_win"`
	GrossLoss        float64 `json:"gross_loss"`
	ProfitFactor     Ratio   `json:"profit_factor"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	MaxDrawdownIndex int     `json:"max_drawdown_index"`
	LastValue        float64 `json:"last_value"`
}

// Series holds the per-position time series. Index i of every slice refers
// to the i-th session of the filtered canonical order.
type Series struct {
	Labels     []string  `json:"labels"`
	PerSession []float64 `json:"per_session"`
	Curve      []float64 `json:"curve"`
	Drawdown   []float64 `json:"drawdown"`
}

// EventStat is the rollup of one event key.
type EventStat struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	N          int     `json:"n"`
	SelfProfit float64 `json:"self_profit"`
	SelfCost   float64 `json:"self_cost"`
	ROI        Ratio   `json:"roi"`
	AvgProfit  float64 `json:"avg_profit"`
}

// Rankings are two independently sorted views of the same event groups.
type Rankings struct {
	ByROI    []EventStat `json:"roi_rank"`
	ByProfit []EventStat `json:"profit_rank"`
}

// Dimensions lists the filter options present in a snapshot.
type Dimensions struct {
	Venues    []string `json:"venues"`
	EventKeys []string `json:"event_keys"`
}

// Report is everything the presentation layer consumes for one query.
type Report struct {
	Filter     Filter     `json:"filter"`
	Summary    Summary    `json:"summary"`
	Series     Series     `json:"series"`
	Events     Rankings   `json:"events"`
	Dimensions Dimensions `json:"dimensions"`
}

// Compute runs the full pipeline over a snapshot: canonical ordering,
// filtering, the sequential scan and the event rollup.
func Compute(entries []Entry, f Filter) Report {
	selected := Select(entries, f)
	summary, series := Scan(selected)
	return Report{
		Filter:     f,
		Summary:    summary,
		Series:     series,
		Events:     RankEvents(selected),
		Dimensions: Dims(entries),
	}
}

// Scan walks an already ordered and filtered sequence once, keeping a
// single running state of cumulative profit, peak and max drawdown.
// A drawdown equal to the current maximum moves the recorded index to the
// later position.
func Scan(ordered []Entry) (Summary, Series) {
	n := len(ordered)
	series := Series{
		Labels:     make([]string, 0, n),
		PerSession: make([]float64, 0, n),
		Curve:      make([]float64, 0, n),
		Drawdown:   make([]float64, 0, n),
	}
	s := Summary{Count: n, MaxDrawdownIndex: -1}

	var cum, peak float64
	for i, e := range ordered {
		p := e.SelfProfit
		series.PerSession = append(series.PerSession, p)
		series.Labels = append(series.Labels, e.Label())

		if p > 0 {
			s.GrossWin += p
		}
		if p < 0 {
			s.GrossLoss += math.Abs(p)
		}

		cum += p
		series.Curve = append(series.Curve, cum)

		peak = math.Max(peak, cum)
		dd := peak - cum
		series.Drawdown = append(series.Drawdown, dd)

		if dd >= s.MaxDrawdown {
			s.MaxDrawdown = dd
			s.MaxDrawdownIndex = i
		}

		s.TotalSelfCost += e.SelfCost
	}

	s.TotalSelfProfit = cum
	s.LastValue = cum
	s.ROI = divide(s.TotalSelfProfit, s.TotalSelfCost)
	s.ProfitFactor = profitFactor(s.GrossWin, s.GrossLoss)
	return s, series
}

func profitFactor(win, loss float64) Ratio {
	switch {
	case loss > 0:
		return Ratio(win / loss)
	case win > 0:
		return Ratio(math.Inf(1))
	}
	return Undefined()
}

// RankEvents groups an ordered sequence by event key. Groups keep the order
// of their first appearance before the (stable) ranking sorts run.
func RankEvents(ordered []Entry) Rankings {
	index := make(map[string]int)
	var groups []EventStat
	for _, e := range ordered {
		key := e.EventKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, EventStat{Key: key, Label: domain.EventLabel(key)})
		}
		g := &groups[i]
		g.N++
		g.SelfProfit += e.SelfProfit
		g.SelfCost += e.SelfCost
	}

	for i := range groups {
		g := &groups[i]
		g.ROI = divide(g.SelfProfit, g.SelfCost)
		g.AvgProfit = g.SelfProfit / float64(g.N)
	}

	byROI := make([]EventStat, len(groups))
	copy(byROI, groups)
	sort.SliceStable(byROI, func(i, j int) bool {
		return rankROI(byROI[i].ROI) > rankROI(byROI[j].ROI)
	})

	byProfit := make([]EventStat, len(groups))
	copy(byProfit, groups)
	sort.SliceStable(byProfit, func(i, j int) bool {
		return byProfit[i].SelfProfit > byProfit[j].SelfProfit
	})

	return Rankings{ByROI: byROI, ByProfit: byProfit}
}

func rankROI(r Ratio) float64 {
	if !r.Finite() {
		return roiSentinel
	}
	return float64(r)
}

// Dims collects the sorted distinct venues and event keys of a snapshot.
func Dims(entries []Entry) Dimensions {
	venues := make(map[string]struct{})
	keys := make(map[string]struct{})
	for _, e := range entries {
		if e.Venue != "" {
			venues[e.Venue] = struct{}{}
		}
		keys[e.EventKey()] = struct{}{}
	}
	return Dimensions{Venues: sortedKeys(venues), EventKeys: sortedKeys(keys)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
