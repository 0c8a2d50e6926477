package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pokerledger/tracker/internal/analytics"
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/service"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		f      analytics.Filter
		remote string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print KPIs and event rankings",
		Long: `Computes the report over every session matching the filters. With
--remote the sessions are fetched from a running API server's public
listing instead of the local store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := service.ValidateFilter(f); err != nil {
				return err
			}

			var report analytics.Report
			if remote != "" {
				entries, err := fetchEntries(cmd.Context(), remote)
				if err != nil {
					return err
				}
				report = analytics.Compute(entries, f)
			} else {
				e, err := openEnv(cmd.Context())
				if err != nil {
					return err
				}
				defer e.close()

				r, err := e.svc.Report(cmd.Context(), f)
				if err != nil {
					return err
				}
				report = *r
			}

			return renderReport(report, top)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.From, "from", "", "first played date, inclusive (YYYY-MM-DD)")
	fl.StringVar(&f.To, "to", "", "last played date, inclusive (YYYY-MM-DD)")
	fl.StringVar(&f.SessionType, "type", "", "session type")
	fl.StringVar(&f.Venue, "venue", "", "venue")
	fl.StringVar(&f.MentalState, "mental", "", "mental state tag")
	fl.StringVar(&f.EventKey, "event", "", "event key, e.g. TIMED_2400 or UNKNOWN")
	fl.StringVar(&remote, "remote", "", "base URL of an API server to read sessions from")
	fl.IntVar(&top, "top", 10, "rows per ranking")
	return cmd
}

// fetchEntries reads GET /sessions from an API server. Amount fields are
// decoded leniently, so a malformed value counts as zero.
func fetchEntries(ctx context.Context, baseURL string) ([]analytics.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, domain.ErrUnavailable("session listing unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrUnavailable("session listing unavailable",
			fmt.Errorf("GET %s: status %d", url, resp.StatusCode))
	}

	var entries []analytics.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, domain.ErrUnavailable("session listing unreadable", err)
	}
	return entries, nil
}

func renderReport(report analytics.Report, top int) error {
	pterm.DefaultSection.Println("Summary")
	if err := pterm.DefaultTable.WithData(summaryRows(report.Summary)).Render(); err != nil {
		return err
	}
	if report.Summary.Count == 0 {
		pterm.Info.Println("No sessions match the filters.")
		return nil
	}

	pterm.DefaultSection.Println("Events by ROI")
	if err := pterm.DefaultTable.WithHasHeader().WithData(rankingRows(report.Events.ByROI, top)).Render(); err != nil {
		return err
	}

	pterm.DefaultSection.Println("Events by profit")
	return pterm.DefaultTable.WithHasHeader().WithData(rankingRows(report.Events.ByProfit, top)).Render()
}

// summaryRows lays out the KPIs as label/value pairs.
func summaryRows(s analytics.Summary) pterm.TableData {
	maxDDAt := "—"
	if s.MaxDrawdownIndex >= 0 {
		maxDDAt = strconv.Itoa(s.MaxDrawdownIndex + 1)
	}
	return pterm.TableData{
		{"Sessions", strconv.Itoa(s.Count)},
		{"Self profit", analytics.FormatSignedMoney(s.TotalSelfProfit)},
		{"Self cost", analytics.FormatMoney(s.TotalSelfCost)},
		{"ROI", analytics.FormatPercent(s.ROI)},
		{"Gross win", analytics.FormatMoney(s.GrossWin)},
		{"Gross loss", analytics.FormatMoney(s.GrossLoss)},
		{"Profit factor", analytics.FormatProfitFactor(s.ProfitFactor)},
		{"Max drawdown", analytics.FormatMoney(s.MaxDrawdown)},
		{"Max drawdown at session", maxDDAt},
	}
}

// rankingRows lays out at most top groups with a header row.
func rankingRows(stats []analytics.EventStat, top int) pterm.TableData {
	rows := pterm.TableData{{"Event", "N", "Self P/L", "Self cost", "ROI", "Avg"}}
	for i, st := range stats {
		if top > 0 && i >= top {
			break
		}
		rows = append(rows, []string{
			st.Label,
			strconv.Itoa(st.N),
			analytics.FormatSignedMoney(st.SelfProfit),
			analytics.FormatMoney(st.SelfCost),
			analytics.FormatPercent(st.ROI),
			analytics.FormatSignedMoney(st.AvgProfit),
		})
	}
	return rows
}
