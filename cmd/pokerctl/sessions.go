package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pokerledger/tracker/internal/accounting"
	"github.com/pokerledger/tracker/internal/analytics"
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/service"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions in play order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			records, err := e.svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				pterm.Info.Println("No sessions yet. Use 'pokerctl add' to record one.")
				return nil
			}
			return pterm.DefaultTable.WithHasHeader().WithData(sessionRows(records)).Render()
		},
	}
}

// sessionRows lays out records as a table with a header row.
func sessionRows(records []accounting.Record) pterm.TableData {
	rows := pterm.TableData{{"ID", "Date", "#", "Venue", "Event", "Net cost", "Cashout", "Self P/L", "Partner"}}
	for _, r := range records {
		partner := ""
		if r.PartnerShareBP > 0 {
			partner = analytics.FormatPercent(analytics.Ratio(r.PartnerShare.InexactFloat64()))
			if r.PartnerName != nil {
				partner += " " + *r.PartnerName
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.PlayedDate,
			strconv.Itoa(r.SessionNo),
			r.Venue,
			domain.EventLabel(r.EventKey()),
			analytics.FormatMoney(float64(r.CostNet)),
			analytics.FormatMoney(float64(r.Cashout)),
			analytics.FormatSignedMoney(r.SelfProfit.InexactFloat64()),
			partner,
		})
	}
	return rows
}

func newAddCmd() *cobra.Command {
	var (
		input      service.CreateSessionInput
		sessionTyp string
		tourFormat string
		stakeCode  string
		partner    string
		mental     string
		note       string
	)
	amounts := []struct {
		name  string
		usage string
		dst   **int64
		val   *int64
	}{
		{name: "stake", usage: "buy-in per entry (tournaments)", dst: &input.StakeAmount},
		{name: "entries", usage: "number of entries including re-entries", dst: &input.Entries},
		{name: "cash-unit", usage: "buy-in per unit (cash games)", dst: &input.CashUnitAmount},
		{name: "cash-units", usage: "number of buy-in units (cash games)", dst: &input.CashUnits},
		{name: "level", usage: "timed tournament level", dst: &input.TimedLevel},
		{name: "fees", usage: "side fees", dst: &input.Fees},
		{name: "coupons", usage: "number of coupons used", dst: &input.CouponCount},
		{name: "coupon-value", usage: "value of one coupon", dst: &input.CouponValue},
		{name: "cashout", usage: "total returned", dst: &input.Cashout},
		{name: "partner-bp", usage: "partner share in basis points (0-10000)", dst: &input.PartnerShareBP},
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a session",
		Example: `  pokerctl add --venue "Club A" --type CASH --cash-unit 5000 --cashout 8200
  pokerctl add --venue Online --type TIMED_TOURNAMENT --level 2400 --entries 2
  pokerctl add --date 2024-03-01 --venue "Club B" --type TOURNAMENT --format SNG --stake 3000 --partner-bp 5000 --partner Kim`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input.SessionType = domain.SessionType(sessionTyp)
			for _, a := range amounts {
				if cmd.Flags().Changed(a.name) {
					v := *a.val
					*a.dst = &v
				}
			}
			if cmd.Flags().Changed("format") {
				f := domain.TourFormat(tourFormat)
				input.TourFormat = &f
			}
			if cmd.Flags().Changed("stake-code") {
				input.StakeCode = &stakeCode
			}
			if cmd.Flags().Changed("partner") {
				input.PartnerName = &partner
			}
			if cmd.Flags().Changed("mental") {
				input.MentalState = &mental
			}
			if cmd.Flags().Changed("note") {
				input.Note = &note
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			rec, err := e.svc.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("recorded session %d: %s #%d %s, self %s",
				rec.ID, rec.PlayedDate, rec.SessionNo, domain.EventLabel(rec.EventKey()),
				analytics.FormatSignedMoney(rec.SelfProfit.InexactFloat64()))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&input.PlayedDate, "date", time.Now().Format(domain.DateLayout), "played date (YYYY-MM-DD)")
	f.StringVar(&input.Venue, "venue", "", "venue name")
	f.StringVarP(&sessionTyp, "type", "t", string(domain.SessionCash), "TIMED_TOURNAMENT, TOURNAMENT or CASH")
	f.StringVar(&tourFormat, "format", "", "tournament format: SNG, HU or OTHER")
	f.StringVar(&stakeCode, "stake-code", "", "explicit event key, bypassing resolution")
	f.StringVar(&partner, "partner", "", "partner name")
	f.StringVar(&mental, "mental", "", "mental state tag")
	f.StringVar(&note, "note", "", "free text note")
	for i := range amounts {
		amounts[i].val = f.Int64(amounts[i].name, 0, amounts[i].usage)
	}
	cmd.MarkFlagRequired("venue")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a session by id",
		Long:    "Deletes a session. Deleting an id that does not exist succeeds and changes nothing.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer: %q", args[0])
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			pterm.Success.Printfln("session %d deleted", id)
			return nil
		},
	}
}
