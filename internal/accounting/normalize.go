// Package accounting turns the raw fields of a stored session into its
// cost and profit figures. The derivation is the single source of truth for
// those figures: they are never stored and cannot be set directly.
package accounting

import (
	"github.com/pokerledger/tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// Figures holds the derived money fields of one session. Integer fields are
// in the base currency unit; the partner split is an exact decimal because
// basis points need not divide the amounts evenly.
type Figures struct {
	CostRaw       int64           `json:"cost_raw"`
	CostNet       int64           `json:"cost_net"`
	PartnerShare  decimal.Decimal `json:"partner_share"`
	PartnerCost   decimal.Decimal `json:"partner_cost"`
	ProfitTotal   int64           `json:"profit_total"`
	PartnerProfit decimal.Decimal `json:"partner_profit"`
	SelfProfit    decimal.Decimal `json:"self_profit"`
	SelfCost      decimal.Decimal `json:"self_cost"`
}

// Record is a stored session together with its derived figures.
type Record struct {
	domain.Session
	Figures
}

// Derive computes the figures for s.
//
//	cost_raw       = buy-in total (cash: unit amount x units, else stake x entries)
//	cost_net       = max(0, cost_raw - coupons) + fees
//	partner_cost   = cost_net x share
//	self_cost      = cost_net - partner_cost
//	profit_total   = cashout - cost_net
//	partner_profit = profit_total x share
//	self_profit    = profit_total - partner_profit
func Derive(s *domain.Session) Figures {
	gross := GrossCost(s)
	discount := s.CouponCount * s.CouponValue

	net := gross - discount
	if net < 0 {
		net = 0
	}
	net += s.Fees

	share := ShareRatio(s.PartnerShareBP)
	netDec := decimal.NewFromInt(net)
	partnerCost := netDec.Mul(share)

	profit := s.Cashout - net
	profitDec := decimal.NewFromInt(profit)
	partnerProfit := profitDec.Mul(share)

	return Figures{
		CostRaw:       gross,
		CostNet:       net,
		PartnerShare:  share,
		PartnerCost:   partnerCost,
		ProfitTotal:   profit,
		PartnerProfit: partnerProfit,
		SelfProfit:    profitDec.Sub(partnerProfit),
		SelfCost:      netDec.Sub(partnerCost),
	}
}

// NewRecord pairs s with its derived figures.
func NewRecord(s domain.Session) Record {
	return Record{Session: s, Figures: Derive(&s)}
}

// NewRecords derives figures for every session, keeping input order.
func NewRecords(sessions []domain.Session) []Record {
	out := make([]Record, len(sessions))
	for i := range sessions {
		out[i] = NewRecord(sessions[i])
	}
	return out
}

// GrossCost is the pre-discount, pre-fee buy-in exposure of s.
func GrossCost(s *domain.Session) int64 {
	if s.Type == domain.SessionCash {
		return deref(s.CashUnitAmount, 0) * deref(s.CashUnits, 1)
	}
	return deref(s.StakeAmount, 0) * s.Entries
}

// ShareRatio converts basis points to an exact ratio in [0, 1].
func ShareRatio(bp int64) decimal.Decimal {
	return decimal.New(bp, -4)
}

func deref(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}
