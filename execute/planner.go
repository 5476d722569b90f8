package execute

import (
	"math"
	"time"

	"ai-trading-system/signal"
)

// AccountSnapshot is the broker account state used for position sizing.
type AccountSnapshot struct {
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	FreeMargin float64 `json:"freeMargin"`
	Leverage   int     `json:"leverage"`
	Currency   string  `json:"currency"`
}

// RiskSettings are the per-account risk limits applied to each trade.
type RiskSettings struct {
	MaxRiskPerTrade float64 `json:"maxRiskPerTrade"` // percent of balance
	MaxDailyRisk    float64 `json:"maxDailyRisk"`    // percent of balance
	MaxOpenTrades   int     `json:"maxOpenTrades"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`
}

// SizingConfig lifts the fixed numeric constants of the sizing and execution
// simulation into explicit configuration so tests can assert exact arithmetic.
type SizingConfig struct {
	PipValuePerLot   float64 // currency units per pip per standard lot
	LotCap           float64 // hard ceiling on computed lot size
	CommissionPerLot float64 // currency units per lot
	SlippageBound    float64 // max absolute simulated slippage
	// PipFactor converts a price distance into pips. The reference system
	// assumes 4-decimal quoting for every instrument; changing this for
	// 2-decimal pairs (JPY) changes all numeric outputs, so it stays a
	// single explicit knob rather than an automatic per-instrument fix.
	PipFactor float64
}

// DefaultSizing returns the reference constants: $10/pip/lot, 1.0 lot cap,
// $7/lot commission, ±0.00005 slippage, 4-decimal pip convention.
func DefaultSizing() SizingConfig {
	return SizingConfig{
		PipValuePerLot:   10,
		LotCap:           1.0,
		CommissionPerLot: 7,
		SlippageBound:    0.00005,
		PipFactor:        10000,
	}
}

// DefaultAccount returns the demo account snapshot.
func DefaultAccount() AccountSnapshot {
	return AccountSnapshot{
		Balance:    10000,
		Equity:     10000,
		FreeMargin: 8500,
		Leverage:   100,
		Currency:   "USD",
	}
}

// DefaultRiskSettings returns the demo risk limits.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{
		MaxRiskPerTrade: 2,
		MaxDailyRisk:    6,
		MaxOpenTrades:   5,
		RiskRewardRatio: 2.5,
	}
}

// Plan is a concrete sizing decision for an approved signal.
//
// Invariants: LotSize = min(RiskAmount/(StopLossPips×pipValue), LotCap) and
// RiskAmount = Balance × MaxRiskPerTrade/100, both rounded for presentation
// after the comparison, never before.
type Plan struct {
	Signal         *signal.TechnicalSignal `json:"signal"`
	Account        AccountSnapshot         `json:"account"`
	Risk           RiskSettings            `json:"riskSettings"`
	LotSize        float64                 `json:"calculatedLotSize"`
	RiskAmount     float64                 `json:"riskAmount"`
	StopLossPips   float64                 `json:"stopLossPips"`
	TakeProfitPips float64                 `json:"takeProfitPips"`
	ExpectedRR     float64                 `json:"expectedRR"`
	Timestamp      time.Time               `json:"timestamp"`
}

// Planner converts approved signals into execution plans.
type Planner struct {
	cfg SizingConfig
}

// NewPlanner creates a planner with the given sizing constants.
func NewPlanner(cfg SizingConfig) *Planner {
	return &Planner{cfg: cfg}
}

// BuildPlan computes the position size for a validated signal.
func (p *Planner) BuildPlan(sig *signal.TechnicalSignal, account AccountSnapshot, risk RiskSettings) *Plan {
	riskAmount := account.Balance * (risk.MaxRiskPerTrade / 100)
	stopLossPips := math.Abs(sig.Entry-sig.StopLoss) * p.cfg.PipFactor
	takeProfitPips := math.Abs(sig.TakeProfit-sig.Entry) * p.cfg.PipFactor

	lotSize := p.cfg.LotCap
	if stopLossPips > 0 {
		computed := riskAmount / (stopLossPips * p.cfg.PipValuePerLot)
		if computed < lotSize {
			lotSize = computed
		}
	}
	if lotSize < 0 {
		lotSize = 0
	}

	return &Plan{
		Signal:         sig,
		Account:        account,
		Risk:           risk,
		LotSize:        round2(lotSize),
		RiskAmount:     round2(riskAmount),
		StopLossPips:   round1(stopLossPips),
		TakeProfitPips: round1(takeProfitPips),
		ExpectedRR:     risk.RiskRewardRatio,
		Timestamp:      time.Now().UTC(),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round5(v float64) float64 { return math.Round(v*100000) / 100000 }
