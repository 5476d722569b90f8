package execute

import (
	"testing"

	"ai-trading-system/signal"
)

func TestBuildPlanReferenceCase(t *testing.T) {
	// 10000 balance at 2% risk over a 50-pip stop sizes to 0.40 lots.
	planner := NewPlanner(DefaultSizing())
	sig := &signal.TechnicalSignal{
		Symbol:     "EURUSD",
		Direction:  signal.DirectionBuy,
		Entry:      1.0850,
		StopLoss:   1.0800,
		TakeProfit: 1.0950,
	}

	plan := planner.BuildPlan(sig, DefaultAccount(), DefaultRiskSettings())

	if plan.RiskAmount != 200 {
		t.Errorf("risk amount: got %f, want 200", plan.RiskAmount)
	}
	if plan.StopLossPips != 50 {
		t.Errorf("stop loss pips: got %f, want 50", plan.StopLossPips)
	}
	if plan.TakeProfitPips != 100 {
		t.Errorf("take profit pips: got %f, want 100", plan.TakeProfitPips)
	}
	if plan.LotSize != 0.40 {
		t.Errorf("lot size: got %f, want 0.40", plan.LotSize)
	}
	if plan.ExpectedRR != 2.5 {
		t.Errorf("expected RR: got %f, want 2.5", plan.ExpectedRR)
	}
}

func TestBuildPlanCapsLotSize(t *testing.T) {
	// A 5-pip stop would size to 4 lots; the cap holds it at 1.0.
	planner := NewPlanner(DefaultSizing())
	sig := &signal.TechnicalSignal{
		Symbol:    "EURUSD",
		Direction: signal.DirectionBuy,
		Entry:     1.0850,
		StopLoss:  1.0845,
	}

	plan := planner.BuildPlan(sig, DefaultAccount(), DefaultRiskSettings())
	if plan.LotSize != 1.0 {
		t.Errorf("lot size: got %f, want cap 1.0", plan.LotSize)
	}
}

func TestBuildPlanZeroStopDistance(t *testing.T) {
	planner := NewPlanner(DefaultSizing())
	sig := &signal.TechnicalSignal{
		Symbol:    "EURUSD",
		Direction: signal.DirectionBuy,
		Entry:     1.0850,
		StopLoss:  1.0850,
	}

	plan := planner.BuildPlan(sig, DefaultAccount(), DefaultRiskSettings())
	if plan.LotSize != 1.0 {
		t.Errorf("zero stop distance should fall back to the cap, got %f", plan.LotSize)
	}
	if plan.StopLossPips != 0 {
		t.Errorf("stop loss pips: got %f, want 0", plan.StopLossPips)
	}
}

func TestBuildPlanNeverNegative(t *testing.T) {
	planner := NewPlanner(DefaultSizing())
	sig := &signal.TechnicalSignal{
		Symbol:    "EURUSD",
		Direction: signal.DirectionSell,
		Entry:     1.0850,
		StopLoss:  1.0900,
	}
	account := AccountSnapshot{Balance: 0}

	plan := planner.BuildPlan(sig, account, DefaultRiskSettings())
	if plan.LotSize < 0 {
		t.Errorf("lot size must not be negative, got %f", plan.LotSize)
	}
	if plan.RiskAmount != 0 {
		t.Errorf("risk amount for empty account: got %f, want 0", plan.RiskAmount)
	}
}
