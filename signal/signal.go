package signal

import (
	"time"

	"ai-trading-system/market"
)

// Direction of a trading signal.
const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

const (
	// StopLossPct and TakeProfitPct are the fixed percentage offsets applied
	// to the entry price when deriving exit levels.
	StopLossPct   = 0.005
	TakeProfitPct = 0.015
)

// TechnicalSignal is a directional trading signal produced from an indicator
// snapshot. It is immutable after creation.
//
// Invariant: for BUY, StopLoss < Entry < TakeProfit;
// for SELL, TakeProfit < Entry < StopLoss.
type TechnicalSignal struct {
	Symbol     string                    `json:"symbol"`
	Direction  string                    `json:"signal"`
	Confidence int                       `json:"confidence"` // 0-100
	Entry      float64                   `json:"entry"`
	StopLoss   float64                   `json:"stopLoss"`
	TakeProfit float64                   `json:"takeProfit"`
	Timestamp  time.Time                 `json:"timestamp"`
	Snapshot   *market.IndicatorSnapshot `json:"indicators,omitempty"`
}

// ExitLevels computes direction-aware stop-loss and take-profit levels as
// fixed percentage offsets from the entry price. Shared by the generator and
// the webhook default-level path so both derive identical numbers.
func ExitLevels(direction string, entry float64) (stopLoss, takeProfit float64) {
	slDistance := entry * StopLossPct
	tpDistance := entry * TakeProfitPct
	if direction == DirectionBuy {
		return entry - slDistance, entry + tpDistance
	}
	return entry + slDistance, entry - tpDistance
}
