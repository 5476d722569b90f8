package signal

import (
	"time"

	"ai-trading-system/market"
)

// Generator turns indicator snapshots into technical signals.
type Generator struct {
	builder *market.Builder
	policy  Policy
}

// NewGenerator creates a generator backed by the given snapshot builder and
// decision policy.
func NewGenerator(builder *market.Builder, policy Policy) *Generator {
	return &Generator{builder: builder, policy: policy}
}

// Generate builds a snapshot for the symbol and produces a signal from it.
// Returns market.ErrUnknownSymbol for symbols outside the instrument table.
func (g *Generator) Generate(symbol, timeframe string) (*TechnicalSignal, error) {
	snap, err := g.builder.Build(symbol, timeframe)
	if err != nil {
		return nil, err
	}
	return g.FromSnapshot(snap), nil
}

// FromSnapshot produces a signal from an existing snapshot.
func (g *Generator) FromSnapshot(snap *market.IndicatorSnapshot) *TechnicalSignal {
	direction, confidence := g.policy.Decide(snap)
	stopLoss, takeProfit := ExitLevels(direction, snap.Price)

	return &TechnicalSignal{
		Symbol:     snap.Symbol,
		Direction:  direction,
		Confidence: confidence,
		Entry:      snap.Price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		Timestamp:  time.Now().UTC(),
		Snapshot:   snap,
	}
}
