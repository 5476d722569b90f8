package signal

import (
	"sync"
	"testing"

	"ai-trading-system/market"
)

func TestExitLevels(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		entry     float64
		wantSL    float64
		wantTP    float64
	}{
		{name: "buy", direction: DirectionBuy, entry: 1.0850, wantSL: 1.0850 * 0.995, wantTP: 1.0850 * 1.015},
		{name: "sell", direction: DirectionSell, entry: 1.0850, wantSL: 1.0850 * 1.005, wantTP: 1.0850 * 0.985},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl, tp := ExitLevels(tt.direction, tt.entry)
			if !closeTo(sl, tt.wantSL) {
				t.Errorf("stop loss: got %f, want %f", sl, tt.wantSL)
			}
			if !closeTo(tp, tt.wantTP) {
				t.Errorf("take profit: got %f, want %f", tp, tt.wantTP)
			}
		})
	}
}

type fixedPolicy struct {
	direction  string
	confidence int
}

func (p fixedPolicy) Decide(*market.IndicatorSnapshot) (string, int) {
	return p.direction, p.confidence
}

func TestGenerateOrdersExitLevels(t *testing.T) {
	tests := []struct {
		name      string
		direction string
	}{
		{name: "buy levels bracket entry", direction: DirectionBuy},
		{name: "sell levels bracket entry", direction: DirectionSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(market.NewBuilder(3), fixedPolicy{tt.direction, 80})
			sig, err := g.Generate("EURUSD", "1H")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if sig.Direction != tt.direction {
				t.Fatalf("direction: got %s, want %s", sig.Direction, tt.direction)
			}
			if tt.direction == DirectionBuy {
				if !(sig.StopLoss < sig.Entry && sig.Entry < sig.TakeProfit) {
					t.Errorf("BUY levels out of order: sl=%f entry=%f tp=%f", sig.StopLoss, sig.Entry, sig.TakeProfit)
				}
			} else {
				if !(sig.TakeProfit < sig.Entry && sig.Entry < sig.StopLoss) {
					t.Errorf("SELL levels out of order: tp=%f entry=%f sl=%f", sig.TakeProfit, sig.Entry, sig.StopLoss)
				}
			}
			if sig.Snapshot == nil {
				t.Error("snapshot should be attached to the signal")
			}
		})
	}
}

func TestGenerateUnknownSymbol(t *testing.T) {
	g := NewGenerator(market.NewBuilder(3), fixedPolicy{DirectionBuy, 80})
	if _, err := g.Generate("XAUXAG", "1H"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestRandomPolicyConfidenceRange(t *testing.T) {
	p := NewRandomPolicy(11)
	for i := 0; i < 200; i++ {
		direction, confidence := p.Decide(nil)
		if direction != DirectionBuy && direction != DirectionSell {
			t.Fatalf("unexpected direction %q", direction)
		}
		if confidence < 70 || confidence > 100 {
			t.Fatalf("confidence out of range: %d", confidence)
		}
	}
}

func TestVotePolicy(t *testing.T) {
	tests := []struct {
		name          string
		snap          market.IndicatorSnapshot
		wantDirection string
	}{
		{
			name: "all bullish",
			snap: market.IndicatorSnapshot{
				Price:      1.0800,
				RSI:        30,
				MACD:       market.MACDReading{Signal: DirectionBuy},
				MA20:       1.0860,
				MA50:       1.0850,
				Stochastic: market.StochasticReading{K: 15},
				Bollinger:  market.BollingerReading{Upper: 1.0900, Lower: 1.0820},
			},
			wantDirection: DirectionBuy,
		},
		{
			name: "all bearish",
			snap: market.IndicatorSnapshot{
				Price:      1.0900,
				RSI:        75,
				MACD:       market.MACDReading{Signal: DirectionSell},
				MA20:       1.0840,
				MA50:       1.0850,
				Stochastic: market.StochasticReading{K: 90},
				Bollinger:  market.BollingerReading{Upper: 1.0890, Lower: 1.0810},
			},
			wantDirection: DirectionSell,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			direction, confidence := VotePolicy{}.Decide(&tt.snap)
			if direction != tt.wantDirection {
				t.Errorf("direction: got %s, want %s", direction, tt.wantDirection)
			}
			if confidence != 100 {
				t.Errorf("unanimous vote should yield confidence 100, got %d", confidence)
			}
		})
	}
}

func closeTo(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}

func TestRandomPolicyConcurrentDecides(t *testing.T) {
	p := NewRandomPolicy(3)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				direction, confidence := p.Decide(nil)
				if direction != DirectionBuy && direction != DirectionSell {
					t.Errorf("unexpected direction: %s", direction)
					return
				}
				if confidence < 70 || confidence > 100 {
					t.Errorf("confidence out of range: %d", confidence)
					return
				}
			}
		}()
	}
	wg.Wait()
}
