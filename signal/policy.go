package signal

import (
	"math/rand"
	"sync"

	"ai-trading-system/market"
)

// Policy decides the direction and confidence for a snapshot. The generator
// applies the exit-level arithmetic on top of whatever the policy returns, so
// swapping a demo policy for a real one never changes the signal contract.
type Policy interface {
	Decide(snap *market.IndicatorSnapshot) (direction string, confidence int)
}

// RandomPolicy is the demo policy: direction is a biased coin flip and
// confidence is drawn uniformly from [70,100]. It exists so the pipeline can
// run without market data; production deployments inject VotePolicy or a
// model-backed implementation. One policy is shared across request
// goroutines, so draws on the source are serialized.
type RandomPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPolicy creates a demo policy with its own random source.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

// Decide picks BUY 60% of the time and a confidence in [70,100].
func (p *RandomPolicy) Decide(_ *market.IndicatorSnapshot) (string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	direction := DirectionSell
	if p.rng.Float64() > 0.4 {
		direction = DirectionBuy
	}
	return direction, 70 + p.rng.Intn(31)
}

// VotePolicy derives direction from a majority vote across indicator
// readings and confidence from how many of them agree.
type VotePolicy struct{}

// Decide tallies one vote per indicator. RSI zone, MACD crossover, MA trend,
// stochastic zone and Bollinger position each contribute; confidence maps
// agreement share onto [70,100].
func (VotePolicy) Decide(snap *market.IndicatorSnapshot) (string, int) {
	bullish, bearish := 0, 0
	vote := func(isBull, isBear bool) {
		if isBull {
			bullish++
		} else if isBear {
			bearish++
		}
	}

	vote(snap.RSI < 40, snap.RSI > 60)
	vote(snap.MACD.Signal == DirectionBuy, snap.MACD.Signal == DirectionSell)
	vote(snap.MA20 > snap.MA50, snap.MA20 < snap.MA50)
	vote(snap.Stochastic.K < 20, snap.Stochastic.K > 80)
	mid := (snap.Bollinger.Upper + snap.Bollinger.Lower) / 2
	vote(snap.Price < mid, snap.Price > mid)

	direction := DirectionSell
	agree := bearish
	if bullish >= bearish {
		direction = DirectionBuy
		agree = bullish
	}

	total := bullish + bearish
	if total == 0 {
		return direction, 70
	}
	confidence := 70 + (30*agree)/total
	if confidence > 100 {
		confidence = 100
	}
	return direction, confidence
}
