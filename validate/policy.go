package validate

import (
	"math/rand"
	"sync"

	"ai-trading-system/signal"
)

// Policy produces a validation score and the market-condition assessment it
// was derived from. Scores are integers in [0,100].
type Policy interface {
	Score(sig *signal.TechnicalSignal) (int, MarketConditions)
}

// RandomPolicy is the demo scorer: an unweighted draw in [60,100] with
// randomly assigned market conditions, matching the reference behavior.
// One policy is shared across request goroutines, so draws on the source
// are serialized.
type RandomPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPolicy creates a demo scoring policy with its own random source.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

// Score draws a score in [60,100] and random condition categories.
func (p *RandomPolicy) Score(_ *signal.TechnicalSignal) (int, MarketConditions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conditions := MarketConditions{
		Volatility: pick(p.rng, 0.5, "HIGH", "NORMAL"),
		Trend:      pick(p.rng, 0.5, "BULLISH", "BEARISH"),
		Volume:     pick(p.rng, 0.6, "ABOVE_AVERAGE", "NORMAL"),
		NewsImpact: pick(p.rng, 0.8, "HIGH", "LOW"),
	}
	return 60 + p.rng.Intn(41), conditions
}

func pick(rng *rand.Rand, threshold float64, above, below string) string {
	if rng.Float64() > threshold {
		return above
	}
	return below
}

// WeightedPolicy scores a signal with explicit per-factor weights derived
// from its indicator snapshot. Each factor contributes its weight when the
// market condition favors the signal, half when neutral.
type WeightedPolicy struct {
	VolatilityWeight int // favorable when volatility is NORMAL
	TrendWeight      int // favorable when trend aligns with signal direction
	VolumeWeight     int // favorable when volume is ABOVE_AVERAGE
	NewsWeight       int // favorable when news impact is LOW
	Base             int // score floor
}

// NewWeightedPolicy returns the production weighting: 60 base plus up to 40
// across the four factors, keeping scores inside the reference [60,100] range.
func NewWeightedPolicy() *WeightedPolicy {
	return &WeightedPolicy{
		VolatilityWeight: 10,
		TrendWeight:      15,
		VolumeWeight:     8,
		NewsWeight:       7,
		Base:             60,
	}
}

// Score derives market conditions from the snapshot and combines the
// weighted factors. Signals without a snapshot score at the base.
func (p *WeightedPolicy) Score(sig *signal.TechnicalSignal) (int, MarketConditions) {
	snap := sig.Snapshot
	if snap == nil {
		return p.Base, MarketConditions{
			Volatility: "NORMAL",
			Trend:      "BULLISH",
			Volume:     "NORMAL",
			NewsImpact: "LOW",
		}
	}

	conditions := MarketConditions{
		Volatility: "NORMAL",
		Trend:      "BEARISH",
		Volume:     "NORMAL",
		NewsImpact: "LOW", // no news feed wired; treated as quiet tape
	}
	// High volatility when ATR is wide relative to price.
	if snap.ATR > snap.Price*0.002 {
		conditions.Volatility = "HIGH"
	}
	if snap.MA20 > snap.MA50 {
		conditions.Trend = "BULLISH"
	}
	if snap.Volume > 10000 {
		conditions.Volume = "ABOVE_AVERAGE"
	}

	score := p.Base
	if conditions.Volatility == "NORMAL" {
		score += p.VolatilityWeight
	}
	trendAligned := (conditions.Trend == "BULLISH" && sig.Direction == signal.DirectionBuy) ||
		(conditions.Trend == "BEARISH" && sig.Direction == signal.DirectionSell)
	if trendAligned {
		score += p.TrendWeight
	}
	if conditions.Volume == "ABOVE_AVERAGE" {
		score += p.VolumeWeight
	}
	if conditions.NewsImpact == "LOW" {
		score += p.NewsWeight
	}
	if score > 100 {
		score = 100
	}
	return score, conditions
}
