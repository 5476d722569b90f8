package market

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/markcheno/go-talib"
)

const (
	seriesLength = 120 // synthetic bars per snapshot, enough warmup for MA50/MACD
	rsiPeriod    = 14
	atrPeriod    = 14
	bbPeriod     = 20
	bbMultiplier = 2.0
)

// MACDReading captures the crossover state of the MACD lines.
type MACDReading struct {
	Signal    string  `json:"signal"` // BUY or SELL
	Histogram float64 `json:"histogram"`
}

// BollingerReading holds the upper and lower trend-band levels.
type BollingerReading struct {
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// StochasticReading holds the %K/%D oscillator values.
type StochasticReading struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// IndicatorSnapshot is a point-in-time set of indicator readings for a symbol.
// It is created fresh per analysis request, never mutated and never persisted.
type IndicatorSnapshot struct {
	Symbol     string            `json:"symbol"`
	Timeframe  string            `json:"timeframe"`
	Price      float64           `json:"price"`
	RSI        float64           `json:"rsi"`
	MACD       MACDReading       `json:"macd"`
	MA20       float64           `json:"ma20"`
	MA50       float64           `json:"ma50"`
	Bollinger  BollingerReading  `json:"bollinger"`
	Stochastic StochasticReading `json:"stochastic"`
	ATR        float64           `json:"atr"`
	Volume     int64             `json:"volume"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Builder synthesizes indicator snapshots from a seeded random walk.
// Real market ingestion would replace the walk with live candles; the
// indicator math downstream stays identical. One builder is shared
// across request goroutines, so draws on the source are serialized.
type Builder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a snapshot builder with its own random source.
func NewBuilder(seed int64) *Builder {
	return &Builder{rng: rand.New(rand.NewSource(seed))}
}

// Build synthesizes a candle series around the instrument's quoted mid price
// and computes real indicator values from it. Unknown symbols fail before
// any series is generated.
func (b *Builder) Build(symbol, timeframe string) (*IndicatorSnapshot, error) {
	quote, err := Lookup(symbol)
	if err != nil {
		return nil, err
	}
	if timeframe == "" {
		timeframe = "1H"
	}

	b.mu.Lock()
	highs, lows, closes := b.randomWalk(quote)
	volume := 5000 + b.rng.Int63n(10000)
	b.mu.Unlock()
	last := len(closes) - 1

	rsi := talib.Rsi(closes, rsiPeriod)
	macdLine, macdSignal, macdHist := talib.Macd(closes, 12, 26, 9)
	ma20 := talib.Sma(closes, 20)
	ma50 := talib.Sma(closes, 50)
	atr := talib.Atr(highs, lows, closes, atrPeriod)

	basis := talib.Sma(closes, bbPeriod)
	dev := talib.StdDev(closes, bbPeriod, 0)

	stochK, stochD := talib.Stoch(highs, lows, closes, 14, 3, talib.SMA, 3, talib.SMA)

	crossover := "SELL"
	if macdLine[last] > macdSignal[last] {
		crossover = "BUY"
	}

	return &IndicatorSnapshot{
		Symbol:    strings.ToUpper(symbol),
		Timeframe: timeframe,
		Price:     closes[last],
		RSI:       rsi[last],
		MACD: MACDReading{
			Signal:    crossover,
			Histogram: macdHist[last],
		},
		MA20: ma20[last],
		MA50: ma50[last],
		Bollinger: BollingerReading{
			Upper: basis[last] + bbMultiplier*dev[last],
			Lower: basis[last] - bbMultiplier*dev[last],
		},
		Stochastic: StochasticReading{
			K: stochK[last],
			D: stochD[last],
		},
		ATR:       atr[last],
		Volume:    volume,
		Timestamp: time.Now().UTC(),
	}, nil
}

// randomWalk generates a synthetic OHLC series around the quote's mid price.
// Step size scales with the pip size so JPY pairs walk at a sane magnitude.
// Caller must hold mu.
func (b *Builder) randomWalk(quote Quote) (highs, lows, closes []float64) {
	highs = make([]float64, seriesLength)
	lows = make([]float64, seriesLength)
	closes = make([]float64, seriesLength)

	step := quote.PipSize * 8
	price := quote.Mid()

	for i := 0; i < seriesLength; i++ {
		price += (b.rng.Float64() - 0.5) * 2 * step
		wick := b.rng.Float64() * step
		closes[i] = price
		highs[i] = price + wick
		lows[i] = price - wick
	}
	return highs, lows, closes
}
