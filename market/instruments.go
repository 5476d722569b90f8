package market

import (
	"errors"
	"sort"
	"strings"
)

// ErrUnknownSymbol is returned when a symbol is not present in the instrument table.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Quote holds the simulated market quote and contract details for an instrument.
type Quote struct {
	Symbol  string  `json:"symbol"`
	Bid     float64 `json:"bid"`
	Ask     float64 `json:"ask"`
	Spread  float64 `json:"spread"`
	PipSize float64 `json:"pip_size"` // 0.0001 for 4-decimal pairs, 0.01 for JPY pairs
}

// Mid returns the mid price between bid and ask.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// instruments is the fixed table of supported currency pairs.
// Prices are the simulated reference quotes; pip size is carried per
// instrument so the sizing layer can be parameterized for JPY pairs,
// but the default sizing convention stays at 4 decimals.
var instruments = map[string]Quote{
	"EURUSD": {Symbol: "EURUSD", Bid: 1.0845, Ask: 1.0847, Spread: 0.0002, PipSize: 0.0001},
	"GBPUSD": {Symbol: "GBPUSD", Bid: 1.2632, Ask: 1.2635, Spread: 0.0003, PipSize: 0.0001},
	"USDJPY": {Symbol: "USDJPY", Bid: 149.83, Ask: 149.86, Spread: 0.03, PipSize: 0.01},
	"AUDUSD": {Symbol: "AUDUSD", Bid: 0.6787, Ask: 0.6789, Spread: 0.0002, PipSize: 0.0001},
	"USDCAD": {Symbol: "USDCAD", Bid: 1.3456, Ask: 1.3459, Spread: 0.0003, PipSize: 0.0001},
	"NZDUSD": {Symbol: "NZDUSD", Bid: 0.6234, Ask: 0.6236, Spread: 0.0002, PipSize: 0.0001},
	"USDCHF": {Symbol: "USDCHF", Bid: 0.8765, Ask: 0.8767, Spread: 0.0002, PipSize: 0.0001},
}

// Lookup returns the quote for a symbol, or ErrUnknownSymbol.
func Lookup(symbol string) (Quote, error) {
	q, ok := instruments[strings.ToUpper(symbol)]
	if !ok {
		return Quote{}, ErrUnknownSymbol
	}
	return q, nil
}

// Symbols returns the list of supported symbols in alphabetical order.
func Symbols() []string {
	out := make([]string, 0, len(instruments))
	for s := range instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
