package execute

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-trading-system/market"
)

// Order actions accepted by the simulator.
const (
	ActionBuy    = "BUY"
	ActionSell   = "SELL"
	ActionClose  = "CLOSE"
	ActionModify = "MODIFY"
)

// Order lifecycle states. OPEN is the only initial state; CLOSED is terminal.
// MODIFIED is terminal for the modify operation itself, but the underlying
// order remains tradable and can later transition to CLOSED.
const (
	StatusOpen     = "OPEN"
	StatusClosed   = "CLOSED"
	StatusModified = "MODIFIED"
)

// Domain-rule violations detected before any order is created.
var (
	ErrInvalidStopLevels      = errors.New("invalid stop loss")
	ErrInvalidTakeProfitLevel = errors.New("invalid take profit")
	ErrOrderIDRequired        = errors.New("order id required")
	ErrInvalidAction          = errors.New("invalid action")
)

// retcodeDone mirrors the MT5 TRADE_RETCODE_DONE return code.
const retcodeDone = 10009

// OrderRequest describes a broker operation. Price, StopLoss and TakeProfit
// of zero mean "not provided"; market price and no protective levels apply.
type OrderRequest struct {
	Symbol      string  `json:"symbol"`
	Action      string  `json:"action"`
	Volume      float64 `json:"volume"`
	Price       float64 `json:"price,omitempty"`
	StopLoss    float64 `json:"sl,omitempty"`
	TakeProfit  float64 `json:"tp,omitempty"`
	OrderID     string  `json:"orderId,omitempty"`
	Comment     string  `json:"comment,omitempty"`
	MagicNumber int     `json:"magicNumber,omitempty"`
}

// BrokerResponse echoes the simulated MT5 server reply.
type BrokerResponse struct {
	Retcode   int     `json:"retcode"`
	Deal      int64   `json:"deal,omitempty"`
	Order     int64   `json:"order"`
	Volume    float64 `json:"volume,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Bid       float64 `json:"bid,omitempty"`
	Ask       float64 `json:"ask,omitempty"`
	Comment   string  `json:"comment"`
	RequestID int64   `json:"request_id"`
}

// ExecutionResult is the terminal record of one broker operation. Once the
// status is CLOSED or MODIFIED the result is never reused; a new request
// produces a new result.
type ExecutionResult struct {
	OrderID        string         `json:"orderId"`
	Symbol         string         `json:"symbol"`
	Action         string         `json:"action"`
	Volume         float64        `json:"volume"`
	RequestedPrice float64        `json:"requestedPrice,omitempty"`
	FillPrice      float64        `json:"executionPrice,omitempty"`
	ClosePrice     float64        `json:"closePrice,omitempty"`
	Slippage       float64        `json:"slippage"`
	StopLoss       float64        `json:"stopLoss,omitempty"`
	TakeProfit     float64        `json:"takeProfit,omitempty"`
	Spread         float64        `json:"spread"`
	Commission     float64        `json:"commission"`
	Swap           float64        `json:"swap"`
	Profit         float64        `json:"profit"`
	Comment        string         `json:"comment,omitempty"`
	MagicNumber    int            `json:"magicNumber,omitempty"`
	Status         string         `json:"status"`
	OpenTime       time.Time      `json:"openTime,omitzero"`
	CloseTime      time.Time      `json:"closeTime,omitzero"`
	ModifyTime     time.Time      `json:"modifyTime,omitzero"`
	MT5Response    BrokerResponse `json:"mt5Response"`
}

// Simulator mimics broker execution: fill with slippage, commission, spread
// and MT5-style response echoes. It holds no order book; every request is
// independent and the caller owns the resulting record. One simulator is
// shared across request goroutines, so draws on the source are serialized.
type Simulator struct {
	cfg SizingConfig
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a broker simulator with the given constants.
func NewSimulator(cfg SizingConfig, seed int64) *Simulator {
	return &Simulator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Execute runs one broker operation. Domain-rule violations are reported
// before any order record is created.
func (s *Simulator) Execute(req OrderRequest) (*ExecutionResult, error) {
	quote, err := market.Lookup(req.Symbol)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Action {
	case ActionBuy:
		return s.open(req, quote, quote.Ask)
	case ActionSell:
		return s.open(req, quote, quote.Bid)
	case ActionClose:
		return s.close(req, quote)
	case ActionModify:
		return s.modify(req)
	default:
		return nil, fmt.Errorf("%w: action %q not supported", ErrInvalidAction, req.Action)
	}
}

func (s *Simulator) open(req OrderRequest, quote market.Quote, marketPrice float64) (*ExecutionResult, error) {
	requested := req.Price
	if requested == 0 {
		requested = marketPrice
	}
	slippage := (s.rng.Float64() - 0.5) * 2 * s.cfg.SlippageBound
	fill := requested + slippage

	if req.Action == ActionBuy {
		if req.StopLoss != 0 && req.StopLoss >= fill {
			return nil, fmt.Errorf("%w: stop loss must be below entry price for BUY orders", ErrInvalidStopLevels)
		}
		if req.TakeProfit != 0 && req.TakeProfit <= fill {
			return nil, fmt.Errorf("%w: take profit must be above entry price for BUY orders", ErrInvalidTakeProfitLevel)
		}
	} else {
		if req.StopLoss != 0 && req.StopLoss <= fill {
			return nil, fmt.Errorf("%w: stop loss must be above entry price for SELL orders", ErrInvalidStopLevels)
		}
		if req.TakeProfit != 0 && req.TakeProfit >= fill {
			return nil, fmt.Errorf("%w: take profit must be below entry price for SELL orders", ErrInvalidTakeProfitLevel)
		}
	}

	now := time.Now().UTC()
	return &ExecutionResult{
		OrderID:        newOrderID(),
		Symbol:         quote.Symbol,
		Action:         req.Action,
		Volume:         req.Volume,
		RequestedPrice: req.Price,
		FillPrice:      round5(fill),
		Slippage:       round5(slippage),
		StopLoss:       req.StopLoss,
		TakeProfit:     req.TakeProfit,
		Spread:         quote.Spread,
		Commission:     s.Commission(req.Volume),
		Comment:        req.Comment,
		MagicNumber:    req.MagicNumber,
		Status:         StatusOpen,
		OpenTime:       now,
		MT5Response: BrokerResponse{
			Retcode:   retcodeDone,
			Deal:      s.ticket(),
			Order:     s.ticket(),
			Volume:    req.Volume,
			Price:     fill,
			Bid:       quote.Bid,
			Ask:       quote.Ask,
			Comment:   "Request executed",
			RequestID: s.rng.Int63n(1000000),
		},
	}, nil
}

func (s *Simulator) close(req OrderRequest, quote market.Quote) (*ExecutionResult, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: orderId parameter is mandatory for CLOSE action", ErrOrderIDRequired)
	}

	// Closing is assumed to flatten a long, so the bid side applies.
	closePrice := quote.Bid
	profit := (s.rng.Float64() - 0.3) * 100

	return &ExecutionResult{
		OrderID:    req.OrderID,
		Symbol:     quote.Symbol,
		Action:     req.Action,
		Volume:     req.Volume,
		ClosePrice: round5(closePrice),
		Profit:     round2(profit),
		Commission: s.Commission(req.Volume),
		Swap:       round2((s.rng.Float64() - 0.5) * 5),
		Status:     StatusClosed,
		CloseTime:  time.Now().UTC(),
		MT5Response: BrokerResponse{
			Retcode:   retcodeDone,
			Deal:      s.ticket(),
			Order:     s.ticket(),
			Volume:    req.Volume,
			Price:     closePrice,
			Comment:   "Position closed",
			RequestID: s.rng.Int63n(1000000),
		},
	}, nil
}

func (s *Simulator) modify(req OrderRequest) (*ExecutionResult, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: orderId parameter is mandatory for MODIFY action", ErrOrderIDRequired)
	}

	return &ExecutionResult{
		OrderID:    req.OrderID,
		Symbol:     req.Symbol,
		Action:     req.Action,
		Volume:     req.Volume,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Status:     StatusModified,
		ModifyTime: time.Now().UTC(),
		MT5Response: BrokerResponse{
			Retcode:   retcodeDone,
			Order:     s.ticket(),
			Comment:   "Order modified",
			RequestID: s.rng.Int63n(1000000),
		},
	}, nil
}

// Commission returns the fixed per-lot commission for a volume.
func (s *Simulator) Commission(volume float64) float64 {
	return round2(volume * s.cfg.CommissionPerLot)
}

func (s *Simulator) ticket() int64 {
	return 100000 + s.rng.Int63n(1000000)
}

func newOrderID() string {
	return "MT5_" + uuid.NewString()
}
