package execute

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"ai-trading-system/market"
)

func newTestSimulator() *Simulator {
	return NewSimulator(DefaultSizing(), 1)
}

func TestExecuteUnknownSymbol(t *testing.T) {
	s := newTestSimulator()
	_, err := s.Execute(OrderRequest{Symbol: "BTCUSD", Action: ActionBuy, Volume: 0.1})
	if !errors.Is(err, market.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestExecuteValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     OrderRequest
		wantErr error
	}{
		{
			name:    "buy stop above entry",
			req:     OrderRequest{Symbol: "EURUSD", Action: ActionBuy, Volume: 0.1, StopLoss: 1.2000},
			wantErr: ErrInvalidStopLevels,
		},
		{
			name:    "buy take profit below entry",
			req:     OrderRequest{Symbol: "EURUSD", Action: ActionBuy, Volume: 0.1, TakeProfit: 1.0000},
			wantErr: ErrInvalidTakeProfitLevel,
		},
		{
			name:    "sell stop below entry",
			req:     OrderRequest{Symbol: "EURUSD", Action: ActionSell, Volume: 0.1, StopLoss: 1.0000},
			wantErr: ErrInvalidStopLevels,
		},
		{
			name:    "sell take profit above entry",
			req:     OrderRequest{Symbol: "EURUSD", Action: ActionSell, Volume: 0.1, TakeProfit: 1.2000},
			wantErr: ErrInvalidTakeProfitLevel,
		},
		{
			name:    "close without order id",
			req:     OrderRequest{Symbol: "EURUSD", Action: ActionClose, Volume: 0.1},
			wantErr: ErrOrderIDRequired,
		},
		{
			name:    "modify without order id",
			req:     OrderRequest{Symbol: "EURUSD", Action: ActionModify, Volume: 0.1},
			wantErr: ErrOrderIDRequired,
		},
		{
			name:    "unsupported action",
			req:     OrderRequest{Symbol: "EURUSD", Action: "HOLD", Volume: 0.1},
			wantErr: ErrInvalidAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestSimulator().Execute(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExecuteBuyFillsNearAsk(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Execute(OrderRequest{Symbol: "EURUSD", Action: ActionBuy, Volume: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	quote, _ := market.Lookup("EURUSD")
	if math.Abs(res.FillPrice-quote.Ask) > DefaultSizing().SlippageBound+1e-9 {
		t.Errorf("fill %f too far from ask %f", res.FillPrice, quote.Ask)
	}
	if res.Status != StatusOpen {
		t.Errorf("status: got %s, want %s", res.Status, StatusOpen)
	}
	if !strings.HasPrefix(res.OrderID, "MT5_") {
		t.Errorf("order id should carry the MT5_ prefix, got %s", res.OrderID)
	}
	if res.Commission != 3.5 {
		t.Errorf("commission for 0.5 lots: got %f, want 3.5", res.Commission)
	}
	if res.MT5Response.Retcode != 10009 {
		t.Errorf("retcode: got %d, want 10009", res.MT5Response.Retcode)
	}
	if res.OpenTime.IsZero() {
		t.Error("open time not set")
	}
}

func TestExecuteSellFillsNearBid(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Execute(OrderRequest{Symbol: "GBPUSD", Action: ActionSell, Volume: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	quote, _ := market.Lookup("GBPUSD")
	if math.Abs(res.FillPrice-quote.Bid) > DefaultSizing().SlippageBound+1e-9 {
		t.Errorf("fill %f too far from bid %f", res.FillPrice, quote.Bid)
	}
	if res.Commission != 7 {
		t.Errorf("commission for 1.0 lot: got %f, want 7", res.Commission)
	}
}

func TestExecuteClose(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Execute(OrderRequest{
		Symbol:  "EURUSD",
		Action:  ActionClose,
		Volume:  0.1,
		OrderID: "MT5_existing",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != StatusClosed {
		t.Errorf("status: got %s, want %s", res.Status, StatusClosed)
	}
	if res.OrderID != "MT5_existing" {
		t.Errorf("close must keep the original order id, got %s", res.OrderID)
	}
	if res.ClosePrice == 0 {
		t.Error("close price not set")
	}
	if res.CloseTime.IsZero() {
		t.Error("close time not set")
	}
}

func TestExecuteModify(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Execute(OrderRequest{
		Symbol:     "EURUSD",
		Action:     ActionModify,
		Volume:     0.1,
		OrderID:    "MT5_existing",
		StopLoss:   1.0820,
		TakeProfit: 1.0920,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != StatusModified {
		t.Errorf("status: got %s, want %s", res.Status, StatusModified)
	}
	if res.StopLoss != 1.0820 || res.TakeProfit != 1.0920 {
		t.Errorf("levels not applied: sl=%f tp=%f", res.StopLoss, res.TakeProfit)
	}
	if res.ModifyTime.IsZero() {
		t.Error("modify time not set")
	}
}

func TestExecuteConcurrentRequests(t *testing.T) {
	s := newTestSimulator()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				res, err := s.Execute(OrderRequest{Symbol: "EURUSD", Action: ActionBuy, Volume: 0.1})
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if res.Status != StatusOpen {
					t.Errorf("unexpected status: %s", res.Status)
					return
				}
			}
		}()
	}
	wg.Wait()
}
