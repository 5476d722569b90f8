package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"ai-trading-system/execute"
	"ai-trading-system/market"
)

// handleMT5Execute processes a raw broker order against the simulator.
func (s *Server) handleMT5Execute(w http.ResponseWriter, r *http.Request) {
	var req execute.OrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Symbol == "" || req.Action == "" || req.Volume == 0 {
		respondWithError(w, http.StatusBadRequest, "Missing required fields: symbol, action, volume", nil)
		return
	}
	if req.Comment == "" {
		req.Comment = "AI Trading System"
	}
	if req.MagicNumber == 0 {
		req.MagicNumber = 12345
	}

	result, err := s.simulator.Execute(req)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrUnknownSymbol):
			respondWithError(w, http.StatusBadRequest, "Invalid symbol: "+req.Symbol, nil)
		case errors.Is(err, execute.ErrInvalidStopLevels),
			errors.Is(err, execute.ErrInvalidTakeProfitLevel),
			errors.Is(err, execute.ErrOrderIDRequired),
			errors.Is(err, execute.ErrInvalidAction):
			respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "Order execution failed", err)
		}
		return
	}

	log.Printf("MT5 Execution Success: %s %s %s %.2f lots", result.OrderID, req.Symbol, req.Action, req.Volume)

	if s.repo != nil {
		if err := s.repo.SaveOrder(result); err != nil {
			log.Printf("⚠️  Failed to persist order: %v", err)
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"execution": result,
			"account":   s.account,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// handleMT5Info serves account and position snapshots, dispatched on the
// requested action.
func (s *Server) handleMT5Info(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	switch req.Action {
	case "account_info":
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"login":        "demo-account",
				"server":       "demo-server",
				"name":         "AI Trading Account",
				"company":      "Demo Broker",
				"currency":     s.account.Currency,
				"balance":      s.account.Balance,
				"equity":       s.account.Equity,
				"profit":       0.0,
				"margin":       s.account.Balance - s.account.FreeMargin,
				"freeMargin":   s.account.FreeMargin,
				"leverage":     s.account.Leverage,
				"connected":    true,
				"tradeAllowed": true,
				"lastUpdate":   time.Now().Format(time.RFC3339),
			},
		})

	case "positions":
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{
					"orderId":      "MT5_1234567890_abc123",
					"symbol":       "EURUSD",
					"type":         "BUY",
					"volume":       0.1,
					"openPrice":    1.0845,
					"currentPrice": 1.0850,
					"sl":           1.0800,
					"tp":           1.0900,
					"profit":       5.00,
					"swap":         0,
					"commission":   -0.70,
					"openTime":     time.Now().Add(-2 * time.Hour).Format(time.RFC3339),
					"comment":      "AI Signal BUY",
					"magicNumber":  12345,
				},
			},
		})

	default:
		respondWithError(w, http.StatusBadRequest, "Invalid action", nil)
	}
}
