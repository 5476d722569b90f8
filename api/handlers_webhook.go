package api

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"ai-trading-system/pipeline"
	"ai-trading-system/realtime"
)

type webhookRequest struct {
	Symbol        string                     `json:"symbol"`
	Action        string                     `json:"action"`
	Price         float64                    `json:"price"`
	StopLoss      float64                    `json:"stopLoss"`
	TakeProfit    float64                    `json:"takeProfit"`
	Time          string                     `json:"time"`
	Strategy      string                     `json:"strategy"`
	WebhookSecret string                     `json:"webhook_secret"`
	Indicators    pipeline.InboundIndicators `json:"indicators"`
}

// handleTradingViewWebhook verifies and normalizes an alert, then drives it
// through the full AI chain. Downstream degradation never turns into a
// request error; only authentication and malformed input do.
func (s *Server) handleTradingViewWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.WebhookSecret), []byte(s.webhookSecret)) != 1 {
		respondWithError(w, http.StatusUnauthorized, "Invalid webhook secret", nil)
		return
	}

	if req.Symbol == "" || req.Action == "" || req.Price == 0 {
		respondWithError(w, http.StatusBadRequest, "Missing required fields: symbol, action, price", nil)
		return
	}

	ts := time.Now()
	if req.Time != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Time); err == nil {
			ts = parsed
		}
	}

	inbound := pipeline.NewInboundSignal(
		req.Symbol, req.Action,
		req.Price, req.StopLoss, req.TakeProfit,
		ts, req.Strategy, req.Indicators,
	)

	log.Printf("TradingView Signal Received: %s %s @ %.5f (%s)",
		inbound.Symbol, inbound.Action, inbound.Price, inbound.Strategy)

	// Duplicate alerts inside the dedup window are acknowledged but not
	// reprocessed.
	if s.analysis != nil && s.dedupWindow > 0 {
		if fresh := s.analysis.MarkSignal(r.Context(), inbound.Symbol, inbound.Action, inbound.Price, s.dedupWindow); !fresh {
			respondWithJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "Duplicate signal ignored",
				"data": map[string]interface{}{
					"signal": inbound,
					"status": "DUPLICATE",
				},
			})
			return
		}
	}

	run := s.orchestrator.Run(r.Context(), inbound)

	if s.repo != nil {
		if err := s.repo.SaveRun(run); err != nil {
			log.Printf("⚠️  Failed to persist pipeline run: %v", err)
		}
	}
	if s.broker != nil {
		s.broker.Broadcast(realtime.EventPipelineCompleted, run)
	}
	if s.notifier != nil {
		s.notifier.NotifyRun(run)
	}

	if run.FinalStatus == pipeline.StatusReceived {
		data := map[string]interface{}{
			"signal":          run.OriginalSignal,
			"status":          pipeline.StatusReceived,
			"processingChain": run.ProcessingChain,
			"nextStep":        "Manual review or retry AI processing",
		}
		if run.Technical != nil {
			data["technicalAnalysis"] = run.Technical
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "TradingView signal received and logged",
			"data":    data,
		})
		return
	}

	message := "TradingView signal processed through full AI chain"
	if run.FinalStatus == pipeline.StatusRejected {
		message = "TradingView signal processed but not approved for execution"
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"data":    run,
	})
}
