package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"ai-trading-system/execute"
	"ai-trading-system/market"
	"ai-trading-system/pipeline"
	"ai-trading-system/realtime"
	"ai-trading-system/signal"
)

// handleTechnicalAnalysis runs the AI 1 layer for one symbol.
func (s *Server) handleTechnicalAnalysis(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol    string `json:"symbol"`
		Timeframe string `json:"timeframe"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Symbol == "" {
		respondWithError(w, http.StatusBadRequest, "Symbol is required", nil)
		return
	}

	analyzer := pipeline.NewTechnicalAnalyzer(s.generator, s.llmService)
	result, err := analyzer.Analyze(r.Context(), req.Symbol, req.Timeframe)
	if err != nil {
		if errors.Is(err, market.ErrUnknownSymbol) {
			respondWithError(w, http.StatusBadRequest, "Unknown symbol: "+req.Symbol, nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Technical analysis failed", err)
		return
	}

	if s.repo != nil {
		if err := s.repo.SaveSignal(result.Technical); err != nil {
			log.Printf("⚠️  Failed to persist signal: %v", err)
		}
	}
	if s.broker != nil {
		s.broker.Broadcast(realtime.EventSignalGenerated, result)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// handleValidateSignal runs the AI 2 layer over a technical signal.
func (s *Server) handleValidateSignal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SignalData *signal.TechnicalSignal `json:"signalData"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.SignalData == nil {
		respondWithError(w, http.StatusBadRequest, "Signal data is required for validation", nil)
		return
	}

	stage := pipeline.NewSignalValidator(s.validator, s.llmService)
	outcome, err := stage.Validate(r.Context(), req.SignalData)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Signal validation failed", err)
		return
	}

	if s.broker != nil {
		s.broker.Broadcast(realtime.EventSignalValidated, outcome)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    outcome,
	})
}

// handleExecuteStrategy runs the AI 3 layer: position sizing plus simulated
// broker execution.
func (s *Server) handleExecuteStrategy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ValidatedSignal *signal.TechnicalSignal  `json:"validatedSignal"`
		AccountInfo     *execute.AccountSnapshot `json:"accountInfo"`
		RiskSettings    *execute.RiskSettings    `json:"riskSettings"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ValidatedSignal == nil {
		respondWithError(w, http.StatusBadRequest, "Validated signal data is required for execution", nil)
		return
	}

	account := s.account
	if req.AccountInfo != nil {
		account = *req.AccountInfo
	}
	risk := s.risk
	if req.RiskSettings != nil {
		risk = *req.RiskSettings
	}

	stage := pipeline.NewStrategyExecutor(s.planner, s.simulator, s.llmService)
	outcome, err := stage.Execute(r.Context(), req.ValidatedSignal, account, risk)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Strategy execution failed", err)
		return
	}

	if s.repo != nil && outcome.ExecutionResult != nil {
		if err := s.repo.SaveOrder(outcome.ExecutionResult); err != nil {
			log.Printf("⚠️  Failed to persist order: %v", err)
		}
	}
	if s.broker != nil {
		s.broker.Broadcast(realtime.EventOrderExecuted, outcome)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"execution": outcome,
			"account":   account,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}
