package api

import (
	"net/http"
	"time"
)

// handleSignalHistory returns persisted pipeline runs, filterable by symbol
// and final status. Without a database the trading log is unavailable.
func (s *Server) handleSignalHistory(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Signal history requires a database connection", nil)
		return
	}

	minLimit, maxLimit := 1, 500
	limit := getIntParam(r, "limit", 50, &minLimit, &maxLimit)
	symbol := r.URL.Query().Get("symbol")
	status := r.URL.Query().Get("status")

	// source=signals returns the raw technical signals instead of runs.
	if r.URL.Query().Get("source") == "signals" {
		signals, err := s.repo.GetSignals(symbol, limit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to load signal history", err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"signals": signals,
			"count":   len(signals),
		})
		return
	}

	runs, err := s.repo.GetRuns(symbol, status, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load signal history", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"signals": runs,
		"count":   len(runs),
	})
}

// handleSignalStats aggregates run counts by final status for the trailing
// 24 hours.
func (s *Server) handleSignalStats(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Signal stats require a database connection", nil)
		return
	}

	minHours, maxHours := 1, 720
	hours := getIntParam(r, "hours", 24, &minHours, &maxHours)

	stats, err := s.repo.GetRunStats(time.Duration(hours) * time.Hour)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load signal stats", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// handleHealth reports service status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(s.startedAt).String(),
		"database": s.repo != nil,
		"llm":      s.llmService != nil,
		"time":     time.Now().Format(time.RFC3339),
	})
}
