package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-trading-system/market"
)

// Assistant layer label.
const layerAssistant = "AI 4 - News Assistant"

// Assistant analysis types.
const (
	analysisNewsSentiment = "news_sentiment"
	analysisMarketInsight = "market_insight"
	analysisChatAssist    = "chat_assistance"
	analysisGeneral       = "general_assistance"
)

type newsItem struct {
	Title         string   `json:"title"`
	Source        string   `json:"source"`
	Sentiment     string   `json:"sentiment"`
	Impact        string   `json:"impact"`
	RelevantPairs []string `json:"relevantPairs"`
	Summary       string   `json:"summary"`
}

type pairQuote struct {
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
	Trend  string  `json:"trend"`
}

type keyLevels struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// handleAssistant answers AI 4 requests: news sentiment, market insight or
// chat assistance depending on the requested or detected analysis type.
func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message      string      `json:"message"`
		Context      interface{} `json:"context"`
		AnalysisType string      `json:"analysisType"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Message == "" {
		respondWithError(w, http.StatusBadRequest, "Message is required", nil)
		return
	}

	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = detectAnalysisType(req.Message)
	}

	var (
		data interface{}
		err  error
	)
	switch analysisType {
	case analysisNewsSentiment:
		data, err = s.newsSentiment(r)
	case analysisMarketInsight:
		data, err = s.marketInsight(r, req.Message, req.Context)
	case analysisChatAssist:
		data, err = s.chatAssistance(r, req.Message, req.Context)
	default:
		data, err = s.generalAssistance(r, req.Message, req.Context)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Assistant request failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func detectAnalysisType(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "news") || strings.Contains(lower, "sentiment") || strings.Contains(lower, "berita"):
		return analysisNewsSentiment
	case strings.Contains(lower, "market") || strings.Contains(lower, "analysis") || strings.Contains(lower, "pasar"):
		return analysisMarketInsight
	case strings.Contains(lower, "help") || strings.Contains(lower, "bantuan") || strings.Contains(lower, "bagaimana"):
		return analysisChatAssist
	default:
		return analysisGeneral
	}
}

func (s *Server) newsSentiment(r *http.Request) (interface{}, error) {
	news := []newsItem{
		{
			Title:         "Fed Maintains Interest Rates, Signals Cautious Approach",
			Source:        "Reuters",
			Sentiment:     "NEUTRAL",
			Impact:        "MEDIUM",
			RelevantPairs: []string{"EURUSD", "GBPUSD", "USDJPY"},
			Summary:       "Federal Reserve keeps rates unchanged, market shows mixed reaction",
		},
		{
			Title:         "ECB President Hints at Potential Rate Cuts",
			Source:        "Bloomberg",
			Sentiment:     "BEARISH_EUR",
			Impact:        "HIGH",
			RelevantPairs: []string{"EURUSD", "EURGBP"},
			Summary:       "European Central Bank considers monetary easing amid economic concerns",
		},
		{
			Title:         "Strong US Employment Data Boosts Dollar",
			Source:        "MarketWatch",
			Sentiment:     "BULLISH_USD",
			Impact:        "HIGH",
			RelevantPairs: []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD"},
			Summary:       "Non-farm payrolls exceed expectations, strengthening USD outlook",
		},
	}

	prompt := fmt.Sprintf("Analyze market sentiment based on recent news: %d items covering Fed policy, ECB outlook and US employment", len(news))
	analysis, err := s.llmService.AssistantChat(r.Context(), prompt, nil)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"type":      analysisNewsSentiment,
		"analysis":  analysis,
		"newsItems": news,
		"overallSentiment": map[string]interface{}{
			"market":     "CAUTIOUSLY_OPTIMISTIC",
			"usd":        "BULLISH",
			"eur":        "BEARISH",
			"gbp":        "NEUTRAL",
			"confidence": 78,
		},
		"recommendations": []string{
			"Monitor USD strength across major pairs",
			"Consider EUR weakness in trading decisions",
			"Watch for volatility around economic announcements",
		},
		"timestamp": time.Now().Format(time.RFC3339),
		"aiLayer":   layerAssistant,
	}, nil
}

func (s *Server) marketInsight(r *http.Request, message string, chatContext interface{}) (interface{}, error) {
	majorPairs := map[string]pairQuote{
		"EURUSD": {Price: 1.0845, Change: -0.0012, Trend: "BEARISH"},
		"GBPUSD": {Price: 1.2634, Change: 0.0008, Trend: "BULLISH"},
		"USDJPY": {Price: 149.85, Change: 0.45, Trend: "BULLISH"},
		"AUDUSD": {Price: 0.6789, Change: -0.0023, Trend: "BEARISH"},
	}

	marketData := map[string]interface{}{
		"majorPairs":    majorPairs,
		"marketSession": "London",
		"volatility":    "MEDIUM",
		"volume":        "ABOVE_AVERAGE",
		"keyLevels": map[string]keyLevels{
			"EURUSD": {Support: 1.0820, Resistance: 1.0870},
			"GBPUSD": {Support: 1.2600, Resistance: 1.2680},
		},
	}

	analysis, err := s.llmService.AssistantChat(r.Context(), "Provide market insights based on current data: "+message, marketData)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"type":       analysisMarketInsight,
		"analysis":   analysis,
		"marketData": marketData,
		"insights": []string{
			"USD showing strength across major pairs",
			"European currencies under pressure",
			"Asian session volatility expected",
			"Key economic data releases pending",
		},
		"tradingOpportunities": []map[string]interface{}{
			{"pair": "EURUSD", "direction": "SELL", "confidence": 75, "reason": "Technical breakdown + fundamental weakness"},
			{"pair": "GBPUSD", "direction": "BUY", "confidence": 68, "reason": "Bullish momentum + positive sentiment"},
		},
		"timestamp": time.Now().Format(time.RFC3339),
		"aiLayer":   layerAssistant,
	}, nil
}

func (s *Server) chatAssistance(r *http.Request, message string, chatContext interface{}) (interface{}, error) {
	reply, err := s.llmService.AssistantChat(r.Context(), message, chatContext)
	if err != nil {
		return nil, err
	}

	resources := []map[string]string{}
	lower := strings.ToLower(message)
	if strings.Contains(lower, "learn") || strings.Contains(lower, "belajar") {
		resources = append(resources, map[string]string{
			"title":       "Trading Basics Guide",
			"description": "Fundamental concepts of forex trading",
			"type":        "educational",
		})
	}
	if strings.Contains(lower, "strategy") || strings.Contains(lower, "strategi") {
		resources = append(resources, map[string]string{
			"title":       "AI Trading Strategies",
			"description": "How our 4-layer AI system works",
			"type":        "strategy",
		})
	}

	return map[string]interface{}{
		"type":      analysisChatAssist,
		"response":  reply,
		"helpful":   true,
		"resources": resources,
		"suggestedActions": []string{
			"Check current market analysis",
			"Review recent trading signals",
			"Explore AI Room features",
		},
		"timestamp": time.Now().Format(time.RFC3339),
		"aiLayer":   layerAssistant,
	}, nil
}

func (s *Server) generalAssistance(r *http.Request, message string, chatContext interface{}) (interface{}, error) {
	reply, err := s.llmService.AssistantChat(r.Context(), message, chatContext)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"type":     analysisGeneral,
		"response": reply,
		"context":  chatContext,
		"capabilities": []string{
			"Market sentiment analysis",
			"News impact assessment",
			"Trading strategy discussion",
			"Educational support",
			"Real-time market insights",
		},
		"supportedSymbols": market.Symbols(),
		"timestamp": time.Now().Format(time.RFC3339),
		"aiLayer":   layerAssistant,
	}, nil
}
