package llm

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// System prompts for the four AI layers.
const (
	technicalSystemPrompt = "You are AI 1 - Technical Analysis Expert. Analyze market data using 10 key indicators: MA, RSI, MACD, Bollinger Bands, Stochastic, Fibonacci, ATR, Ichimoku Cloud, Volume, and Parabolic SAR. Provide clear BUY/SELL signals with confidence levels."
	validatorSystemPrompt = "You are AI 2 - Signal Validator. Cross-check and validate signals from AI 1. Discuss with AI 1 to improve accuracy. Only approve signals with high probability of success."
	executorSystemPrompt  = "You are AI 3 - Strategy Executor. Calculate SL, TP, pip values, and execute trades via MT5. Learn from historical performance and optimize strategies."
	assistantSystemPrompt = "You are AI 4 - Personal Trading Assistant. Analyze news sentiment, provide market insights, and engage in helpful discussions about trading strategies. Be conversational and supportive."
)

const analysisCacheTTL = 5 * time.Minute

// Response is the collaborator contract shape: success with data, or an error.
type Response struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AnalysisCache stores narrative analyses keyed by request content so
// repeated identical requests skip the model round trip.
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, key string) (string, bool)
	SetAnalysis(ctx context.Context, key, text string, ttl time.Duration) error
}

// Service routes chat requests to the configured model, falling back to
// deterministic canned templates when no API key is present.
type Service struct {
	client *Client
	cache  AnalysisCache
}

// NewService creates the AI collaborator service. cache may be nil.
func NewService(client *Client, cache AnalysisCache) *Service {
	return &Service{client: client, cache: cache}
}

// Chat answers a role-tagged message list. It never returns a transport
// error as a Go error; failures are reported inside the Response so callers
// can pass the shape through unchanged.
func (s *Service) Chat(ctx context.Context, messages []Message) Response {
	if !s.client.Configured() {
		return Response{Success: true, Data: cannedReply(messages)}
	}

	data, err := s.client.ChatCompletion(ctx, messages)
	if err != nil {
		log.Printf("⚠️  LLM request failed: %v", err)
		return Response{Success: false, Error: err.Error()}
	}
	return Response{Success: true, Data: data}
}

// TechnicalAnalysis asks the AI 1 layer for a narrative over market data.
func (s *Service) TechnicalAnalysis(ctx context.Context, marketData interface{}) (string, error) {
	return s.analyze(ctx, "technical", technicalSystemPrompt, "Analyze this market data: ", marketData)
}

// ValidateSignal asks the AI 2 layer to cross-check a signal.
func (s *Service) ValidateSignal(ctx context.Context, signalData interface{}) (string, error) {
	return s.analyze(ctx, "validator", validatorSystemPrompt, "Validate this signal: ", signalData)
}

// ExecuteStrategy asks the AI 3 layer for an execution commentary.
func (s *Service) ExecuteStrategy(ctx context.Context, executionData interface{}) (string, error) {
	return s.analyze(ctx, "executor", executorSystemPrompt, "Execute strategy for: ", executionData)
}

// AssistantChat answers a free-form user message as the AI 4 persona,
// optionally with conversation context inserted before the user turn.
func (s *Service) AssistantChat(ctx context.Context, userMessage string, chatContext interface{}) (string, error) {
	messages := []Message{
		{Role: "system", Content: assistantSystemPrompt},
	}
	if chatContext != nil {
		ctxJSON, _ := json.Marshal(chatContext)
		messages = append(messages, Message{Role: "assistant", Content: "Context: " + string(ctxJSON)})
	}
	messages = append(messages, Message{Role: "user", Content: userMessage})

	resp := s.Chat(ctx, messages)
	if !resp.Success {
		return "", errors.New(resp.Error)
	}
	return resp.Data, nil
}

func (s *Service) analyze(ctx context.Context, layer, systemPrompt, userPrefix string, payload interface{}) (string, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", layer, err)
	}

	cacheKey := fmt.Sprintf("llm:analysis:%s:%x", layer, hashBytes(payloadJSON))
	if s.cache != nil {
		if cached, ok := s.cache.GetAnalysis(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	resp := s.Chat(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrefix + string(payloadJSON)},
	})
	if !resp.Success {
		return "", errors.New(resp.Error)
	}

	if s.cache != nil {
		if err := s.cache.SetAnalysis(ctx, cacheKey, resp.Data, analysisCacheTTL); err != nil {
			log.Printf("⚠️  Failed to cache %s analysis: %v", layer, err)
		}
	}
	return resp.Data, nil
}

// hashBytes shortens a payload to a stable cache-key fragment.
func hashBytes(b []byte) []byte {
	sum := md5.Sum(b)
	return sum[:8]
}
