package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-trading-system/auth"
	"ai-trading-system/chat"
	"ai-trading-system/execute"
	"ai-trading-system/llm"
	"ai-trading-system/market"
	"ai-trading-system/pipeline"
	"ai-trading-system/realtime"
	"ai-trading-system/signal"
	"ai-trading-system/validate"
)

type fixedSignalPolicy struct{}

func (fixedSignalPolicy) Decide(*market.IndicatorSnapshot) (string, int) {
	return signal.DirectionBuy, 85
}

type fixedScorePolicy struct{ score int }

func (p fixedScorePolicy) Score(*signal.TechnicalSignal) (int, validate.MarketConditions) {
	return p.score, validate.MarketConditions{
		Volatility: "NORMAL",
		Trend:      "BULLISH",
		Volume:     "NORMAL",
		NewsImpact: "LOW",
	}
}

// newTestServer wires a fully deterministic server: fixed BUY signals, a
// fixed validation score and canned AI replies. No database, no redis.
func newTestServer(t *testing.T, validationScore int) http.Handler {
	t.Helper()

	llmService := llm.NewService(nil, nil)
	generator := signal.NewGenerator(market.NewBuilder(1), fixedSignalPolicy{})
	validator := validate.NewValidator(fixedScorePolicy{score: validationScore}, 0)
	sizing := execute.DefaultSizing()
	planner := execute.NewPlanner(sizing)
	simulator := execute.NewSimulator(sizing, 1)

	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewTechnicalAnalyzer(generator, llmService),
		pipeline.NewSignalValidator(validator, llmService),
		pipeline.NewStrategyExecutor(planner, simulator, llmService),
		execute.DefaultAccount(),
		execute.DefaultRiskSettings(),
		time.Second,
	)

	broker := realtime.NewBroker()
	go broker.Run()
	hub := chat.NewHub(llmService)
	go hub.Run()

	srv := NewServer(Deps{
		Generator:     generator,
		Validator:     validator,
		Planner:       planner,
		Simulator:     simulator,
		Orchestrator:  orchestrator,
		LLMService:    llmService,
		AuthService:   auth.NewService(auth.NewDemoRepository(), "test-secret"),
		Broker:        broker,
		ChatHub:       hub,
		WebhookSecret: "demo-webhook-secret",
		Account:       execute.DefaultAccount(),
		Risk:          execute.DefaultRiskSettings(),
	})
	return srv.Handler()
}

func postJSON(t *testing.T, handler http.Handler, path string, body map[string]interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	handler := newTestServer(t, 90)
	rec, resp := postJSON(t, handler, "/api/tradingview/webhook", map[string]interface{}{
		"symbol":         "EURUSD",
		"action":         "BUY",
		"price":          1.0850,
		"webhook_secret": "wrong",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
	if resp["success"] != false {
		t.Errorf("unexpected body: %v", resp)
	}
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	handler := newTestServer(t, 90)
	rec, _ := postJSON(t, handler, "/api/tradingview/webhook", map[string]interface{}{
		"symbol":         "EURUSD",
		"webhook_secret": "demo-webhook-secret",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestWebhookFullChain(t *testing.T) {
	handler := newTestServer(t, 90)
	rec, resp := postJSON(t, handler, "/api/tradingview/webhook", map[string]interface{}{
		"symbol":         "EURUSD",
		"action":         "BUY",
		"price":          1.0850,
		"strategy":       "Golden Cross",
		"webhook_secret": "demo-webhook-secret",
		"indicators":     map[string]interface{}{"rsi": 75.0, "macd_signal": "BUY"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data object: %v", resp)
	}
	if data["finalStatus"] != pipeline.StatusExecuted {
		t.Fatalf("final status: got %v, want %s", data["finalStatus"], pipeline.StatusExecuted)
	}

	chain, ok := data["processingChain"].([]interface{})
	if !ok || len(chain) != 4 {
		t.Fatalf("processing chain: got %v", data["processingChain"])
	}
	if chain[0] != "TradingView" || chain[3] != "AI 3" {
		t.Errorf("unexpected chain: %v", chain)
	}
	if data["execution"] == nil {
		t.Error("executed run should include the execution outcome")
	}
}

func TestWebhookRejectedSignal(t *testing.T) {
	handler := newTestServer(t, 60)
	rec, resp := postJSON(t, handler, "/api/tradingview/webhook", map[string]interface{}{
		"symbol":         "EURUSD",
		"action":         "SELL",
		"price":          1.0850,
		"webhook_secret": "demo-webhook-secret",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("rejected signals still answer 200, got %d", rec.Code)
	}

	data := resp["data"].(map[string]interface{})
	if data["finalStatus"] != pipeline.StatusRejected {
		t.Fatalf("final status: got %v, want %s", data["finalStatus"], pipeline.StatusRejected)
	}
	chain := data["processingChain"].([]interface{})
	if len(chain) != 3 {
		t.Errorf("rejected chain should stop after AI 2: %v", chain)
	}
}

func TestWebhookDegradedRunReportsChain(t *testing.T) {
	handler := newTestServer(t, 90)
	rec, resp := postJSON(t, handler, "/api/tradingview/webhook", map[string]interface{}{
		"symbol":         "FAKEUSD",
		"action":         "BUY",
		"price":          1.0850,
		"webhook_secret": "demo-webhook-secret",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("degraded runs still answer 200, got %d", rec.Code)
	}

	data := resp["data"].(map[string]interface{})
	if data["status"] != pipeline.StatusReceived {
		t.Fatalf("status: got %v, want %s", data["status"], pipeline.StatusReceived)
	}
	chain, ok := data["processingChain"].([]interface{})
	if !ok || len(chain) != 1 || chain[0] != "TradingView" {
		t.Errorf("degraded chain should report the completed stages: %v", data["processingChain"])
	}
	if data["nextStep"] != "Manual review or retry AI processing" {
		t.Errorf("next step: got %v", data["nextStep"])
	}
}

func TestTechnicalEndpoint(t *testing.T) {
	handler := newTestServer(t, 90)

	rec, _ := postJSON(t, handler, "/api/ai/technical", map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing symbol should answer 400, got %d", rec.Code)
	}

	rec, resp := postJSON(t, handler, "/api/ai/technical", map[string]interface{}{
		"symbol": "EURUSD",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	data := resp["data"].(map[string]interface{})
	if data["aiLayer"] != "AI 1 - Technical Analysis" {
		t.Errorf("ai layer: got %v", data["aiLayer"])
	}
	if data["signal"] != signal.DirectionBuy {
		t.Errorf("signal: got %v", data["signal"])
	}
}

func TestMT5ExecuteEndpoint(t *testing.T) {
	handler := newTestServer(t, 90)

	rec, _ := postJSON(t, handler, "/api/mt5/execute", map[string]interface{}{
		"symbol": "EURUSD",
		"action": "BUY",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing volume should answer 400, got %d", rec.Code)
	}

	rec, _ = postJSON(t, handler, "/api/mt5/execute", map[string]interface{}{
		"symbol": "EURUSD",
		"action": "BUY",
		"volume": 0.1,
		"sl":     1.2000,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid stop level should answer 400, got %d", rec.Code)
	}

	rec, resp := postJSON(t, handler, "/api/mt5/execute", map[string]interface{}{
		"symbol": "EURUSD",
		"action": "BUY",
		"volume": 0.1,
		"sl":     1.0800,
		"tp":     1.0900,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	data := resp["data"].(map[string]interface{})
	execution := data["execution"].(map[string]interface{})
	if execution["status"] != execute.StatusOpen {
		t.Errorf("status: got %v", execution["status"])
	}
}

func TestAuthEndpoints(t *testing.T) {
	handler := newTestServer(t, 90)

	rec, resp := postJSON(t, handler, "/api/auth/login", map[string]interface{}{
		"email":    "demo@trading.com",
		"password": "demo123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status: got %d (%s)", rec.Code, rec.Body.String())
	}
	if resp["token"] == nil {
		t.Error("login response should carry a token")
	}

	rec, _ = postJSON(t, handler, "/api/auth/login", map[string]interface{}{
		"email":    "demo@trading.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials should answer 401, got %d", rec.Code)
	}

	rec, _ = postJSON(t, handler, "/api/auth/register", map[string]interface{}{
		"name":     "Alex",
		"email":    "alex@example.com",
		"password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status: got %d", rec.Code)
	}

	rec, _ = postJSON(t, handler, "/api/auth/register", map[string]interface{}{
		"name":     "Alex",
		"email":    "alex@example.com",
		"password": "123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("weak password should answer 400, got %d", rec.Code)
	}
}

func TestSignalHistoryWithoutDatabase(t *testing.T) {
	handler := newTestServer(t, 90)
	req := httptest.NewRequest(http.MethodGet, "/api/signals/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, 90)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status: got %v", body["status"])
	}
	if body["database"] != false {
		t.Errorf("database flag: got %v", body["database"])
	}
}
