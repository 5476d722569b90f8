package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"ai-trading-system/auth"
	"ai-trading-system/cache"
	"ai-trading-system/chat"
	"ai-trading-system/database"
	"ai-trading-system/execute"
	"ai-trading-system/llm"
	"ai-trading-system/notifications"
	"ai-trading-system/pipeline"
	"ai-trading-system/realtime"
	"ai-trading-system/signal"
	"ai-trading-system/validate"
)

// Server handles HTTP API requests
type Server struct {
	generator    *signal.Generator
	validator    *validate.Validator
	planner      *execute.Planner
	simulator    *execute.Simulator
	orchestrator *pipeline.Orchestrator
	llmService   *llm.Service
	authService  *auth.Service
	repo         *database.Repository
	analysis     *cache.AnalysisCache
	broker       *realtime.Broker
	chatHub      *chat.Hub
	notifier     *notifications.Notifier

	webhookSecret string
	account       execute.AccountSnapshot
	risk          execute.RiskSettings
	dedupWindow   time.Duration
	startedAt     time.Time
}

// Deps carries everything the server routes need. Repo, analysis cache and
// notifier may be nil; the affected routes degrade instead of failing.
type Deps struct {
	Generator    *signal.Generator
	Validator    *validate.Validator
	Planner      *execute.Planner
	Simulator    *execute.Simulator
	Orchestrator *pipeline.Orchestrator
	LLMService   *llm.Service
	AuthService  *auth.Service
	Repo         *database.Repository
	Analysis     *cache.AnalysisCache
	Broker       *realtime.Broker
	ChatHub      *chat.Hub
	Notifier     *notifications.Notifier

	WebhookSecret string
	Account       execute.AccountSnapshot
	Risk          execute.RiskSettings
	DedupWindow   time.Duration
}

// NewServer creates a new API server instance
func NewServer(deps Deps) *Server {
	return &Server{
		generator:     deps.Generator,
		validator:     deps.Validator,
		planner:       deps.Planner,
		simulator:     deps.Simulator,
		orchestrator:  deps.Orchestrator,
		llmService:    deps.LLMService,
		authService:   deps.AuthService,
		repo:          deps.Repo,
		analysis:      deps.Analysis,
		broker:        deps.Broker,
		chatHub:       deps.ChatHub,
		notifier:      deps.Notifier,
		webhookSecret: deps.WebhookSecret,
		account:       deps.Account,
		risk:          deps.Risk,
		dedupWindow:   deps.DedupWindow,
		startedAt:     time.Now(),
	}
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// AI layer routes
	mux.HandleFunc("POST /api/ai/technical", s.handleTechnicalAnalysis)
	mux.HandleFunc("POST /api/ai/validator", s.handleValidateSignal)
	mux.HandleFunc("POST /api/ai/executor", s.handleExecuteStrategy)
	mux.HandleFunc("POST /api/ai/assistant", s.handleAssistant)

	// Broker simulation routes
	mux.HandleFunc("POST /api/mt5/execute", s.handleMT5Execute)
	mux.HandleFunc("PUT /api/mt5/execute", s.handleMT5Info)

	// Webhook orchestration
	mux.HandleFunc("POST /api/tradingview/webhook", s.handleTradingViewWebhook)

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)

	// History and realtime
	mux.HandleFunc("GET /api/signals/history", s.handleSignalHistory)
	mux.HandleFunc("GET /api/signals/stats", s.handleSignalStats)
	mux.Handle("GET /api/events", s.broker) // SSE endpoint
	mux.HandleFunc("GET /api/chat/ws", s.chatHub.ServeWS)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) error {
	serverAddr := fmt.Sprintf("0.0.0.0:%s", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, s.Handler())
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// Handlers are distributed across multiple files:
// - handlers_ai.go: AI layer analysis, validation, execution, assistant
// - handlers_mt5.go: Broker simulation endpoints
// - handlers_webhook.go: TradingView webhook pipeline
// - handlers_auth.go: Login and registration
// - handlers_history.go: Signal history, stats, health check
