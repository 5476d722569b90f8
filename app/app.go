package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ai-trading-system/api"
	"ai-trading-system/auth"
	"ai-trading-system/cache"
	"ai-trading-system/chat"
	"ai-trading-system/config"
	"ai-trading-system/database"
	"ai-trading-system/execute"
	"ai-trading-system/llm"
	"ai-trading-system/market"
	"ai-trading-system/notifications"
	"ai-trading-system/pipeline"
	"ai-trading-system/realtime"
	sig "ai-trading-system/signal"
	"ai-trading-system/validate"
)

// App represents the main application
type App struct {
	config  *config.Config
	db      *database.Database
	redis   *cache.RedisClient
	repo    *database.Repository
	broker  *realtime.Broker
	chatHub *chat.Hub
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start starts the application
func (a *App) Start() error {
	// 1. Database connection. Persistence is optional; the pipeline runs
	// degraded without it.
	fmt.Println("🗄️  Connecting to database...")
	db, err := database.Connect(
		a.config.DatabaseHost,
		a.config.DatabasePort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		log.Printf("⚠️  Database unavailable, trading log disabled: %v", err)
	} else {
		a.db = db
		a.repo = database.NewRepository(db)
		if err := a.repo.InitSchema(); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
	}

	// 2. Redis connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)
	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		a.redis = redisClient
	}
	analysisCache := cache.NewAnalysisCache(a.redis)

	// 3. LLM service
	var llmClient *llm.Client
	if a.config.LLM.Enabled {
		llmClient = llm.NewClient(a.config.LLM.Endpoint, a.config.LLM.APIKey, a.config.LLM.Model)
		log.Printf("✅ LLM analysis ENABLED (Model: %s)", a.config.LLM.Model)
	} else {
		log.Println("ℹ️  LLM analysis DISABLED, using canned replies")
	}
	llmService := llm.NewService(llmClient, analysisCache)

	// 4. Trading core
	seed := a.config.Trading.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	builder := market.NewBuilder(seed)
	generator := sig.NewGenerator(builder, sig.NewRandomPolicy(seed))
	validator := validate.NewValidator(validate.NewRandomPolicy(seed), a.config.Trading.ApprovalThreshold)

	sizing := execute.SizingConfig{
		PipValuePerLot:   a.config.Trading.PipValuePerLot,
		LotCap:           a.config.Trading.MaxLotSize,
		CommissionPerLot: a.config.Trading.CommissionPerLot,
		SlippageBound:    a.config.Trading.SlippageBound,
		PipFactor:        a.config.Trading.PipFactor,
	}
	planner := execute.NewPlanner(sizing)
	simulator := execute.NewSimulator(sizing, seed)

	account := execute.AccountSnapshot{
		Balance:    a.config.Trading.AccountBalance,
		Equity:     a.config.Trading.AccountBalance,
		FreeMargin: a.config.Trading.AccountBalance * 0.85,
		Leverage:   100,
		Currency:   "USD",
	}
	risk := execute.RiskSettings{
		MaxRiskPerTrade: a.config.Trading.MaxRiskPerTrade,
		MaxDailyRisk:    a.config.Trading.MaxDailyRisk,
		MaxOpenTrades:   a.config.Trading.MaxOpenTrades,
		RiskRewardRatio: a.config.Trading.RiskRewardRatio,
	}

	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewTechnicalAnalyzer(generator, llmService),
		pipeline.NewSignalValidator(validator, llmService),
		pipeline.NewStrategyExecutor(planner, simulator, llmService),
		account,
		risk,
		time.Duration(a.config.Trading.StageTimeoutSeconds)*time.Second,
	)

	// 5. Auth service. Database-backed accounts when available, otherwise
	// the in-memory demo repository.
	var userRepo auth.UserRepository
	if a.db != nil {
		userRepo = database.NewUserRepository(a.db)
	} else {
		userRepo = auth.NewDemoRepository()
		log.Println("ℹ️  Using in-memory demo accounts (demo@trading.com)")
	}
	authService := auth.NewService(userRepo, a.config.JWTSecret)

	// 6. Realtime broker and chat hub
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	a.chatHub = chat.NewHub(llmService)
	go a.chatHub.Run()

	// 7. Outbound notifications
	notifier := notifications.NewNotifier(notificationEndpoints())

	// 8. API server
	apiServer := api.NewServer(api.Deps{
		Generator:     generator,
		Validator:     validator,
		Planner:       planner,
		Simulator:     simulator,
		Orchestrator:  orchestrator,
		LLMService:    llmService,
		AuthService:   authService,
		Repo:          a.repo,
		Analysis:      analysisCache,
		Broker:        a.broker,
		ChatHub:       a.chatHub,
		Notifier:      notifier,
		WebhookSecret: a.config.WebhookSecret,
		Account:       account,
		Risk:          risk,
		DedupWindow:   time.Duration(a.config.Trading.DedupWindowSeconds) * time.Second,
	})

	go func() {
		if err := apiServer.Start(a.config.ServerPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	return a.gracefulShutdown()
}

// notificationEndpoints parses NOTIFY_WEBHOOK_URLS, a comma-separated list
// of outbound targets.
func notificationEndpoints() []notifications.Endpoint {
	raw := os.Getenv("NOTIFY_WEBHOOK_URLS")
	if raw == "" {
		return nil
	}

	var endpoints []notifications.Endpoint
	for _, url := range strings.Split(raw, ",") {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		endpoints = append(endpoints, notifications.Endpoint{
			URL:     url,
			Retries: 3,
		})
	}
	return endpoints
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown() error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}

		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}

		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
