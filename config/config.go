package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	WebhookSecret string
	JWTSecret     string

	// Database configuration
	DatabaseHost     string
	DatabasePort     int
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// LLM configuration
	LLM LLMConfig

	// Trading configuration
	Trading TradingConfig
}

// LLMConfig holds LLM service configuration
type LLMConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Model    string
}

// TradingConfig holds trading parameters and thresholds
type TradingConfig struct {
	// Validation
	ApprovalThreshold int

	// Risk Management
	AccountBalance  float64
	MaxRiskPerTrade float64 // Percent
	MaxDailyRisk    float64 // Percent
	MaxOpenTrades   int
	RiskRewardRatio float64

	// Execution
	PipValuePerLot   float64
	MaxLotSize       float64
	CommissionPerLot float64
	SlippageBound    float64
	PipFactor        float64 // 10000 for 4-decimal pairs, 100 for JPY pairs

	// Pipeline
	StageTimeoutSeconds int
	DedupWindowSeconds  int

	// Randomness seed, 0 means time-based
	Seed int64
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		ServerPort: getEnvOrDefault("PORT", "8080"),

		WebhookSecret: getEnvOrDefault("TRADINGVIEW_WEBHOOK_SECRET", "demo-webhook-secret"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", "demo-jwt-secret-change-me"),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvInt("DB_PORT", 5432),
		DatabaseName:     getEnvOrDefault("DB_NAME", "ai_trading"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "trading"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "trading123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// LLM configuration
		LLM: LLMConfig{
			Enabled:  getEnvOrDefault("LLM_ENABLED", "false") == "true",
			Endpoint: getEnvOrDefault("LLM_ENDPOINT", "https://openrouter.ai/api/v1"),
			APIKey:   getEnvOrDefault("LLM_API_KEY", ""),
			Model:    getEnvOrDefault("LLM_MODEL", "openai/gpt-4o-mini"),
		},

		// Trading configuration
		Trading: TradingConfig{
			ApprovalThreshold: getEnvInt("TRADING_APPROVAL_THRESHOLD", 75),

			AccountBalance:  getEnvFloat("TRADING_ACCOUNT_BALANCE", 10000),
			MaxRiskPerTrade: getEnvFloat("TRADING_MAX_RISK_PER_TRADE", 2.0),
			MaxDailyRisk:    getEnvFloat("TRADING_MAX_DAILY_RISK", 6.0),
			MaxOpenTrades:   getEnvInt("TRADING_MAX_OPEN_TRADES", 5),
			RiskRewardRatio: getEnvFloat("TRADING_RISK_REWARD_RATIO", 2.5),

			PipValuePerLot:   getEnvFloat("TRADING_PIP_VALUE_PER_LOT", 10.0),
			MaxLotSize:       getEnvFloat("TRADING_MAX_LOT_SIZE", 1.0),
			CommissionPerLot: getEnvFloat("TRADING_COMMISSION_PER_LOT", 7.0),
			SlippageBound:    getEnvFloat("TRADING_SLIPPAGE_BOUND", 0.00005),
			PipFactor:        getEnvFloat("TRADING_PIP_FACTOR", 10000),

			StageTimeoutSeconds: getEnvInt("TRADING_STAGE_TIMEOUT", 3),
			DedupWindowSeconds:  getEnvInt("TRADING_DEDUP_WINDOW", 0),

			Seed: int64(getEnvInt("TRADING_SEED", 0)),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
