package config

import "testing"

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("TRADING_PIP_FACTOR", "")
	t.Setenv("TRADING_APPROVAL_THRESHOLD", "")
	t.Setenv("TRADING_MAX_LOT_SIZE", "")

	cfg := LoadFromEnv()
	if cfg.Trading.PipFactor != 10000 {
		t.Errorf("pip factor default: got %v, want 10000", cfg.Trading.PipFactor)
	}
	if cfg.Trading.ApprovalThreshold != 75 {
		t.Errorf("approval threshold default: got %d, want 75", cfg.Trading.ApprovalThreshold)
	}
	if cfg.Trading.MaxLotSize != 1.0 {
		t.Errorf("max lot size default: got %v, want 1.0", cfg.Trading.MaxLotSize)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("TRADING_PIP_FACTOR", "100")
	t.Setenv("TRADING_APPROVAL_THRESHOLD", "60")
	t.Setenv("TRADING_SEED", "42")

	cfg := LoadFromEnv()
	if cfg.Trading.PipFactor != 100 {
		t.Errorf("pip factor: got %v, want 100", cfg.Trading.PipFactor)
	}
	if cfg.Trading.ApprovalThreshold != 60 {
		t.Errorf("approval threshold: got %d, want 60", cfg.Trading.ApprovalThreshold)
	}
	if cfg.Trading.Seed != 42 {
		t.Errorf("seed: got %d, want 42", cfg.Trading.Seed)
	}
}

func TestEnvHelpersIgnoreMalformedValues(t *testing.T) {
	t.Setenv("TRADING_APPROVAL_THRESHOLD", "not-a-number")
	t.Setenv("TRADING_PIP_FACTOR", "abc")

	cfg := LoadFromEnv()
	if cfg.Trading.ApprovalThreshold != 75 {
		t.Errorf("malformed int should fall back to default, got %d", cfg.Trading.ApprovalThreshold)
	}
	if cfg.Trading.PipFactor != 10000 {
		t.Errorf("malformed float should fall back to default, got %v", cfg.Trading.PipFactor)
	}
}
