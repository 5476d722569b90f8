package validate

import (
	"errors"
	"time"

	"ai-trading-system/signal"
)

// ErrMissingSignalData is returned when validation is requested without a signal.
var ErrMissingSignalData = errors.New("signal data is required for validation")

// Risk level bands over the validation score. The approval threshold is
// configurable; the banding cutoffs are part of the scoring contract and fixed.
const (
	RiskLow    = "LOW"    // score >= 85
	RiskMedium = "MEDIUM" // 70 <= score < 85
	RiskHigh   = "HIGH"   // score < 70

	DefaultApprovalThreshold = 75
	lowBandCutoff            = 85
	mediumBandCutoff         = 70
)

// MarketConditions categorizes the market environment a signal was scored in.
type MarketConditions struct {
	Volatility string `json:"volatility"` // HIGH or NORMAL
	Trend      string `json:"trend"`      // BULLISH or BEARISH
	Volume     string `json:"volume"`     // ABOVE_AVERAGE or NORMAL
	NewsImpact string `json:"newsImpact"` // HIGH or LOW
}

// Result is the outcome of scoring one signal. Created once, never mutated.
//
// Invariant: Approved is true if and only if Score >= the validator threshold.
type Result struct {
	OriginalSignal  *signal.TechnicalSignal `json:"originalSignal"`
	Conditions      MarketConditions        `json:"marketConditions"`
	Score           int                     `json:"confidence"` // 0-100
	Approved        bool                    `json:"approved"`
	RiskLevel       string                  `json:"riskLevel"`
	Recommendations []string                `json:"recommendations"`
	NextStep        string                  `json:"nextStep"`
	Timestamp       time.Time               `json:"timestamp"`
}

// Validator scores signals against market-condition heuristics and approves
// them against a fixed threshold. Pure: it never calls back into the
// generator and keeps no cross-call state.
type Validator struct {
	policy    Policy
	threshold int
}

// NewValidator creates a validator with the given scoring policy and
// approval threshold. A threshold <= 0 falls back to the default of 75.
func NewValidator(policy Policy, threshold int) *Validator {
	if threshold <= 0 {
		threshold = DefaultApprovalThreshold
	}
	return &Validator{policy: policy, threshold: threshold}
}

// Validate scores the signal and produces a Result.
func (v *Validator) Validate(sig *signal.TechnicalSignal) (*Result, error) {
	if sig == nil {
		return nil, ErrMissingSignalData
	}

	score, conditions := v.policy.Score(sig)
	approved := score >= v.threshold

	return &Result{
		OriginalSignal:  sig,
		Conditions:      conditions,
		Score:           score,
		Approved:        approved,
		RiskLevel:       RiskLevelFor(score),
		Recommendations: recommendations(approved),
		NextStep:        nextStep(approved),
		Timestamp:       time.Now().UTC(),
	}, nil
}

// RiskLevelFor maps a validation score onto the fixed risk bands.
func RiskLevelFor(score int) string {
	switch {
	case score >= lowBandCutoff:
		return RiskLow
	case score >= mediumBandCutoff:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func recommendations(approved bool) []string {
	if approved {
		return []string{
			"Signal approved for execution",
			"Risk/reward ratio acceptable",
			"Market conditions favorable",
		}
	}
	return []string{
		"Signal requires additional confirmation",
		"Consider reducing position size",
		"Monitor market conditions closely",
	}
}

func nextStep(approved bool) string {
	if approved {
		return "Forward to AI 3 - Strategy Executor"
	}
	return "Request additional analysis"
}
