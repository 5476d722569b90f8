package pipeline

import (
	"context"
	"log"
	"time"

	"ai-trading-system/execute"
	"ai-trading-system/market"
	"ai-trading-system/signal"
	"ai-trading-system/validate"
)

// AI layer labels attached to stage outputs.
const (
	LayerTechnical = "AI 1 - Technical Analysis"
	LayerValidator = "AI 2 - Signal Validator"
	LayerExecutor  = "AI 3 - Strategy Executor"
)

// Advisor is the AI chat collaborator consulted by each stage for its
// narrative analysis. Implementations must degrade to canned text when no
// model is configured; stage logic never depends on the reply content.
type Advisor interface {
	TechnicalAnalysis(ctx context.Context, marketData interface{}) (string, error)
	ValidateSignal(ctx context.Context, signalData interface{}) (string, error)
	ExecuteStrategy(ctx context.Context, executionData interface{}) (string, error)
}

// TechnicalResult is the AI 1 stage output.
type TechnicalResult struct {
	Symbol     string                    `json:"symbol"`
	Analysis   string                    `json:"analysis"`
	Confidence int                       `json:"confidence"`
	Signal     string                    `json:"signal"`
	Entry      float64                   `json:"entry"`
	StopLoss   float64                   `json:"stopLoss"`
	TakeProfit float64                   `json:"takeProfit"`
	Indicators *market.IndicatorSnapshot `json:"indicators"`
	Timestamp  time.Time                 `json:"timestamp"`
	AILayer    string                    `json:"aiLayer"`

	// Technical carries the full signal forward to the next stage.
	Technical *signal.TechnicalSignal `json:"-"`
}

// ValidationOutcome is the AI 2 stage output.
type ValidationOutcome struct {
	*validate.Result
	Validation string `json:"validation"`
	AILayer    string `json:"aiLayer"`
}

// RiskManagement summarizes the sizing decision attached to an execution.
type RiskManagement struct {
	RiskAmount      float64 `json:"riskAmount"`
	RiskPercentage  float64 `json:"riskPercentage"`
	StopLossPips    float64 `json:"stopLossPips"`
	TakeProfitPips  float64 `json:"takeProfitPips"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`
}

// ExecutionOutcome is the AI 3 stage output.
type ExecutionOutcome struct {
	*execute.ExecutionResult
	RiskManagement RiskManagement `json:"riskManagement"`
	AIAnalysis     string         `json:"aiAnalysis,omitempty"`
	AILayer        string         `json:"aiLayer"`
}

// TechnicalStage produces a technical analysis for a symbol.
type TechnicalStage interface {
	Analyze(ctx context.Context, symbol, timeframe string) (*TechnicalResult, error)
}

// ValidationStage scores a technical signal.
type ValidationStage interface {
	Validate(ctx context.Context, sig *signal.TechnicalSignal) (*ValidationOutcome, error)
}

// ExecutionStage sizes and executes an approved signal.
type ExecutionStage interface {
	Execute(ctx context.Context, sig *signal.TechnicalSignal, account execute.AccountSnapshot, risk execute.RiskSettings) (*ExecutionOutcome, error)
}

// TechnicalAnalyzer wraps the signal generator with the AI narrative layer.
type TechnicalAnalyzer struct {
	generator *signal.Generator
	advisor   Advisor
}

// NewTechnicalAnalyzer creates the AI 1 stage.
func NewTechnicalAnalyzer(generator *signal.Generator, advisor Advisor) *TechnicalAnalyzer {
	return &TechnicalAnalyzer{generator: generator, advisor: advisor}
}

// Analyze generates a signal and attaches the advisor's narrative.
func (a *TechnicalAnalyzer) Analyze(ctx context.Context, symbol, timeframe string) (*TechnicalResult, error) {
	sig, err := a.generator.Generate(symbol, timeframe)
	if err != nil {
		return nil, err
	}

	analysis := a.narrative(ctx, sig)

	return &TechnicalResult{
		Symbol:     sig.Symbol,
		Analysis:   analysis,
		Confidence: sig.Confidence,
		Signal:     sig.Direction,
		Entry:      sig.Entry,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Indicators: sig.Snapshot,
		Timestamp:  sig.Timestamp,
		AILayer:    LayerTechnical,
		Technical:  sig,
	}, nil
}

func (a *TechnicalAnalyzer) narrative(ctx context.Context, sig *signal.TechnicalSignal) string {
	if a.advisor == nil {
		return ""
	}
	text, err := a.advisor.TechnicalAnalysis(ctx, sig.Snapshot)
	if err != nil {
		log.Printf("⚠️  Technical narrative unavailable: %v", err)
		return ""
	}
	return text
}

// SignalValidator wraps the core validator with the AI narrative layer.
type SignalValidator struct {
	validator *validate.Validator
	advisor   Advisor
}

// NewSignalValidator creates the AI 2 stage.
func NewSignalValidator(validator *validate.Validator, advisor Advisor) *SignalValidator {
	return &SignalValidator{validator: validator, advisor: advisor}
}

// Validate scores the signal and attaches the advisor's narrative.
func (v *SignalValidator) Validate(ctx context.Context, sig *signal.TechnicalSignal) (*ValidationOutcome, error) {
	result, err := v.validator.Validate(sig)
	if err != nil {
		return nil, err
	}

	var narrative string
	if v.advisor != nil {
		text, advErr := v.advisor.ValidateSignal(ctx, sig)
		if advErr != nil {
			log.Printf("⚠️  Validation narrative unavailable: %v", advErr)
		} else {
			narrative = text
		}
	}

	return &ValidationOutcome{
		Result:     result,
		Validation: narrative,
		AILayer:    LayerValidator,
	}, nil
}

// StrategyExecutor wraps the planner and broker simulator as the AI 3 stage.
type StrategyExecutor struct {
	planner   *execute.Planner
	simulator *execute.Simulator
	advisor   Advisor
}

// NewStrategyExecutor creates the AI 3 stage.
func NewStrategyExecutor(planner *execute.Planner, simulator *execute.Simulator, advisor Advisor) *StrategyExecutor {
	return &StrategyExecutor{planner: planner, simulator: simulator, advisor: advisor}
}

// Execute sizes the position and simulates the broker order. Domain-rule
// violations from the simulator surface as errors; nothing is recorded for
// a rejected order.
func (e *StrategyExecutor) Execute(ctx context.Context, sig *signal.TechnicalSignal, account execute.AccountSnapshot, risk execute.RiskSettings) (*ExecutionOutcome, error) {
	plan := e.planner.BuildPlan(sig, account, risk)

	result, err := e.simulator.Execute(execute.OrderRequest{
		Symbol:     sig.Symbol,
		Action:     sig.Direction,
		Volume:     plan.LotSize,
		Price:      sig.Entry,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Comment:    "AI Trading System v1.0",
	})
	if err != nil {
		return nil, err
	}

	var narrative string
	if e.advisor != nil {
		text, advErr := e.advisor.ExecuteStrategy(ctx, plan)
		if advErr != nil {
			log.Printf("⚠️  Execution narrative unavailable: %v", advErr)
		} else {
			narrative = text
		}
	}

	return &ExecutionOutcome{
		ExecutionResult: result,
		RiskManagement: RiskManagement{
			RiskAmount:      plan.RiskAmount,
			RiskPercentage:  risk.MaxRiskPerTrade,
			StopLossPips:    plan.StopLossPips,
			TakeProfitPips:  plan.TakeProfitPips,
			RiskRewardRatio: risk.RiskRewardRatio,
		},
		AIAnalysis: narrative,
		AILayer:    LayerExecutor,
	}, nil
}
