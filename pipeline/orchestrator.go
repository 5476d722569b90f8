package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-trading-system/execute"
	"ai-trading-system/signal"
)

// Final pipeline statuses.
const (
	StatusExecuted       = "EXECUTED"
	StatusRejected       = "REJECTED"
	StatusValidationOnly = "VALIDATION_ONLY"
	StatusReceived       = "RECEIVED"
)

// Processing-chain stage labels, appended only when a stage completes.
const (
	stageSource    = "TradingView"
	stageTechnical = "AI 1"
	stageValidator = "AI 2"
	stageExecutor  = "AI 3"
)

// InboundIndicators are the optional indicator fields a charting alert may
// carry. Absent fields contribute nothing to the confidence pre-score.
type InboundIndicators struct {
	RSI        *float64 `json:"rsi,omitempty"`
	MACDSignal string   `json:"macd_signal,omitempty"`
	MATrend    string   `json:"ma_trend,omitempty"`
}

// InboundSignal is the normalized external signal a webhook delivers.
type InboundSignal struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	Symbol     string            `json:"symbol"`
	Action     string            `json:"action"`
	Price      float64           `json:"price"`
	StopLoss   float64           `json:"stopLoss,omitempty"`
	TakeProfit float64           `json:"takeProfit,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Strategy   string            `json:"strategy"`
	Indicators InboundIndicators `json:"indicators"`
	Confidence int               `json:"confidence"`
	ReceivedAt time.Time         `json:"receivedAt"`
}

// RunResult aggregates one pipeline run. ProcessingChain lists exactly the
// stages that completed; FinalStatus reflects the last completed stage.
type RunResult struct {
	OriginalSignal  *InboundSignal     `json:"originalSignal"`
	Technical       *TechnicalResult   `json:"technicalAnalysis,omitempty"`
	Validation      *ValidationOutcome `json:"validation,omitempty"`
	Execution       *ExecutionOutcome  `json:"execution,omitempty"`
	ProcessingChain []string           `json:"processingChain"`
	FinalStatus     string             `json:"finalStatus"`
}

// Orchestrator drives the technical → validation → execution chain as an
// in-process sequence. Downstream failures are logged and degrade the
// response; they are never surfaced to the caller as request errors.
type Orchestrator struct {
	technical    TechnicalStage
	validation   ValidationStage
	execution    ExecutionStage
	account      execute.AccountSnapshot
	risk         execute.RiskSettings
	stageTimeout time.Duration
}

// NewOrchestrator wires the three stages with the account and risk defaults
// applied to executions. A non-positive timeout disables per-stage deadlines.
func NewOrchestrator(technical TechnicalStage, validation ValidationStage, execution ExecutionStage, account execute.AccountSnapshot, risk execute.RiskSettings, stageTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		technical:    technical,
		validation:   validation,
		execution:    execution,
		account:      account,
		risk:         risk,
		stageTimeout: stageTimeout,
	}
}

// NewInboundSignal normalizes a webhook payload into an InboundSignal,
// deriving the confidence pre-score and, when the payload carries no
// explicit levels, the default stop-loss/take-profit offsets.
func NewInboundSignal(symbol, action string, price, stopLoss, takeProfit float64, ts time.Time, strategy string, indicators InboundIndicators) *InboundSignal {
	if strategy == "" {
		strategy = "Unknown Strategy"
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	action = strings.ToUpper(action)

	sl, tp := stopLoss, takeProfit
	if sl == 0 || tp == 0 {
		defaultSL, defaultTP := signal.ExitLevels(action, price)
		if sl == 0 {
			sl = defaultSL
		}
		if tp == 0 {
			tp = defaultTP
		}
	}

	return &InboundSignal{
		ID:         "TV_" + uuid.NewString(),
		Source:     "TradingView",
		Symbol:     strings.ToUpper(symbol),
		Action:     action,
		Price:      price,
		StopLoss:   sl,
		TakeProfit: tp,
		Timestamp:  ts,
		Strategy:   strategy,
		Indicators: indicators,
		Confidence: PreScore(indicators),
		ReceivedAt: time.Now().UTC(),
	}
}

// PreScore derives a 30-95 confidence estimate from whichever indicator
// fields are present. No fields yields the neutral 50.
func PreScore(ind InboundIndicators) int {
	score, count := 0.0, 0

	if ind.RSI != nil {
		rsi := *ind.RSI
		if rsi > 70 || rsi < 30 {
			score += 20
		} else if rsi > 60 || rsi < 40 {
			score += 10
		}
		count++
	}
	if ind.MACDSignal == signal.DirectionBuy || ind.MACDSignal == signal.DirectionSell {
		score += 25
		count++
	} else if ind.MACDSignal != "" {
		count++
	}
	if ind.MATrend == "BULLISH" || ind.MATrend == "BEARISH" {
		score += 15
		count++
	} else if ind.MATrend != "" {
		count++
	}

	if count == 0 {
		return 50
	}
	confidence := score / float64(count) * 2
	if confidence < 30 {
		confidence = 30
	}
	if confidence > 95 {
		confidence = 95
	}
	return int(confidence)
}

// Run drives the pipeline for one inbound signal. It always returns a
// result; the caller reports HTTP success regardless of how far the chain
// progressed.
func (o *Orchestrator) Run(ctx context.Context, inbound *InboundSignal) *RunResult {
	result := &RunResult{
		OriginalSignal:  inbound,
		ProcessingChain: []string{stageSource},
		FinalStatus:     StatusReceived,
	}

	technical, err := o.runTechnical(ctx, inbound)
	if err != nil {
		log.Printf("⚠️  Technical stage failed for %s: %v", inbound.Symbol, err)
		return result
	}
	result.Technical = technical
	result.ProcessingChain = append(result.ProcessingChain, stageTechnical)

	validation, err := o.runValidation(ctx, technical.Technical)
	if err != nil {
		log.Printf("⚠️  Validation stage failed for %s: %v", inbound.Symbol, err)
		return result
	}
	result.Validation = validation
	result.ProcessingChain = append(result.ProcessingChain, stageValidator)

	if !validation.Approved {
		result.FinalStatus = StatusRejected
		return result
	}

	execution, err := o.runExecution(ctx, technical.Technical)
	if err != nil {
		log.Printf("⚠️  Execution stage failed for %s: %v", inbound.Symbol, err)
		result.FinalStatus = StatusValidationOnly
		return result
	}
	result.Execution = execution
	result.ProcessingChain = append(result.ProcessingChain, stageExecutor)
	result.FinalStatus = StatusExecuted

	return result
}

func (o *Orchestrator) runTechnical(ctx context.Context, inbound *InboundSignal) (*TechnicalResult, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()

	type outcome struct {
		result *TechnicalResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := o.technical.Analyze(ctx, inbound.Symbol, "1H")
		done <- outcome{r, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (o *Orchestrator) runValidation(ctx context.Context, sig *signal.TechnicalSignal) (*ValidationOutcome, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()

	type outcome struct {
		result *ValidationOutcome
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := o.validation.Validate(ctx, sig)
		done <- outcome{r, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (o *Orchestrator) runExecution(ctx context.Context, sig *signal.TechnicalSignal) (*ExecutionOutcome, error) {
	ctx, cancel := o.stageContext(ctx)
	defer cancel()

	type outcome struct {
		result *ExecutionOutcome
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := o.execution.Execute(ctx, sig, o.account, o.risk)
		done <- outcome{r, err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.stageTimeout)
}
