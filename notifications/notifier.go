package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"ai-trading-system/helpers"
	"ai-trading-system/pipeline"
)

// Endpoint is one outbound notification target.
type Endpoint struct {
	URL        string
	AuthHeader string
	AuthValue  string
	Retries    int
	RetryDelay time.Duration
}

// Notifier pushes pipeline outcomes to external webhooks. Delivery is
// fire-and-forget; failures are logged and never reach the pipeline.
type Notifier struct {
	endpoints []Endpoint
	client    *http.Client
}

// Payload is the JSON body sent to each endpoint.
type Payload struct {
	Event       string    `json:"event"`
	SignalID    string    `json:"signalId"`
	Symbol      string    `json:"symbol"`
	Action      string    `json:"action"`
	FinalStatus string    `json:"finalStatus"`
	OrderID     string    `json:"orderId,omitempty"`
	LotSize     float64   `json:"lotSize,omitempty"`
	FillPrice   float64   `json:"fillPrice,omitempty"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewNotifier creates a notifier for the given endpoints.
func NewNotifier(endpoints []Endpoint) *Notifier {
	return &Notifier{
		endpoints: endpoints,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyRun sends a notification for a completed pipeline run. Runs that
// never reached execution are skipped.
func (n *Notifier) NotifyRun(run *pipeline.RunResult) {
	if n == nil || len(n.endpoints) == 0 {
		return
	}
	if run.FinalStatus != pipeline.StatusExecuted {
		return
	}

	exec := run.Execution
	payload := Payload{
		Event:       "trade.executed",
		SignalID:    run.OriginalSignal.ID,
		Symbol:      run.OriginalSignal.Symbol,
		Action:      run.OriginalSignal.Action,
		FinalStatus: run.FinalStatus,
		OrderID:     exec.OrderID,
		LotSize:     exec.Volume,
		FillPrice:   exec.FillPrice,
		Message: fmt.Sprintf("🚀 TRADE EXECUTED! %s %s | %.2f lots @ %.5f | Risk: %s | SL: %s",
			run.OriginalSignal.Symbol,
			run.OriginalSignal.Action,
			exec.Volume,
			exec.FillPrice,
			helpers.FormatMoney(exec.RiskManagement.RiskAmount),
			helpers.FormatPips(exec.RiskManagement.StopLossPips),
		),
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal notification payload: %v", err)
		return
	}

	for _, ep := range n.endpoints {
		go n.deliver(ep, body)
	}
}

func (n *Notifier) deliver(ep Endpoint, body []byte) {
	maxRetries := ep.Retries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	delay := ep.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequest(http.MethodPost, ep.URL, bytes.NewBuffer(body))
		if err != nil {
			log.Printf("⚠️  Invalid notification endpoint %s: %v", ep.URL, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "AI-Trading-System/1.0")
		if ep.AuthHeader != "" {
			req.Header.Set(ep.AuthHeader, ep.AuthValue)
		}

		resp, err := n.client.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}

		log.Printf("🔹 Notification to %s failed (attempt %d/%d)", ep.URL, attempt, maxRetries)
		if attempt < maxRetries {
			time.Sleep(delay)
		}
	}
}
