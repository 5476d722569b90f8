package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"ai-trading-system/execute"
	"ai-trading-system/pipeline"
	"ai-trading-system/signal"
)

// Repository persists signals, pipeline runs and orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository bound to the database.
func NewRepository(db *Database) *Repository {
	return &Repository{db: db.orm}
}

// InitSchema creates or migrates the tables the repository uses.
func (r *Repository) InitSchema() error {
	if err := r.db.AutoMigrate(
		&SignalRecord{},
		&PipelineRun{},
		&OrderRecord{},
		&UserRecord{},
	); err != nil {
		return fmt.Errorf("InitSchema: %w", err)
	}
	return nil
}

// SaveSignal stores a generated technical signal.
func (r *Repository) SaveSignal(sig *signal.TechnicalSignal) error {
	rec := SignalRecord{
		Symbol:      sig.Symbol,
		Direction:   sig.Direction,
		Confidence:  sig.Confidence,
		Entry:       sig.Entry,
		StopLoss:    sig.StopLoss,
		TakeProfit:  sig.TakeProfit,
		GeneratedAt: sig.Timestamp,
	}
	if err := r.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("SaveSignal: %w", err)
	}
	return nil
}

// SaveRun flattens one pipeline run into a row. Stages that never completed
// leave their columns at zero values.
func (r *Repository) SaveRun(run *pipeline.RunResult) error {
	rec := PipelineRun{
		SignalID:        run.OriginalSignal.ID,
		Symbol:          run.OriginalSignal.Symbol,
		Action:          run.OriginalSignal.Action,
		Price:           run.OriginalSignal.Price,
		Strategy:        run.OriginalSignal.Strategy,
		FinalStatus:     run.FinalStatus,
		ProcessingChain: strings.Join(run.ProcessingChain, ","),
		ReceivedAt:      run.OriginalSignal.ReceivedAt,
	}
	if run.Validation != nil && run.Validation.Result != nil {
		rec.ValidationScore = run.Validation.Score
		rec.Approved = run.Validation.Approved
		rec.RiskLevel = run.Validation.RiskLevel
	}
	if run.Execution != nil && run.Execution.ExecutionResult != nil {
		rec.OrderID = run.Execution.OrderID
		rec.LotSize = run.Execution.Volume
	}
	if err := r.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("SaveRun: %w", err)
	}
	return nil
}

// SaveOrder stores a simulated broker execution.
func (r *Repository) SaveOrder(res *execute.ExecutionResult) error {
	rec := OrderRecord{
		OrderID:    res.OrderID,
		Symbol:     res.Symbol,
		Action:     res.Action,
		Volume:     res.Volume,
		FillPrice:  res.FillPrice,
		StopLoss:   res.StopLoss,
		TakeProfit: res.TakeProfit,
		Commission: res.Commission,
		Status:     res.Status,
		ExecutedAt: res.OpenTime,
	}
	if err := r.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("SaveOrder: %w", err)
	}
	return nil
}

// GetRuns returns recent pipeline runs, newest first. Symbol and status
// filters are optional; limit caps the page size.
func (r *Repository) GetRuns(symbol, status string, limit int) ([]PipelineRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := r.db.Model(&PipelineRun{})
	if symbol != "" {
		query = query.Where("symbol = ?", strings.ToUpper(symbol))
	}
	if status != "" {
		query = query.Where("final_status = ?", strings.ToUpper(status))
	}

	var runs []PipelineRun
	if err := query.Order("received_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("GetRuns: %w", err)
	}
	return runs, nil
}

// GetSignals returns recent technical signals, newest first.
func (r *Repository) GetSignals(symbol string, limit int) ([]SignalRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := r.db.Model(&SignalRecord{})
	if symbol != "" {
		query = query.Where("symbol = ?", strings.ToUpper(symbol))
	}

	var signals []SignalRecord
	if err := query.Order("generated_at DESC").Limit(limit).Find(&signals).Error; err != nil {
		return nil, fmt.Errorf("GetSignals: %w", err)
	}
	return signals, nil
}

// RunStats summarizes run counts by final status since a cutoff.
type RunStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	Since    time.Time        `json:"since"`
}

// GetRunStats aggregates run counts for the trailing window.
func (r *Repository) GetRunStats(window time.Duration) (*RunStats, error) {
	since := time.Now().Add(-window)
	stats := &RunStats{ByStatus: make(map[string]int64), Since: since}

	rows := []struct {
		FinalStatus string
		Count       int64
	}{}
	err := r.db.Model(&PipelineRun{}).
		Select("final_status, COUNT(*) as count").
		Where("received_at >= ?", since).
		Group("final_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("GetRunStats: %w", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.FinalStatus] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}
