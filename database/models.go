package database

import "time"

// SignalRecord stores a generated technical signal.
type SignalRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"size:20;index" json:"symbol"`
	Direction   string    `gorm:"size:4" json:"direction"`
	Confidence  int       `json:"confidence"`
	Entry       float64   `json:"entry"`
	StopLoss    float64   `json:"stop_loss"`
	TakeProfit  float64   `json:"take_profit"`
	GeneratedAt time.Time `gorm:"index" json:"generated_at"`
}

func (SignalRecord) TableName() string {
	return "technical_signals"
}

// PipelineRun stores the outcome of one webhook-triggered pipeline run.
type PipelineRun struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SignalID        string    `gorm:"size:64;index" json:"signal_id"`
	Symbol          string    `gorm:"size:20;index" json:"symbol"`
	Action          string    `gorm:"size:4" json:"action"`
	Price           float64   `json:"price"`
	Strategy        string    `gorm:"size:100" json:"strategy"`
	FinalStatus     string    `gorm:"size:20;index" json:"final_status"`
	ProcessingChain string    `gorm:"size:200" json:"processing_chain"`
	ValidationScore int       `json:"validation_score"`
	Approved        bool      `json:"approved"`
	RiskLevel       string    `gorm:"size:10" json:"risk_level"`
	OrderID         string    `gorm:"size:64" json:"order_id"`
	LotSize         float64   `json:"lot_size"`
	ReceivedAt      time.Time `gorm:"index" json:"received_at"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// OrderRecord stores a simulated broker order.
type OrderRecord struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    string    `gorm:"size:64;uniqueIndex" json:"order_id"`
	Symbol     string    `gorm:"size:20;index" json:"symbol"`
	Action     string    `gorm:"size:8" json:"action"`
	Volume     float64   `json:"volume"`
	FillPrice  float64   `json:"fill_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Commission float64   `json:"commission"`
	Status     string    `gorm:"size:10" json:"status"`
	ExecutedAt time.Time `gorm:"index" json:"executed_at"`
}

func (OrderRecord) TableName() string {
	return "orders"
}

// UserRecord stores a registered user account.
type UserRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex" json:"email"`
	Phone        string    `gorm:"size:30" json:"phone"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (UserRecord) TableName() string {
	return "users"
}
