package recorder

import "time"

// EvaluationRecord holds the outcome of evaluating one instrument in one run.
type EvaluationRecord struct {
	Time      time.Time
	Symbol    string
	Mode      string
	Outcome   string
	Identity  string // empty when no signal fired
	Close     float64
	RSI       float64
	BBUpper   float64
	BBMid     float64
	BBLower   float64
	LongClose float64
	Error     string
}

// NotificationRecord holds a dispatched (or failed) notification.
type NotificationRecord struct {
	Time        time.Time
	Symbol      string
	Kind        string // "ALERT" or "DIGEST"
	Identity    string
	PositivePct float64
	NegativePct float64
	NeutralPct  float64
	Delivered   bool
	Error       string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
	RecordNotification(rec *NotificationRecord) error
	Close() error
}
