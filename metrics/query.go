package metrics

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ShamanBV/shaman-assistant/common/logger"
)

// QueryMetrics records one question's trip through the pipeline. It is
// logged as a single JSON line for offline analysis.
type QueryMetrics struct {
	QueryID   string    `json:"query_id"`
	Question  string    `json:"question"`
	Timestamp time.Time `json:"timestamp"`

	CacheHit bool `json:"cache_hit"`

	Intent           string  `json:"intent,omitempty"`
	IntentConfidence float64 `json:"intent_confidence,omitempty"`
	Route            string  `json:"route,omitempty"`

	ClassifyLatencyMs int64 `json:"classify_latency_ms,omitempty"`
	QueryVariants     int   `json:"query_variants,omitempty"`
	RetrieveLatencyMs int64 `json:"retrieve_latency_ms,omitempty"`
	ResultCount       int   `json:"result_count"`
	GenerateLatencyMs int64 `json:"generate_latency_ms,omitempty"`

	TotalLatencyMs int64  `json:"total_latency_ms"`
	Success        bool   `json:"success"`
	ErrorMsg       string `json:"error_msg,omitempty"`

	start time.Time
}

// NewQueryMetrics starts a record for one question.
func NewQueryMetrics(question string) *QueryMetrics {
	now := time.Now()
	return &QueryMetrics{
		QueryID:   uuid.NewString(),
		Question:  question,
		Timestamp: now,
		start:     now,
	}
}

// Finish stamps the total latency and outcome.
func (m *QueryMetrics) Finish(err error) {
	m.TotalLatencyMs = time.Since(m.start).Milliseconds()
	m.Success = err == nil
	if err != nil {
		m.ErrorMsg = err.Error()
	}
}

// LogJSON writes the record as one structured log line.
func (m *QueryMetrics) LogJSON() {
	if data, err := json.Marshal(m); err == nil {
		logger.Infof("[QUERY_METRICS] %s", string(data))
	}
}
