// Package history records the outcome of every analyzed transaction so the
// dashboard can show recent activity and operators keep an audit trail.
//
// Only real classifications are recorded; the untrained and degraded
// sentinels never reach a store.
package history

import (
	"context"
	"time"
)

// DefaultRecentLimit is how many assessments the history feed returns when
// the caller does not ask for a specific amount.
const DefaultRecentLimit = 50

// Assessment is one stored analyze result.
type Assessment struct {
	ID             string    `json:"id"`
	Amount         float64   `json:"amount"`
	Type           string    `json:"transaction_type"`
	Location       string    `json:"location"`
	IsFraud        int       `json:"is_fraud"`
	Probability    float64   `json:"fraud_probability"`
	RiskLevel      string    `json:"risk_level"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists assessments.
type Store interface {
	Save(ctx context.Context, a *Assessment) error
	Recent(ctx context.Context, limit int) ([]*Assessment, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
