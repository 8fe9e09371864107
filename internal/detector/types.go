package detector

// Risk levels assigned to analyzed transactions.
const (
	RiskHigh    = "HIGH"
	RiskMedium  = "MEDIUM"
	RiskLow     = "LOW"
	RiskUnknown = "UNKNOWN"
	RiskError   = "ERROR"
)

// Probability thresholds for risk classification.
const (
	highRiskThreshold   = 0.7
	mediumRiskThreshold = 0.3
)

// Transaction is one prepared, scored row of the working table.
// Extra holds passthrough cells from columns outside the recognized schema.
type Transaction struct {
	ID           int
	Timestamp    string
	Amount       float64
	Type         string
	Location     string
	IsFraud      int
	Probability  float64
	TypeCode     int
	LocationCode int
	Extra        map[string]string
}

// TransactionView is the public JSON shape served for a single row.
type TransactionView struct {
	ID          int     `json:"id"`
	Timestamp   string  `json:"timestamp"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"transaction_type"`
	Location    string  `json:"location"`
	IsFraud     int     `json:"is_fraud"`
	Probability float64 `json:"fraud_probability"`
}

func (t Transaction) view() TransactionView {
	return TransactionView{
		ID:          t.ID,
		Timestamp:   t.Timestamp,
		Amount:      t.Amount,
		Type:        t.Type,
		Location:    t.Location,
		IsFraud:     t.IsFraud,
		Probability: t.Probability,
	}
}

// Stats summarizes the working table.
type Stats struct {
	TotalTransactions      int     `json:"total_transactions"`
	FraudulentTransactions int     `json:"fraudulent_transactions"`
	LegitimateTransactions int     `json:"legitimate_transactions"`
	FraudRate              float64 `json:"fraud_rate"`
}

// TransactionPage is one page of formatted rows.
type TransactionPage struct {
	Transactions []TransactionView `json:"transactions"`
	TotalPages   int               `json:"total_pages"`
}

// ChartData is the label/value series shape consumed by the dashboard charts.
type ChartData struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// HourlyPoint is one hour's fraud count for the time-analysis report.
type HourlyPoint struct {
	Hour    int `json:"hour"`
	IsFraud int `json:"is_fraud"`
}

// Result is the outcome of analyzing a single transaction. Error is set only
// for the untrained sentinel; degraded analysis is reported through RiskLevel.
type Result struct {
	Error          string  `json:"error,omitempty"`
	IsFraud        int     `json:"is_fraud"`
	Probability    float64 `json:"fraud_probability"`
	RiskLevel      string  `json:"risk_level"`
	Recommendation string  `json:"recommendation"`
}
