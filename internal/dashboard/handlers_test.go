package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mbd888/fraudlens/internal/dataset"
	"github.com/mbd888/fraudlens/internal/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixtureTable holds five transactions with three fraud rows: two transfers
// in Chicago, one withdrawal in Miami, at hours 8, 14, and 20.
func fixtureTable() *dataset.Table {
	t := dataset.NewTable("transaction_id", "timestamp", "amount", "transaction_type", "location", "is_fraud")
	rows := [][]string{
		{"1", "2024-01-01 08:00:00", "50", "purchase", "New York", "0"},
		{"2", "2024-01-01 08:30:00", "700", "transfer", "Chicago", "1"},
		{"3", "2024-01-02 14:00:00", "120", "payment", "Boston", "0"},
		{"4", "2024-01-02 14:15:00", "2500", "transfer", "Chicago", "1"},
		{"5", "2024-01-03 20:00:00", "4000", "withdrawal", "Miami", "1"},
	}
	for _, row := range rows {
		rec := make(dataset.Record, len(t.Columns))
		for i, col := range t.Columns {
			rec[col] = row[i]
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

// newTestRouter wires a trained detector behind the dashboard routes.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	det := detector.New()
	require.NoError(t, det.Train(context.Background(), fixtureTable()))

	r := gin.New()
	NewHandler(det).RegisterRoutes(r.Group("/api"))
	return r
}

func getJSON(t *testing.T, r *gin.Engine, method, path string) (int, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

// --- Chart endpoints ---

func TestChartEndpoints(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		path   string
		labels []any
		data   []any
	}{
		{"/api/chart/fraud-distribution", []any{"Legitimate", "Fraudulent"}, []any{2.0, 3.0}},
		{"/api/chart/amount-distribution", []any{"0-100", "100-500", "500-1k", "1k-3k", "3k-5k"}, []any{1.0, 1.0, 1.0, 1.0, 1.0}},
		{"/api/chart/transaction-type", []any{"Transfer", "Withdrawal"}, []any{2.0, 1.0}},
		{"/api/chart/location-risk", []any{"Chicago", "Miami"}, []any{2.0, 1.0}},
	}

	for _, tt := range tests {
		code, body := getJSON(t, r, "GET", tt.path)
		assert.Equal(t, http.StatusOK, code, tt.path)
		assert.Equal(t, tt.labels, body["labels"], tt.path)
		assert.Equal(t, tt.data, body["data"], tt.path)
	}
}

func TestChartEndpoints_UntrainedDetector(t *testing.T) {
	r := gin.New()
	NewHandler(detector.New()).RegisterRoutes(r.Group("/api"))

	paths := []string{
		"/api/chart/fraud-distribution",
		"/api/chart/amount-distribution",
		"/api/chart/transaction-type",
		"/api/chart/location-risk",
	}
	for _, path := range paths {
		code, _ := getJSON(t, r, "GET", path)
		assert.Equal(t, http.StatusOK, code, path)
	}
}

// --- Report endpoints ---

func TestSummaryReport(t *testing.T) {
	r := newTestRouter(t)

	code, body := getJSON(t, r, "POST", "/api/report/summary")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "summary", body["report_type"])

	stats := body["statistics"].(map[string]any)
	assert.Equal(t, 5.0, stats["total_transactions"])
	assert.Equal(t, 3.0, stats["fraudulent_transactions"])
	assert.Equal(t, 60.0, stats["fraud_rate"])

	dist := body["fraud_distribution"].(map[string]any)
	assert.Equal(t, []any{"Legitimate", "Fraudulent"}, dist["labels"])
}

func TestGeographicReport(t *testing.T) {
	r := newTestRouter(t)

	code, body := getJSON(t, r, "POST", "/api/report/geographic")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "geographic", body["report_type"])
	assert.Empty(t, body["location_details"])

	risk := body["location_risk"].(map[string]any)
	assert.Equal(t, []any{"Chicago", "Miami"}, risk["labels"])
}

func TestTimeAnalysisReport(t *testing.T) {
	r := newTestRouter(t)

	code, body := getJSON(t, r, "POST", "/api/report/time-analysis")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "time_analysis", body["report_type"])

	hours := body["hourly_data"].([]any)
	require.Len(t, hours, 24)

	counts := make(map[float64]float64, 24)
	for _, h := range hours {
		point := h.(map[string]any)
		counts[point["hour"].(float64)] = point["is_fraud"].(float64)
	}
	assert.Equal(t, 1.0, counts[8])
	assert.Equal(t, 1.0, counts[14])
	assert.Equal(t, 1.0, counts[20])
	assert.Equal(t, 0.0, counts[0])
}

func TestUserBehaviorReport(t *testing.T) {
	r := newTestRouter(t)

	code, body := getJSON(t, r, "POST", "/api/report/user-behavior")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user_behavior", body["report_type"])

	age := body["age_analysis"].(map[string]any)
	assert.Empty(t, age["labels"])
	assert.Empty(t, age["data"])

	byType := body["transaction_type"].(map[string]any)
	assert.Equal(t, []any{"Transfer", "Withdrawal"}, byType["labels"])
	assert.Equal(t, []any{2.0, 1.0}, byType["data"])
}
