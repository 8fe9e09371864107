// Package dashboard provides the chart-data and report JSON endpoints
// behind the fraud analytics page.
package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mbd888/fraudlens/internal/detector"
)

// Handler provides dashboard API endpoints.
type Handler struct {
	det *detector.Detector
}

// NewHandler creates a new dashboard handler.
func NewHandler(det *detector.Detector) *Handler {
	return &Handler{det: det}
}

// RegisterRoutes sets up chart and report routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/chart/fraud-distribution", h.FraudDistribution)
	r.GET("/chart/amount-distribution", h.AmountDistribution)
	r.GET("/chart/transaction-type", h.TransactionType)
	r.GET("/chart/location-risk", h.LocationRisk)

	r.POST("/report/summary", h.SummaryReport)
	r.POST("/report/geographic", h.GeographicReport)
	r.POST("/report/time-analysis", h.TimeAnalysisReport)
	r.POST("/report/user-behavior", h.UserBehaviorReport)
}

// FraudDistribution returns the legitimate/fraudulent split.
func (h *Handler) FraudDistribution(c *gin.Context) {
	c.JSON(http.StatusOK, h.det.FraudDistribution())
}

// AmountDistribution returns the binned amount histogram.
func (h *Handler) AmountDistribution(c *gin.Context) {
	c.JSON(http.StatusOK, h.det.AmountDistribution())
}

// TransactionType returns fraud counts per transaction type.
func (h *Handler) TransactionType(c *gin.Context) {
	c.JSON(http.StatusOK, h.det.FraudByType())
}

// LocationRisk returns the top locations ranked by fraud count.
func (h *Handler) LocationRisk(c *gin.Context) {
	c.JSON(http.StatusOK, h.det.LocationRisk())
}

// SummaryReport combines headline statistics with the fraud split.
func (h *Handler) SummaryReport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statistics":         h.det.Statistics(),
		"fraud_distribution": h.det.FraudDistribution(),
		"report_type":        "summary",
	})
}

// GeographicReport returns the ranked location series. The details list is
// always empty; the ranked series is all the report consumers render.
func (h *Handler) GeographicReport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"location_risk":    h.det.LocationRisk(),
		"location_details": []gin.H{},
		"report_type":      "geographic",
	})
}

// TimeAnalysisReport returns fraud counts for each hour of the day,
// zero-filled for hours without data.
func (h *Handler) TimeAnalysisReport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"hourly_data": h.det.HourlyFraud(),
		"report_type": "time_analysis",
	})
}

// UserBehaviorReport returns fraud counts by transaction type. Age analysis
// ships empty until the preparer types demographic columns.
func (h *Handler) UserBehaviorReport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"age_analysis": gin.H{
			"labels": []string{},
			"data":   []int{},
		},
		"transaction_type": h.det.FraudByType(),
		"report_type":      "user_behavior",
	})
}
