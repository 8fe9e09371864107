package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *FraudLensClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *FraudLensClient) *Handlers {
	return &Handlers{client: client}
}

// HandleGetFraudStats returns dataset-wide fraud statistics.
func (h *Handlers) HandleGetFraudStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get fraud stats: %v", err)), nil
	}

	text, err := formatStats(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse stats: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleAnalyzeTransaction scores one transaction for fraud risk.
func (h *Handlers) HandleAnalyzeTransaction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetArguments()["amount"] == nil {
		return mcp.NewToolResultError("amount is required"), nil
	}
	amount := req.GetFloat("amount", 0)
	txType := req.GetString("transaction_type", "")
	location := req.GetString("location", "")

	raw, err := h.client.Analyze(ctx, amount, txType, location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	text, err := formatAnalysis(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse analysis: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleSearchTransactions searches the loaded transactions.
func (h *Handlers) HandleSearchTransactions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	raw, err := h.client.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}

	text, err := formatTransactionList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse transactions: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListDatasets lists the discoverable CSV files and the active view.
func (h *Handlers) HandleListDatasets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.Datasets(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list datasets: %v", err)), nil
	}

	text, err := formatDatasets(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse datasets: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleSwitchDataset advances the dashboard to the next dataset.
func (h *Handlers) HandleSwitchDataset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Dataset switch failed: %v", err)), nil
	}

	text, err := formatSwitch(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse switch response: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

func formatStats(raw json.RawMessage) (string, error) {
	var s struct {
		Total int     `json:"total_transactions"`
		Fraud int     `json:"fraudulent_transactions"`
		Legit int     `json:"legitimate_transactions"`
		Rate  float64 `json:"fraud_rate"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Dataset statistics:\n")
	fmt.Fprintf(&sb, "  Total transactions: %d\n", s.Total)
	fmt.Fprintf(&sb, "  Fraudulent: %d\n", s.Fraud)
	fmt.Fprintf(&sb, "  Legitimate: %d\n", s.Legit)
	fmt.Fprintf(&sb, "  Fraud rate: %.2f%%\n", s.Rate)
	return sb.String(), nil
}

func formatAnalysis(raw json.RawMessage) (string, error) {
	var r struct {
		Error          string  `json:"error"`
		IsFraud        int     `json:"is_fraud"`
		Probability    float64 `json:"fraud_probability"`
		RiskLevel      string  `json:"risk_level"`
		Recommendation string  `json:"recommendation"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", err
	}

	if r.Error != "" {
		return fmt.Sprintf("Analysis unavailable: %s\nRecommendation: %s", r.Error, r.Recommendation), nil
	}

	verdict := "legitimate"
	if r.IsFraud == 1 {
		verdict = "FRAUDULENT"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Risk level: %s\n", r.RiskLevel)
	fmt.Fprintf(&sb, "Fraud probability: %.1f%%\n", r.Probability*100)
	fmt.Fprintf(&sb, "Classified as: %s\n", verdict)
	fmt.Fprintf(&sb, "Recommendation: %s\n", r.Recommendation)
	return sb.String(), nil
}

func formatTransactionList(raw json.RawMessage) (string, error) {
	var txs []struct {
		ID          int     `json:"id"`
		Timestamp   string  `json:"timestamp"`
		Amount      float64 `json:"amount"`
		Type        string  `json:"transaction_type"`
		Location    string  `json:"location"`
		IsFraud     int     `json:"is_fraud"`
		Probability float64 `json:"fraud_probability"`
	}
	if err := json.Unmarshal(raw, &txs); err != nil {
		return "", err
	}
	if len(txs) == 0 {
		return "No transactions matched your query.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d transaction(s):\n\n", len(txs))
	for i, tx := range txs {
		fmt.Fprintf(&sb, "%d. #%d  %.2f %s in %s\n", i+1, tx.ID, tx.Amount, tx.Type, tx.Location)
		fmt.Fprintf(&sb, "   Time: %s | Fraud probability: %.1f%%", tx.Timestamp, tx.Probability*100)
		if tx.IsFraud == 1 {
			sb.WriteString(" | flagged fraudulent")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func formatDatasets(raw json.RawMessage) (string, error) {
	var resp struct {
		Datasets []struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		} `json:"datasets"`
		Current struct {
			Index  int    `json:"index"`
			Source string `json:"source"`
		} `json:"current"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	if len(resp.Datasets) == 0 {
		return fmt.Sprintf(
			"No CSV files found; FraudLens is serving its synthetic demo dataset.\nActive view: %s",
			resp.Current.Source), nil
	}

	var sb strings.Builder
	sb.WriteString("Available datasets:\n")
	for i, d := range resp.Datasets {
		marker := ""
		if i == resp.Current.Index {
			marker = "  <- active"
		}
		fmt.Fprintf(&sb, "  %d. %s (%d bytes)%s\n", i+1, d.Name, d.Size, marker)
	}
	fmt.Fprintf(&sb, "\nActive view: %s\n", resp.Current.Source)
	return sb.String(), nil
}

func formatSwitch(raw json.RawMessage) (string, error) {
	var resp struct {
		Status  string `json:"status"`
		Source  string `json:"source"`
		Count   int    `json:"count"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s\nRows loaded: %d", resp.Message, resp.Count), nil
}
