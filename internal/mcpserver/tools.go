package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the FraudLens MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolGetFraudStats = mcp.NewTool("get_fraud_stats",
	mcp.WithDescription(
		"Get summary statistics for the transaction dataset currently loaded in FraudLens: "+
			"total, fraudulent, and legitimate transaction counts plus the overall fraud rate."),
)

var ToolAnalyzeTransaction = mcp.NewTool("analyze_transaction",
	mcp.WithDescription(
		"Score a single transaction for fraud risk using the trained model. "+
			"Returns the fraud probability, a risk level (LOW/MEDIUM/HIGH), and a recommendation."),
	mcp.WithNumber("amount",
		mcp.Required(),
		mcp.Description("Transaction amount (e.g. 2500)")),
	mcp.WithString("transaction_type",
		mcp.Description("Transaction type. Defaults to 'unknown' when omitted."),
		mcp.Enum("purchase", "transfer", "withdrawal", "payment")),
	mcp.WithString("location",
		mcp.Description("Transaction location (e.g. 'New York'). Defaults to 'Unknown' when omitted.")),
)

var ToolSearchTransactions = mcp.NewTool("search_transactions",
	mcp.WithDescription(
		"Search the loaded transactions by location, transaction type, or amount substring. "+
			"Returns up to 20 matches with their fraud probabilities."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search text (e.g. 'new york', 'transfer', '2500')")),
)

var ToolListDatasets = mcp.NewTool("list_datasets",
	mcp.WithDescription(
		"List the CSV datasets FraudLens can serve and show which one is active. "+
			"The dashboard starts on the combined view over every file."),
)

var ToolSwitchDataset = mcp.NewTool("switch_dataset",
	mcp.WithDescription(
		"Switch FraudLens to the next dataset in its cycle and retrain the model on it. "+
			"The cycle visits each CSV file in turn and then the combined view."),
)
