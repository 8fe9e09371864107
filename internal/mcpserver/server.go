package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all FraudLens tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("fraudlens", "1.0.0")
	client := NewFraudLensClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolGetFraudStats, h.HandleGetFraudStats)
	s.AddTool(ToolAnalyzeTransaction, h.HandleAnalyzeTransaction)
	s.AddTool(ToolSearchTransactions, h.HandleSearchTransactions)
	s.AddTool(ToolListDatasets, h.HandleListDatasets)
	s.AddTool(ToolSwitchDataset, h.HandleSwitchDataset)

	return s
}
