// ABOUTME: MCP tool definitions and registration for the deal recap server
// ABOUTME: Exposes extraction and session operations to MCP clients
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/atstrading/dealrecap/internal/core"
	"github.com/atstrading/dealrecap/internal/store"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, st *store.Store, assembler *core.Assembler) *Handlers {
	handlers := &Handlers{
		store:     st,
		assembler: assembler,
	}

	// 1. list_deals - List all deal recaps in the session
	server.AddTool(mcp.Tool{
		Name:        "list_deals",
		Description: "List all deal recaps in the current session with counterparty, product, volume, and pricing.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListDeals)

	// 2. get_chat - Get a chat with its messages
	server.AddTool(mcp.Tool{
		Name:        "get_chat",
		Description: "Get a chat by id with its messages in chronological order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chat_id": map[string]interface{}{
					"type":        "number",
					"description": "Chat id to retrieve",
				},
			},
			Required: []string{"chat_id"},
		},
	}, handlers.GetChat)

	// 3. extract_deal - Run deal extraction on a chat
	server.AddTool(mcp.Tool{
		Name:        "extract_deal",
		Description: "Analyze a chat transcript and extract a structured deal recap. Returns found:false when the chat contains no deal.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"chat_id": map[string]interface{}{
					"type":        "number",
					"description": "Chat id to extract from",
				},
			},
			Required: []string{"chat_id"},
		},
	}, handlers.ExtractDeal)

	// 4. promote_conversation - Promote a raw conversation into a chat
	server.AddTool(mcp.Tool{
		Name:        "promote_conversation",
		Description: "Parse a raw conversation into a structured chat with users and messages, and link the conversation to it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "number",
					"description": "Conversation id to promote",
				},
			},
			Required: []string{"conversation_id"},
		},
	}, handlers.PromoteConversation)

	// 5. generate_conversation - Generate a mock trading conversation
	server.AddTool(mcp.Tool{
		Name:        "generate_conversation",
		Description: "Generate a realistic mock trading negotiation and store it as a conversation. All parameters are optional and default to a crude spot deal.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"product": map[string]interface{}{
					"type":        "string",
					"description": "Product being traded (e.g. crude oil, diesel)",
				},
				"volume": map[string]interface{}{
					"type":        "number",
					"description": "Volume amount (default 500000)",
				},
				"volume_uom": map[string]interface{}{
					"type":        "string",
					"description": "Unit of measurement (default BBL)",
				},
				"counter_party": map[string]interface{}{
					"type":        "string",
					"description": "Counterparty company (default Shell Trading)",
				},
				"delivery_port": map[string]interface{}{
					"type":        "string",
					"description": "Delivery port (default Rotterdam)",
				},
			},
		},
	}, handlers.GenerateConversation)

	return handlers
}
