// ABOUTME: MCP tool handler implementations for the deal recap server
// ABOUTME: Handlers return tool errors rather than protocol errors on failure
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/atstrading/dealrecap/internal/core"
	"github.com/atstrading/dealrecap/internal/llm"
	"github.com/atstrading/dealrecap/internal/store"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store     *store.Store
	assembler *core.Assembler
}

// ListDeals handles the list_deals tool
func (h *Handlers) ListDeals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deals, err := h.store.Deals()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing deals failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"count": len(deals),
		"deals": deals,
	})
}

// GetChat handles the get_chat tool
func (h *Handlers) GetChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, err := request.RequireInt("chat_id")
	if err != nil {
		return mcp.NewToolResultError("chat_id argument is required and must be a number"), nil
	}

	chat, err := h.store.ChatByID(chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("chat %d not found", chatID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("getting chat failed: %v", err)), nil
	}
	messages, err := h.store.MessagesByChat(chatID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("getting messages failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"chat":     chat,
		"messages": messages,
	})
}

// ExtractDeal handles the extract_deal tool
func (h *Handlers) ExtractDeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, err := request.RequireInt("chat_id")
	if err != nil {
		return mcp.NewToolResultError("chat_id argument is required and must be a number"), nil
	}

	deal, err := h.assembler.ExtractDealForChat(ctx, chatID)
	switch {
	case err == nil:
		return jsonResult(map[string]interface{}{"found": true, "deal": deal})
	case errors.Is(err, core.ErrNoDealFound):
		return jsonResult(map[string]interface{}{"found": false})
	case errors.Is(err, core.ErrExtractionInFlight):
		return mcp.NewToolResultError(fmt.Sprintf("extraction already in progress for chat %d", chatID)), nil
	case errors.Is(err, core.ErrModelUnavailable):
		return mcp.NewToolResultError("extraction unavailable: no API key configured"), nil
	case errors.Is(err, store.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("chat %d not found", chatID)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}
}

// PromoteConversation handles the promote_conversation tool
func (h *Handlers) PromoteConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireInt("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a number"), nil
	}

	chat, err := h.assembler.PromoteConversationToChat(ctx, conversationID)
	switch {
	case err == nil:
		return jsonResult(map[string]interface{}{"chat": chat})
	case errors.Is(err, core.ErrAlreadyPromoted):
		return mcp.NewToolResultError(fmt.Sprintf("conversation %d is already promoted", conversationID)), nil
	case errors.Is(err, core.ErrModelUnavailable):
		return mcp.NewToolResultError("promotion unavailable: no API key configured"), nil
	case errors.Is(err, store.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("conversation %d not found", conversationID)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("promotion failed: %v", err)), nil
	}
}

// GenerateConversation handles the generate_conversation tool
func (h *Handlers) GenerateConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := llm.GenerateParams{
		Product:      request.GetString("product", ""),
		Volume:       request.GetFloat("volume", 0),
		VolumeUOM:    request.GetString("volume_uom", ""),
		CounterParty: request.GetString("counter_party", ""),
		DeliveryPort: request.GetString("delivery_port", ""),
	}

	conv, err := h.assembler.GenerateConversation(ctx, params)
	switch {
	case err == nil:
		return jsonResult(map[string]interface{}{"conversation": conv})
	case errors.Is(err, core.ErrModelUnavailable):
		return mcp.NewToolResultError("generation unavailable: no API key configured"), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
