package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/n0madic/go-chorus/internal/types"
)

// ListChorusModels returns every chorus model.
func (c *Client) ListChorusModels(ctx context.Context) ([]types.ChorusModel, error) {
	var out []types.ChorusModel
	if err := c.doJSON(ctx, http.MethodGet, "/chorus-models", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateChorusModel creates a chorus model. At least one responder and one
// evaluator are required.
func (c *Client) CreateChorusModel(ctx context.Context, req types.CreateChorusModelRequest) (*types.ChorusModel, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("chorus model name is required")
	}
	if len(req.ResponderLLMs) == 0 || len(req.EvaluatorLLMs) == 0 {
		return nil, fmt.Errorf("chorus model needs at least one responder and one evaluator")
	}
	var out types.ChorusModel
	if err := c.doJSON(ctx, http.MethodPost, "/chorus-models", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteChorusModel removes a chorus model.
func (c *Client) DeleteChorusModel(ctx context.Context, id int) (*types.MessageResponse, error) {
	if err := checkID("chorus model", id); err != nil {
		return nil, err
	}
	var out types.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/chorus-models/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBots returns every bot.
func (c *Client) ListBots(ctx context.Context) ([]types.Bot, error) {
	var out []types.Bot
	if err := c.doJSON(ctx, http.MethodGet, "/bots", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBot creates a bot. Name and instructions are required.
func (c *Client) CreateBot(ctx context.Context, req types.CreateBotRequest) (*types.Bot, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("bot name is required")
	}
	if strings.TrimSpace(req.Instructions) == "" {
		return nil, fmt.Errorf("bot instructions are required")
	}
	var out types.Bot
	if err := c.doJSON(ctx, http.MethodPost, "/bots", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBot removes a bot.
func (c *Client) DeleteBot(ctx context.Context, id int) (*types.MessageResponse, error) {
	if err := checkID("bot", id); err != nil {
		return nil, err
	}
	var out types.MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/bots/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends one message to a bot. RAGCount overrides the bot's
// rag_results_count for this message only.
func (c *Client) Chat(ctx context.Context, botID int, req types.ChatRequest) (*types.ChatResponse, error) {
	if err := checkID("bot", botID); err != nil {
		return nil, err
	}
	if req.RAGCount != nil && *req.RAGCount < 0 {
		return nil, fmt.Errorf("rag_count must not be negative, got %d", *req.RAGCount)
	}
	var out types.ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/bots/%d/chat", botID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatHistory returns a bot's exchanges, oldest first.
func (c *Client) ChatHistory(ctx context.Context, botID int) ([]types.ChatHistoryEntry, error) {
	if err := checkID("bot", botID); err != nil {
		return nil, err
	}
	var out []types.ChatHistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/bots/%d/history", botID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
