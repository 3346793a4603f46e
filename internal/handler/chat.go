package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/llm"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/middleware"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/logger"
)

// ChatHandler proxies chat completion requests to the configured model
// provider.
type ChatHandler struct {
	client llm.Client
	logger *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(client llm.Client, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		client: client,
		logger: log,
	}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeError(w, http.StatusInternalServerError, "API key is not configured")
		return
	}

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Messages array is required and must not be empty")
		return
	}

	for _, m := range req.Messages {
		switch model.Role(m.Role) {
		case model.RoleSystem, model.RoleUser, model.RoleAssistant:
		default:
			writeError(w, http.StatusBadRequest, "invalid message role: "+m.Role)
			return
		}
		if err := middleware.ValidateMessageContent(m.Content); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	selectedModel := llm.ResolveModel(req.Model)
	if req.Model != "" && selectedModel != req.Model {
		h.logger.Warn("model not in recommended list, using default",
			zap.String("requested", req.Model),
			zap.String("selected", selectedModel),
		)
	}

	resp, err := h.client.Complete(r.Context(), &llm.CompletionRequest{
		Model:    selectedModel,
		Messages: llm.WithSystemPrompt(req.Messages),
	})
	if err != nil {
		h.writeUpstreamError(w, selectedModel, err)
		return
	}

	content := resp.Content
	if content == "" {
		content = "I apologize, but I couldn't generate a response. Please try again."
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{
		Message: content,
		Model:   resp.Model,
		Usage:   resp.Usage,
	})
}

// writeUpstreamError maps provider failures to the response contract.
func (h *ChatHandler) writeUpstreamError(w http.ResponseWriter, selectedModel string, err error) {
	up := llm.AsUpstream(err)
	if up == nil {
		h.logger.Error("chat completion failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   "Failed to process chat request",
			Details: err.Error(),
		})
		return
	}

	h.logger.Error("upstream chat error",
		zap.Int("status", up.StatusCode),
		zap.String("code", up.Code),
		zap.String("model", selectedModel),
	)

	message := "Failed to get response from AI"
	switch up.StatusCode {
	case http.StatusTooManyRequests:
		message = "Rate limit exceeded. Please wait a moment and try again."
	case http.StatusUnauthorized:
		message = "Authentication failed. Please check API key."
	case http.StatusBadRequest:
		if up.Code == "model_decommissioned" {
			message = "Model is no longer available. Using " + llm.DefaultModel + " instead."
		} else {
			message = "Invalid request. Please check your input."
		}
	case http.StatusServiceUnavailable:
		message = "Network error. Please check your connection."
	case http.StatusGatewayTimeout:
		message = "Request timeout. Please try again."
	}

	writeJSON(w, up.StatusCode, model.ErrorResponse{
		Error:   message,
		Details: up.Message,
	})
}
