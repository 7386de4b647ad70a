// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/iyunix/go-granny/internal/services/chat"
)

// maxChatBodyBytes bounds the history a client may post in one request.
const maxChatBodyBytes = 4 << 20

// Logger is the structured logger handlers write to.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type ChatHandler struct {
	Proxy  chat.Proxy
	logger Logger
}

func NewChatHandler(proxy chat.Proxy, logger Logger) *ChatHandler {
	return &ChatHandler{Proxy: proxy, logger: logger}
}

// HandleChat proxies a client-built conversation history to the model. The
// reply is always 200; failures carry success=false and a fallback reply.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid chat request body", "error", err)
		writeJSON(w, http.StatusOK, h.Proxy.Fallback(chat.NewValidationError("decode", "invalid request body", err)))
		return
	}

	writeJSON(w, http.StatusOK, h.Proxy.Respond(r.Context(), req.ConversationHistory))
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
