// File: internal/handlers/session_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-granny/internal/domain"
	"github.com/iyunix/go-granny/internal/middleware"
	"github.com/iyunix/go-granny/internal/render"
	"github.com/iyunix/go-granny/internal/services/chat"
	"github.com/iyunix/go-granny/internal/services/conversation"
)

const maxMessageBodyBytes = 1 << 20

// SessionHandler exposes the conversation store of the caller's session.
type SessionHandler struct {
	registry *conversation.Registry
	proxy    chat.Proxy
	logger   Logger
}

func NewSessionHandler(registry *conversation.Registry, proxy chat.Proxy, logger Logger) *SessionHandler {
	return &SessionHandler{registry: registry, proxy: proxy, logger: logger}
}

type messageView struct {
	domain.Message
	HTML string `json:"html,omitempty"` // Rendered assistant content
}

type chatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type sessionView struct {
	CurrentChatID     string        `json:"currentChatId"`
	IsTyping          bool          `json:"isTyping"`
	ConversationLimit int           `json:"conversationLimit"`
	Messages          []messageView `json:"messages"`
	Chats             []chatSummary `json:"chats"`
}

type addMessageRequest struct {
	Content string      `json:"content"`
	Role    domain.Role `json:"role"`
}

type limitRequest struct {
	Limit int `json:"limit"`
}

// store returns the session's store, opening its first chat on first use.
func (h *SessionHandler) store(r *http.Request) *conversation.Store {
	s := h.registry.Get(middleware.SessionID(r.Context()))
	s.EnsureChat()
	return s
}

func viewMessages(messages []domain.Message) []messageView {
	out := make([]messageView, 0, len(messages))
	for _, m := range messages {
		v := messageView{Message: m}
		if m.Role == domain.RoleAssistant {
			v.HTML = render.Markdown(m.Content)
		}
		out = append(out, v)
	}
	return out
}

func viewSession(s *conversation.Store) sessionView {
	chats := s.Chats()
	summaries := make([]chatSummary, 0, len(chats))
	for _, c := range chats {
		summaries = append(summaries, chatSummary{
			ID:           c.ID,
			Title:        c.Title,
			MessageCount: len(c.Messages),
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return sessionView{
		CurrentChatID:     s.CurrentChatID(),
		IsTyping:          s.IsTyping(),
		ConversationLimit: s.ConversationLimit(),
		Messages:          viewMessages(s.Messages()),
		Chats:             summaries,
	}
}

// GetSession returns the whole session state.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewSession(h.store(r)))
}

// CreateChat starts a new chat and makes it active.
func (h *SessionHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	id := s.CreateNewChat()
	h.logger.Debug("chat created", "chat_id", id)
	writeJSON(w, http.StatusCreated, viewSession(s))
}

// SwitchChat selects a chat. Unknown ids are accepted and leave the active
// messages untouched.
func (h *SessionHandler) SwitchChat(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.SwitchChat(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, viewSession(s))
}

// DeleteChat removes a chat; unknown ids are a no-op.
func (h *SessionHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.DeleteChat(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, viewSession(s))
}

// AddMessage appends a message to the active chat.
func (h *SessionHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBodyBytes)

	var req addMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		writeError(w, "Invalid role", http.StatusBadRequest)
		return
	}

	msg := h.store(r).AddMessage(req.Content, req.Role)
	writeJSON(w, http.StatusCreated, viewMessages([]domain.Message{msg})[0])
}

// ClearMessages empties the active message list.
func (h *SessionHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.ClearMessages()
	writeJSON(w, http.StatusOK, viewSession(s))
}

// GetHistory returns the bounded history that would be sent to the model.
func (h *SessionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	limit := s.ConversationLimit()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.ConversationHistory(limit))
}

// SetLimit changes the number of messages included in the history.
func (h *SessionHandler) SetLimit(w http.ResponseWriter, r *http.Request) {
	var req limitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBodyBytes)).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Limit <= 0 {
		writeError(w, "Limit must be positive", http.StatusBadRequest)
		return
	}

	s := h.store(r)
	s.SetConversationLimit(req.Limit)
	writeJSON(w, http.StatusOK, limitRequest{Limit: s.ConversationLimit()})
}

// Send adds the user's message, asks the model with the bounded history and
// stores the reply, fallback replies included.
func (h *SessionHandler) Send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBodyBytes)

	var req addMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, "Message content is required", http.StatusBadRequest)
		return
	}

	s := h.store(r)
	s.AddMessage(req.Content, domain.RoleUser)

	resp := h.proxy.Respond(r.Context(), s.ConversationHistory(s.ConversationLimit()))
	s.AddMessage(resp.Response, domain.RoleAssistant)

	writeJSON(w, http.StatusOK, resp)
}
