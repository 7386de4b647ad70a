// Package conversation holds the chat state behind one UI session: the chat
// collection, the active selection and the history sent to the model.
package conversation

import (
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/iyunix/go-granny/internal/domain"
)

// Store is the conversation state of a single UI session. All methods are
// safe for concurrent use; each one runs as a single mutation.
//
// The active message list is held separately from the stored chats. It is a
// copy of the selected chat's messages right after SwitchChat and is kept in
// step afterwards only by AddMessage. ClearMessages empties the active list
// without touching the stored chat.
type Store struct {
	mu sync.Mutex

	chats map[string]*domain.Chat
	order []string // chat ids in creation order

	currentChatID string // "" means no selection
	messages      []domain.Message
	isTyping      bool

	persona           string
	conversationLimit int

	now   func() time.Time
	newID func() string
}

// NewStore creates an empty store. A nil config uses DefaultConfig.
func NewStore(config *Config) *Store {
	if config == nil {
		config = DefaultConfig()
	}
	persona := config.PersonaPrompt
	if persona == "" {
		persona = DefaultPersonaPrompt
	}
	limit := config.ConversationLimit
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	return &Store{
		chats:             make(map[string]*domain.Chat),
		messages:          []domain.Message{},
		persona:           persona,
		conversationLimit: limit,
		now:               time.Now,
		newID:             newID,
	}
}

// CreateNewChat inserts an empty chat, makes it active and returns its id.
func (s *Store) CreateNewChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNewChat()
}

func (s *Store) createNewChat() string {
	now := s.now()
	id := s.newID()
	s.chats[id] = &domain.Chat{
		ID:        id,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.order = append(s.order, id)

	s.currentChatID = id
	s.messages = []domain.Message{}
	s.isTyping = false
	return id
}

// EnsureChat creates and selects a chat when the store has none, the way a
// fresh UI opens with one empty conversation. It returns the active chat id.
func (s *Store) EnsureChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return s.createNewChat()
	}
	return s.currentChatID
}

// SwitchChat selects chatID. The active list is replaced with a copy of the
// chat's messages when the chat exists and left as it is otherwise.
func (s *Store) SwitchChat(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switchChat(chatID)
}

func (s *Store) switchChat(chatID string) {
	s.currentChatID = chatID
	if chat, ok := s.chats[chatID]; ok {
		s.messages = append([]domain.Message{}, chat.Messages...)
	}
}

// DeleteChat removes a chat. Deleting the active chat selects the oldest
// remaining chat, or creates a fresh one when none are left.
func (s *Store) DeleteChat(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; ok {
		delete(s.chats, chatID)
		for i, id := range s.order {
			if id == chatID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}

	if s.currentChatID != chatID {
		return
	}
	if len(s.order) > 0 {
		s.switchChat(s.order[0])
		return
	}
	s.createNewChat()
}

// AddMessage appends a message to the active list and to the active chat.
// A user message raises the typing flag; any other role clears it. The first
// user message of an untitled chat becomes its title.
func (s *Store) AddMessage(content string, role domain.Role) domain.Message {
	if role == "" {
		role = domain.RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	message := domain.Message{
		ID:        s.newID(),
		Content:   content,
		Role:      role,
		Timestamp: now,
	}

	s.isTyping = role == domain.RoleUser
	s.messages = append(s.messages, message)

	if chat, ok := s.chats[s.currentChatID]; ok {
		if chat.Title == "" && role == domain.RoleUser {
			chat.Title = DeriveTitle(content)
		}
		chat.Messages = append(chat.Messages, message)
		chat.UpdatedAt = now
	}
	return message
}

// ClearMessages empties the active list only; the stored chat keeps its messages.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []domain.Message{}
	s.isTyping = false
}

// ConversationHistory returns the persona prompt followed by the most recent
// limit user/assistant messages of the active list, oldest first.
func (s *Store) ConversationHistory(limit int) []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation := make([]domain.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		if msg.Role == domain.RoleUser || msg.Role == domain.RoleAssistant {
			conversation = append(conversation, msg)
		}
	}
	if limit < 0 {
		limit = 0
	}
	if len(conversation) > limit {
		conversation = conversation[len(conversation)-limit:]
	}

	history := make([]domain.HistoryEntry, 0, len(conversation)+1)
	history = append(history, domain.HistoryEntry{Content: s.persona, Role: domain.RoleSystem})
	for _, msg := range conversation {
		history = append(history, domain.HistoryEntry{Content: msg.Content, Role: msg.Role})
	}
	return history
}

// SetConversationLimit stores the limit callers pass to ConversationHistory.
func (s *Store) SetConversationLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationLimit = limit
}

func (s *Store) ConversationLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationLimit
}

func (s *Store) CurrentChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChatID
}

// Messages returns a copy of the active message list.
func (s *Store) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message{}, s.messages...)
}

func (s *Store) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isTyping
}

// Chat returns a copy of the chat with the given id.
func (s *Store) Chat(chatID string) (domain.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return domain.Chat{}, false
	}
	return chat.Clone(), true
}

// Chats returns copies of all chats, most recently updated first.
func (s *Store) Chats() []domain.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Chat, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.chats[id].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// DeriveTitle turns a first user message into a chat title of at most 50
// characters, ending in "..." when the message had to be cut.
func DeriveTitle(content string) string {
	if utf8.RuneCountInString(content) <= titleMaxLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:titleMaxLength-len(titleEllipsis)]) + titleEllipsis
}
