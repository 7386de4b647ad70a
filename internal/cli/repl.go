// Package cli runs the terminal chat client. The conversation lives in a
// local store; each turn is posted to the server's /api/chat endpoint.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iyunix/go-granny/internal/domain"
	"github.com/iyunix/go-granny/internal/services/chat"
	"github.com/iyunix/go-granny/internal/services/conversation"
)

// Chatter sends a conversation history and returns the reply.
type Chatter interface {
	Chat(ctx context.Context, history []domain.HistoryEntry, limit int) (*chat.Response, error)
}

// Session is one interactive client session.
type Session struct {
	store  *conversation.Store
	client Chatter
	out    io.Writer
}

// NewSession opens a session with one empty chat selected.
func NewSession(store *conversation.Store, client Chatter, out io.Writer) *Session {
	store.EnsureChat()
	return &Session{store: store, client: client, out: out}
}

// Handle processes one line of input. It returns false when the user asked
// to quit.
func (s *Session) Handle(ctx context.Context, input string) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return true, nil
	}
	if strings.HasPrefix(input, "/") {
		return s.command(input)
	}
	return true, s.send(ctx, input)
}

func (s *Session) send(ctx context.Context, text string) error {
	s.store.AddMessage(text, domain.RoleUser)
	limit := s.store.ConversationLimit()

	resp, err := s.client.Chat(ctx, s.store.ConversationHistory(limit), limit)
	if err != nil {
		return err
	}
	s.store.AddMessage(resp.Response, domain.RoleAssistant)

	fmt.Fprintf(s.out, "Granny: %s\n", resp.Response)
	if !resp.Success && resp.Error != "" {
		fmt.Fprintf(s.out, "  (upstream error: %s)\n", resp.Error)
	}
	return nil
}

func (s *Session) command(input string) (bool, error) {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		s.printHelp()
	case "/quit", "/q", "/exit":
		return false, nil
	case "/new", "/n":
		id := s.store.CreateNewChat()
		fmt.Fprintf(s.out, "[New chat %s]\n", short(id))
	case "/list", "/l":
		s.printChats()
	case "/switch", "/s":
		id, err := s.resolve(args)
		if err != nil {
			return true, err
		}
		s.store.SwitchChat(id)
		fmt.Fprintf(s.out, "[Switched to %s]\n", short(id))
	case "/delete", "/d":
		id, err := s.resolve(args)
		if err != nil {
			return true, err
		}
		s.store.DeleteChat(id)
		fmt.Fprintf(s.out, "[Deleted %s, active chat is %s]\n", short(id), short(s.store.CurrentChatID()))
	case "/clear", "/c":
		s.store.ClearMessages()
		fmt.Fprintln(s.out, "[Conversation cleared]")
	case "/limit":
		if len(args) == 0 {
			fmt.Fprintf(s.out, "[Limit %d]\n", s.store.ConversationLimit())
			return true, nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return true, fmt.Errorf("limit must be a positive number")
		}
		s.store.SetConversationLimit(n)
		fmt.Fprintf(s.out, "[Limit %d]\n", n)
	case "/history":
		s.printHistory()
	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

// resolve accepts a full chat id or a unique prefix of one.
func (s *Session) resolve(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("chat id required")
	}
	want := args[0]
	var matches []string
	for _, c := range s.store.Chats() {
		if c.ID == want {
			return want, nil
		}
		if strings.HasPrefix(c.ID, want) {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return want, nil
	default:
		return "", fmt.Errorf("chat id %q is ambiguous", want)
	}
}

func (s *Session) printChats() {
	current := s.store.CurrentChatID()
	for _, c := range s.store.Chats() {
		marker := " "
		if c.ID == current {
			marker = "*"
		}
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(s.out, "%s %s  %-50s  %d messages  %s\n",
			marker, short(c.ID), title, len(c.Messages), c.UpdatedAt.Format(time.Kitchen))
	}
}

func (s *Session) printHistory() {
	for _, m := range s.store.Messages() {
		fmt.Fprintf(s.out, "[%s] %s: %s\n", m.Timestamp.Format(time.Kitchen), m.Role, m.Content)
	}
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, `Commands:
  /new              start a new chat
  /list             list chats
  /switch <id>      switch to a chat (id prefix is enough)
  /delete <id>      delete a chat
  /clear            clear the active messages
  /limit [n]        show or set how many messages are sent
  /history          show the active messages
  /quit             exit`)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
