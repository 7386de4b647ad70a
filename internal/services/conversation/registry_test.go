package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iyunix/go-granny/internal/domain"
)

func TestRegistry_GetReturnsSameStore(t *testing.T) {
	r := NewRegistry(&RegistryConfig{}, DefaultConfig())
	defer r.Close()

	a := r.Get("session-a")
	a.CreateNewChat()
	a.AddMessage("hello", domain.RoleUser)

	assert.Same(t, a, r.Get("session-a"))
	assert.NotSame(t, a, r.Get("session-b"))
	assert.Empty(t, r.Get("session-b").Messages())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_StoreConfigApplied(t *testing.T) {
	r := NewRegistry(&RegistryConfig{}, &Config{PersonaPrompt: "Be kind.", ConversationLimit: 7})
	defer r.Close()

	s := r.Get("x")
	assert.Equal(t, 7, s.ConversationLimit())
	assert.Equal(t, "Be kind.", s.ConversationHistory(7)[0].Content)
}

func TestRegistry_SweepDropsIdle(t *testing.T) {
	r := NewRegistry(&RegistryConfig{IdleTimeout: time.Minute}, nil)
	defer r.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Get("old")
	now = now.Add(45 * time.Second)
	r.Get("fresh")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	// Touching a session keeps it alive.
	r.Get("fresh")
	now = now.Add(50 * time.Second)
	assert.Equal(t, 0, r.Sweep())
}

func TestRegistry_CloseIsIdempotent(t *testing.T) {
	r := NewRegistry(DefaultRegistryConfig(), nil)
	r.Close()
	r.Close()
}
