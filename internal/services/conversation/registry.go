package conversation

import (
	"sync"
	"time"
)

// RegistryConfig controls how long idle session stores are kept.
type RegistryConfig struct {
	IdleTimeout   time.Duration // Stores untouched for this long are dropped
	CleanupPeriod time.Duration // How often idle stores are swept
}

func DefaultRegistryConfig() *RegistryConfig {
	return &RegistryConfig{
		IdleTimeout:   2 * time.Hour,
		CleanupPeriod: 10 * time.Minute,
	}
}

type sessionEntry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per UI session id.
type Registry struct {
	config      *RegistryConfig
	storeConfig *Config
	sessions    map[string]*sessionEntry
	mu          sync.RWMutex
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewRegistry creates a registry and starts its cleanup goroutine. Call Close
// to stop it.
func NewRegistry(config *RegistryConfig, storeConfig *Config) *Registry {
	if config == nil {
		config = DefaultRegistryConfig()
	}
	r := &Registry{
		config:      config,
		storeConfig: storeConfig,
		sessions:    make(map[string]*sessionEntry),
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}
	if config.CleanupPeriod > 0 && config.IdleTimeout > 0 {
		go r.cleanupLoop()
	}
	return r
}

// Get returns the store for sessionID, creating it on first use.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{store: NewStore(r.storeConfig)}
		r.sessions[sessionID] = entry
	}
	entry.lastSeen = now
	return entry.store
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the configured timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.sessions {
		if now.Sub(entry.lastSeen) > r.config.IdleTimeout {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-r.stopCh:
			return
		}
	}
}

// Close stops the cleanup goroutine
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}
