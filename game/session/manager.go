package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/dragon-caves-game/game/engine"
	"github.com/wricardo/dragon-caves-game/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// idAttempts bounds how often a generated id is redrawn after a collision
const idAttempts = 8

// Manager keeps the running dragon games in memory, keyed by lowercase
// session id, and mirrors them to an optional SessionPersistence.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewManager creates a new in-memory session manager
func NewManager(logger *zap.Logger) *Manager {
	return NewManagerWithPersistence(nil, logger)
}

// NewManagerWithPersistence creates a session manager that writes every
// change through to persistence
func NewManagerWithPersistence(persistence SessionPersistence, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
		logger:      logger.Named("session"),
	}
}

// sessionKey is the map key for a session id; ids are case-insensitive
func sessionKey(id string) string {
	return strings.ToLower(id)
}

// newSessionID draws a 4 hex character id that taken does not report
func newSessionID(taken func(string) bool) (string, error) {
	buf := make([]byte, 2)
	for i := 0; i < idAttempts; i++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate session id: %w", err)
		}
		if id := hex.EncodeToString(buf); !taken(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free id after %d attempts", ErrSessionAlreadyExists, idAttempts)
}

// lookup returns the in-memory session; the caller holds mu
func (m *Manager) lookup(id string) (*service.Session, bool) {
	s, ok := m.sessions[sessionKey(id)]
	return s, ok
}

func (m *Manager) taken(id string) bool {
	_, ok := m.lookup(id)
	return ok
}

// persist writes the session through, logging rather than failing
func (m *Manager) persist(s *service.Session, event string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(s); err != nil {
		m.logger.Warn("failed to persist session",
			zap.String("session", s.ID), zap.String("event", event), zap.Error(err))
	}
}

// Create starts a new game under id, or under a generated id when id is empty
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required to create session")
	}
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		if id, err = newSessionID(m.taken); err != nil {
			return nil, err
		}
	} else if m.taken(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	s := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[sessionKey(id)] = s
	m.persist(s, "create")

	m.logger.Debug("session created",
		zap.String("session", id), zap.String("game", eng.GetState().GameID), zap.Int("players", config.Players))
	return s, nil
}

// Get returns a session, loading it from persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	s, ok := m.lookup(id)
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}
	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it while the file was read
	if s, ok := m.lookup(id); ok {
		return s, nil
	}
	m.sessions[sessionKey(id)] = loaded
	return loaded, nil
}

// GetOrCreate returns the session under id, creating it when it does not exist
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	s, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return s, err
}

// List returns every session held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Delete removes a session from memory and from persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.lookup(id)
	delete(m.sessions, sessionKey(id))

	onDisk := m.persistence != nil && m.persistence.Exists(id)
	if onDisk {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
	}
	if !inMemory && !onDisk {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory drops a session from memory and keeps its saved copy
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.taken(id) {
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionKey(id))
	return nil
}

// UpdateLastAccessed marks a session as used now
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}
	s.LastAccessedAt = time.Now()
	m.persist(s, "access")
	return nil
}

// Save writes one session to persistence. It is a no-op without persistence.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	s, ok := m.lookup(id)
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(s)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge from
// memory. Each one is saved first so a later Get can resume it.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, s := range m.sessions {
		if !s.LastAccessedAt.Before(cutoff) {
			continue
		}
		m.persist(s, "evict")
		delete(m.sessions, key)
		removed++
	}

	if removed > 0 {
		m.logger.Info("expired sessions removed from memory", zap.Int("count", removed), zap.Duration("max_age", maxAge))
	}
	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions brings every saved session into memory. A file that
// fails to load, for example one holding an invalid game state, is skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded, skipped := 0, 0
	for _, id := range ids {
		if m.taken(id) {
			continue
		}
		s, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn("failed to load persisted session", zap.String("session", id), zap.Error(err))
			skipped++
			continue
		}
		m.sessions[sessionKey(id)] = s
		loaded++
	}

	if loaded > 0 || skipped > 0 {
		m.logger.Info("loaded persisted sessions", zap.Int("count", loaded), zap.Int("skipped", skipped))
	}
	return nil
}

// SaveAllSessions writes every in-memory session to persistence and reports
// every failure together
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	var errs []error
	for _, s := range m.List() {
		if err := m.persistence.Save(s); err != nil {
			m.logger.Warn("failed to save session", zap.String("session", s.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("session %s: %w", s.ID, err))
		}
	}
	return errors.Join(errs...)
}
