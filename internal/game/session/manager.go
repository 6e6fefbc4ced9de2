package session

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for an unknown connection id.
	ErrNotFound = errors.New("session not found")
	// ErrPlayerBound is returned when a player is already logged in on
	// another connection.
	ErrPlayerBound = errors.New("player already logged in")
)

// Session is one connected client.
type Session struct {
	ID        uuid.UUID
	Remote    string
	Connected time.Time
	Outbox    *Outbox

	kick       func()
	mu         sync.Mutex
	playerID   int64
	playerName string
}

// Player returns the player the session is logged in as.
func (s *Session) Player() (id int64, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID, s.playerName, s.playerID != 0
}

// Kick closes the client connection. The connection's own goroutine then
// runs the disconnect path.
func (s *Session) Kick() {
	if s.kick != nil {
		s.kick()
	}
}

// Manager tracks every open session by connection id and by player.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	byPlayer map[int64]uuid.UUID
	now      func() time.Time
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		byPlayer: make(map[int64]uuid.UUID),
		now:      time.Now,
	}
}

// Open registers a new connection. kick closes the underlying connection
// and may be nil.
//
// Postcondition: Returns a session with a fresh id and an open outbox.
func (m *Manager) Open(remote string, kick func(), bufferSize int) *Session {
	id := uuid.New()
	s := &Session{
		ID:        id,
		Remote:    remote,
		Connected: m.now(),
		Outbox:    NewOutbox(id.String(), bufferSize),
		kick:      kick,
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Close removes a session and closes its outbox.
//
// Postcondition: Returns the removed session, or ErrNotFound.
func (m *Manager) Close(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	if s.playerID != 0 && m.byPlayer[s.playerID] == id {
		delete(m.byPlayer, s.playerID)
	}
	s.mu.Unlock()
	delete(m.sessions, id)
	s.Outbox.Close()
	return s, nil
}

// Bind records that the session is logged in as the given player.
//
// Postcondition: Returns ErrPlayerBound if another session holds the
// player, ErrNotFound for an unknown session.
func (m *Manager) Bind(id uuid.UUID, playerID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if other, ok := m.byPlayer[playerID]; ok && other != id {
		return ErrPlayerBound
	}
	s.mu.Lock()
	if s.playerID != 0 && s.playerID != playerID {
		delete(m.byPlayer, s.playerID)
	}
	s.playerID, s.playerName = playerID, name
	s.mu.Unlock()
	m.byPlayer[playerID] = id
	return nil
}

// Unbind forgets the player of a session. The session stays open.
func (m *Manager) Unbind(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return
	}
	s.mu.Lock()
	if m.byPlayer[s.playerID] == id {
		delete(m.byPlayer, s.playerID)
	}
	s.playerID, s.playerName = 0, ""
	s.mu.Unlock()
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// ByPlayer returns the session logged in as the player.
func (m *Manager) ByPlayer(playerID int64) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	s, ok := m.sessions[id]
	return s, ok
}

// All returns every session, oldest connection first.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Session) int {
		if c := a.Connected.Compare(b.Connected); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoggedIn returns the number of sessions bound to a player.
func (m *Manager) LoggedIn() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byPlayer)
}

// Broadcast pushes lines to every logged-in session and returns how many
// accepted them.
func (m *Manager) Broadcast(lines ...string) int {
	n := 0
	for _, s := range m.All() {
		if _, _, ok := s.Player(); !ok {
			continue
		}
		if s.Outbox.Push(lines...) == nil {
			n++
		}
	}
	return n
}

// KickAll closes every connection.
func (m *Manager) KickAll() {
	for _, s := range m.All() {
		s.Kick()
	}
}
