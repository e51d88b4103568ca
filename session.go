package main

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

const (
	maxSessions = 100
	// maxSearchResults bounds a single FindSessions reply
	maxSearchResults = 10000
)

// AttrMatchType is the advertised attribute searchers filter on
const AttrMatchType = "MatchType"

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session full")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrPlayerNotFound  = errors.New("player not found")
)

// SessionSettings are the host-chosen properties of a session
type SessionSettings struct {
	MaxPublicConnections int               `json:"max"`
	LAN                  bool              `json:"lan"`
	Advertise            bool              `json:"adv"`
	UsesPresence         bool              `json:"presence"`
	Attributes           map[string]string `json:"attrs,omitempty"`
}

// SessionQuery filters a search
type SessionQuery struct {
	MaxResults int  `json:"max"`
	LAN        bool `json:"lan"`
	Presence   bool `json:"presence"`
}

// SessionDescriptor is one search result
type SessionDescriptor struct {
	ID         string            `json:"id"`
	OwnerName  string            `json:"owner"`
	Attributes map[string]string `json:"attrs,omitempty"`
	OpenSlots  int               `json:"open"`
	LAN        bool              `json:"lan"`
}

// Session is a hosted game: a named, advertised World
type Session struct {
	ID    string
	Name  string
	Owner string
	SessionSettings
	World *World

	ownerKey  string
	createdAt time.Time
	// reservations are seats granted by a join but not yet claimed by a
	// world connection
	reservations map[string]time.Time
}

// SessionManager is the in-memory session directory
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	base     WorldConfig
	db       *DB
	journal  *Analytics
}

// NewSessionManager creates a new SessionManager. Every world it starts is
// configured from base.
func NewSessionManager(base WorldConfig, db *DB, journal *Analytics) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		base:     base,
		db:       db,
		journal:  journal,
	}
}

// CreateSession registers a session and starts its world. A host may own at
// most one session per name.
func (sm *SessionManager) CreateSession(ownerKey, owner, name string, settings SessionSettings) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil, ErrTooManySessions
	}
	for _, s := range sm.sessions {
		if s.ownerKey == ownerKey && s.Name == name {
			return nil, ErrSessionExists
		}
	}
	if settings.MaxPublicConnections <= 0 || settings.MaxPublicConnections > maxPlayersPerWorld {
		settings.MaxPublicConnections = maxPlayersPerWorld
	}
	attrs := make(map[string]string, len(settings.Attributes))
	for k, v := range settings.Attributes {
		attrs[k] = v
	}
	settings.Attributes = attrs

	id := GenerateUUID()
	cfg := sm.base
	cfg.SessionID = id
	cfg.MaxPlayers = settings.MaxPublicConnections
	cfg.Journal = sm.journal
	world := NewWorld(cfg)

	sess := &Session{
		ID:              id,
		Name:            name,
		Owner:           owner,
		SessionSettings: settings,
		World:           world,
		ownerKey:        ownerKey,
		createdAt:       time.Now(),
		reservations:    make(map[string]time.Time),
	}
	sm.sessions[id] = sess
	go world.Run()

	if sm.db != nil {
		if err := sm.db.RecordSession(sess); err != nil {
			log.Printf("session %s: record error: %v", id, err)
		}
	}
	sm.journal.Track(EvtSessionCreated, 0, 0, id, name)
	sm.journal.SetActiveSessions(len(sm.sessions))
	return sess, nil
}

// DestroySession stops and removes the host's session with the given name
func (sm *SessionManager) DestroySession(ownerKey, name string) error {
	sm.mu.Lock()
	var sess *Session
	for _, s := range sm.sessions {
		if s.ownerKey == ownerKey && s.Name == name {
			sess = s
			break
		}
	}
	if sess == nil {
		sm.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(sm.sessions, sess.ID)
	n := len(sm.sessions)
	sm.mu.Unlock()

	sm.end(sess, n)
	return nil
}

// DestroyOwned removes every session a disconnected host owned
func (sm *SessionManager) DestroyOwned(ownerKey string) {
	sm.mu.Lock()
	var owned []*Session
	for id, s := range sm.sessions {
		if s.ownerKey == ownerKey {
			owned = append(owned, s)
			delete(sm.sessions, id)
		}
	}
	n := len(sm.sessions)
	sm.mu.Unlock()

	for _, s := range owned {
		sm.end(s, n)
	}
}

func (sm *SessionManager) end(sess *Session, remaining int) {
	sess.World.Stop()
	if sm.db != nil {
		if err := sm.db.EndSession(sess.ID); err != nil {
			log.Printf("session %s: end error: %v", sess.ID, err)
		}
	}
	sm.journal.Track(EvtSessionDestroyed, 0, 0, sess.ID, sess.Name)
	sm.journal.SetActiveSessions(remaining)
}

// FindSessions returns advertised sessions matching the query, oldest first
func (sm *SessionManager) FindSessions(q SessionQuery) []SessionDescriptor {
	limit := q.MaxResults
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	list := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		if !s.Advertise || s.LAN != q.LAN {
			continue
		}
		if q.Presence && !s.UsesPresence {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].createdAt.Equal(list[j].createdAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].createdAt.Before(list[j].createdAt)
	})
	if len(list) > limit {
		list = list[:limit]
	}

	now := time.Now()
	out := make([]SessionDescriptor, 0, len(list))
	for _, s := range list {
		attrs := make(map[string]string, len(s.Attributes))
		for k, v := range s.Attributes {
			attrs[k] = v
		}
		out = append(out, SessionDescriptor{
			ID:         s.ID,
			OwnerName:  s.Owner,
			Attributes: attrs,
			OpenSlots:  s.openSlots(now),
			LAN:        s.LAN,
		})
	}
	return out
}

// JoinSession reserves a seat and returns its id
func (sm *SessionManager) JoinSession(sessionID string) (string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sess, ok := sm.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	if sess.openSlots(time.Now()) <= 0 {
		return "", ErrSessionFull
	}
	seat := GenerateUUID()
	sess.reservations[seat] = time.Now()
	return seat, nil
}

// ClaimSeat consumes a reservation made by JoinSession. Each seat can be
// claimed once.
func (sm *SessionManager) ClaimSeat(sessionID, seat string) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sess, ok := sm.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.openSlots(time.Now())
	if _, ok := sess.reservations[seat]; !ok {
		return nil, ErrInvalidTicket
	}
	delete(sess.reservations, seat)
	return sess, nil
}

// Travel moves a host's session to a new map route
func (sm *SessionManager) Travel(ownerKey, name, route string) (*Session, error) {
	sm.mu.RLock()
	var sess *Session
	for _, s := range sm.sessions {
		if s.ownerKey == ownerKey && s.Name == name {
			sess = s
			break
		}
	}
	sm.mu.RUnlock()
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	sess.World.Travel(route)
	return sess, nil
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemovePlayer removes a player from a session's world
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.World.RemovePlayer(playerID)
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// openSlots drops expired reservations and returns the free seats.
// Callers hold the manager lock.
func (s *Session) openSlots(now time.Time) int {
	for seat, at := range s.reservations {
		if now.Sub(at) > ticketExpiry {
			delete(s.reservations, seat)
		}
	}
	n := s.MaxPublicConnections - s.World.PlayerCount() - len(s.reservations)
	if n < 0 {
		return 0
	}
	return n
}
