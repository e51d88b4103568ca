package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const destroyTimeout = 5 * time.Second

var errDestroyTimeout = errors.New("destroy session: no reply")

// LobbySender sends JSON envelopes to the lobby
type LobbySender interface {
	SendJSON(v interface{}) error
}

// RemoteSessionBackend implements SessionBackend over the lobby websocket.
// Replies are decoded on the read goroutine and queued; completion
// callbacks run when the owner calls Pump.
type RemoteSessionBackend struct {
	lobby LobbySender
	owner string

	mu       sync.Mutex
	hosted   map[string]string // session name -> id
	connect  map[string]string // session name -> resolved world address
	search   *SessionSearch
	onCreate func(name string, ok bool)
	onFind   func(ok bool)
	onJoin   func(name string, result JoinResult)
	onTravel func(msg TraveledMsg)
	onAuth   func(msg AuthOKMsg)
	queue    []func()
	// names of the latest create and join, for failure completions
	createName string
	joinName   string
	// destroyReply receives the outcome of the one destroy in flight
	destroyReply chan error
}

// NewRemoteSessionBackend creates a backend that hosts sessions under the
// owner display name
func NewRemoteSessionBackend(lobby LobbySender, owner string) *RemoteSessionBackend {
	return &RemoteSessionBackend{
		lobby:   lobby,
		owner:   owner,
		hosted:  make(map[string]string),
		connect: make(map[string]string),
	}
}

func (b *RemoteSessionBackend) HasSession(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.hosted[name]
	return ok
}

// DestroySession blocks until the lobby confirms or destroyTimeout passes.
// It must not be called from the lobby read goroutine.
func (b *RemoteSessionBackend) DestroySession(name string) error {
	reply := make(chan error, 1)
	b.mu.Lock()
	b.destroyReply = reply
	b.mu.Unlock()

	if err := b.lobby.SendJSON(Envelope{T: MsgDestroy, Data: DestroyMsg{Name: name}}); err != nil {
		return fmt.Errorf("destroy session %s: %w", name, err)
	}
	select {
	case err := <-reply:
		if err != nil && !strings.Contains(err.Error(), ErrSessionNotFound.Error()) {
			return fmt.Errorf("destroy session %s: %w", name, err)
		}
	case <-time.After(destroyTimeout):
		return errDestroyTimeout
	}
	b.mu.Lock()
	delete(b.hosted, name)
	b.mu.Unlock()
	return nil
}

func (b *RemoteSessionBackend) CreateSession(name string, settings SessionSettings) error {
	b.mu.Lock()
	b.createName = name
	b.mu.Unlock()
	return b.lobby.SendJSON(Envelope{T: MsgCreate, Data: CreateMsg{Name: name, Owner: b.owner, Settings: settings}})
}

// FindSessions replaces search.Results when the reply arrives
func (b *RemoteSessionBackend) FindSessions(search *SessionSearch) error {
	b.mu.Lock()
	b.search = search
	b.mu.Unlock()
	return b.lobby.SendJSON(Envelope{T: MsgFind, Data: FindMsg{Query: search.Query()}})
}

func (b *RemoteSessionBackend) JoinSession(name string, result SessionDescriptor) error {
	b.mu.Lock()
	b.joinName = name
	b.mu.Unlock()
	return b.lobby.SendJSON(Envelope{T: MsgJoin, Data: JoinMsg{Name: name, SID: result.ID, Player: b.owner}})
}

func (b *RemoteSessionBackend) GetResolvedConnectString(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	addr, ok := b.connect[name]
	return addr, ok && addr != ""
}

// Travel asks the lobby to move the hosted session to route
func (b *RemoteSessionBackend) Travel(name, route string) error {
	return b.lobby.SendJSON(Envelope{T: MsgTravel, Data: TravelMsg{Name: name, Route: route}})
}

// Login authenticates the lobby connection
func (b *RemoteSessionBackend) Login(username, password string) error {
	return b.lobby.SendJSON(Envelope{T: MsgLogin, Data: CredentialsMsg{Username: username, Password: password}})
}

func (b *RemoteSessionBackend) OnCreateComplete(fn func(name string, ok bool)) {
	b.mu.Lock()
	b.onCreate = fn
	b.mu.Unlock()
}

func (b *RemoteSessionBackend) OnFindComplete(fn func(ok bool)) {
	b.mu.Lock()
	b.onFind = fn
	b.mu.Unlock()
}

func (b *RemoteSessionBackend) OnJoinComplete(fn func(name string, result JoinResult)) {
	b.mu.Lock()
	b.onJoin = fn
	b.mu.Unlock()
}

// OnTravelComplete registers the handler for a confirmed server travel
func (b *RemoteSessionBackend) OnTravelComplete(fn func(msg TraveledMsg)) {
	b.mu.Lock()
	b.onTravel = fn
	b.mu.Unlock()
}

// OnAuthComplete registers the handler for a confirmed login or register
func (b *RemoteSessionBackend) OnAuthComplete(fn func(msg AuthOKMsg)) {
	b.mu.Lock()
	b.onAuth = fn
	b.mu.Unlock()
}

// Pump runs queued completions on the caller's goroutine and returns how
// many ran
func (b *RemoteSessionBackend) Pump() int {
	b.mu.Lock()
	queue := b.queue
	b.queue = nil
	b.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// HandleMessage decodes one lobby message. It is the Link read handler.
func (b *RemoteSessionBackend) HandleMessage(kind int, data []byte) {
	if kind != websocket.TextMessage {
		return
	}
	var env InEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("lobby: unmarshal error: %v", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch env.T {
	case MsgCreated:
		var msg CreatedMsg
		if json.Unmarshal(env.D, &msg) != nil {
			return
		}
		b.hosted[msg.Name] = msg.SID
		if fn := b.onCreate; fn != nil {
			b.queue = append(b.queue, func() { fn(msg.Name, true) })
		}

	case MsgDestroyed:
		b.replyDestroy(nil)

	case MsgSessions:
		var msg SessionsMsg
		if json.Unmarshal(env.D, &msg) != nil {
			return
		}
		search, fn := b.search, b.onFind
		if search != nil {
			search.Results = msg.Results
		}
		if fn != nil {
			b.queue = append(b.queue, func() { fn(true) })
		}

	case MsgJoined:
		var msg JoinedMsg
		if json.Unmarshal(env.D, &msg) != nil {
			return
		}
		b.connect[msg.Name] = msg.Connect
		if fn := b.onJoin; fn != nil {
			b.queue = append(b.queue, func() { fn(msg.Name, JoinSuccess) })
		}

	case MsgTraveled:
		var msg TraveledMsg
		if json.Unmarshal(env.D, &msg) != nil {
			return
		}
		if fn := b.onTravel; fn != nil {
			b.queue = append(b.queue, func() { fn(msg) })
		}

	case MsgAuthOK:
		var msg AuthOKMsg
		if json.Unmarshal(env.D, &msg) != nil {
			return
		}
		if fn := b.onAuth; fn != nil {
			b.queue = append(b.queue, func() { fn(msg) })
		}

	case MsgError:
		var msg ErrorMsg
		if json.Unmarshal(env.D, &msg) != nil {
			return
		}
		b.handleError(msg)
	}
}

// handleError routes a failed request to its completion. Callers hold mu.
func (b *RemoteSessionBackend) handleError(msg ErrorMsg) {
	log.Printf("lobby: %s failed: %s", msg.Op, msg.Msg)
	switch msg.Op {
	case MsgDestroy:
		b.replyDestroy(errors.New(msg.Msg))
	case MsgCreate:
		name := b.createName
		if fn := b.onCreate; fn != nil {
			b.queue = append(b.queue, func() { fn(name, false) })
		}
	case MsgFind:
		if fn := b.onFind; fn != nil {
			b.queue = append(b.queue, func() { fn(false) })
		}
	case MsgJoin:
		name, result := b.joinName, joinResultFor(msg.Msg)
		if fn := b.onJoin; fn != nil {
			b.queue = append(b.queue, func() { fn(name, result) })
		}
	}
}

func (b *RemoteSessionBackend) replyDestroy(err error) {
	if b.destroyReply == nil {
		return
	}
	b.destroyReply <- err
	b.destroyReply = nil
}

// joinResultFor maps a lobby error message to a JoinResult
func joinResultFor(msg string) JoinResult {
	switch msg {
	case ErrSessionFull.Error():
		return JoinSessionFull
	case ErrSessionNotFound.Error():
		return JoinSessionDoesNotExist
	}
	return JoinUnknownError
}
