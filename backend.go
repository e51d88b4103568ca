package main

import "fmt"

// JoinResult is the outcome of a join request
type JoinResult uint8

const (
	JoinSuccess JoinResult = iota
	JoinSessionFull
	JoinSessionDoesNotExist
	JoinCouldNotRetrieveAddress
	JoinUnknownError
)

func (r JoinResult) String() string {
	switch r {
	case JoinSuccess:
		return "success"
	case JoinSessionFull:
		return "session full"
	case JoinSessionDoesNotExist:
		return "session does not exist"
	case JoinCouldNotRetrieveAddress:
		return "could not retrieve address"
	case JoinUnknownError:
		return "unknown error"
	}
	return fmt.Sprintf("join(%d)", uint8(r))
}

// SessionSearch is a search request and, once completed, its results
type SessionSearch struct {
	MaxResults int
	LAN        bool
	Presence   bool
	Results    []SessionDescriptor
}

// Query returns the wire form of the search
func (s *SessionSearch) Query() SessionQuery {
	return SessionQuery{MaxResults: s.MaxResults, LAN: s.LAN, Presence: s.Presence}
}

// SessionBackend hosts, finds and joins named sessions. Requests return
// once sent; their outcome is delivered later to the completion callback
// registered for that kind of request. Registering again replaces the
// previous callback.
type SessionBackend interface {
	// HasSession reports whether this machine holds a session by that name
	HasSession(name string) bool
	// DestroySession removes the named session and waits for it to be gone
	DestroySession(name string) error

	CreateSession(name string, settings SessionSettings) error
	FindSessions(search *SessionSearch) error
	JoinSession(name string, result SessionDescriptor) error
	// GetResolvedConnectString returns the address a joined session is
	// reachable at
	GetResolvedConnectString(name string) (string, bool)

	OnCreateComplete(fn func(name string, ok bool))
	OnFindComplete(fn func(ok bool))
	OnJoinComplete(fn func(name string, result JoinResult))
}
