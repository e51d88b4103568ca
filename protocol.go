package main

import "encoding/json"

// Lobby: client -> server message types
const (
	MsgCreate      = "create"
	MsgDestroy     = "destroy"
	MsgFind        = "find"
	MsgJoin        = "join"
	MsgTravel      = "travel"
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth"
	MsgLeaderboard = "leaderboard"
)

// Lobby: server -> client message types
const (
	MsgCreated   = "created"
	MsgDestroyed = "destroyed"
	MsgSessions  = "sessions"
	MsgJoined    = "joined"
	MsgTraveled  = "traveled"
	MsgAuthOK    = "auth_ok"
	MsgLeaders   = "leaders"
	MsgError     = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is an incoming message with its payload left raw
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg asks the lobby to host a new session under a local name
type CreateMsg struct {
	Name     string          `json:"name"`
	Owner    string          `json:"owner"`
	Settings SessionSettings `json:"settings"`
}

// DestroyMsg removes the sender's session with the given name
type DestroyMsg struct {
	Name string `json:"name"`
}

// FindMsg searches advertised sessions
type FindMsg struct {
	Query SessionQuery `json:"q"`
}

// JoinMsg reserves a seat in a found session
type JoinMsg struct {
	Name   string `json:"name"`
	SID    string `json:"sid"`
	Player string `json:"player"`
}

// TravelMsg moves the sender's hosted session to a new route
type TravelMsg struct {
	Name  string `json:"name"`
	Route string `json:"route"`
}

// CredentialsMsg is used by register and login
type CredentialsMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg resumes an account with a previously issued token
type AuthMsg struct {
	Token string `json:"token"`
}

// LeaderboardMsg requests the top accounts
type LeaderboardMsg struct {
	OrderBy string `json:"by"`
	Limit   int    `json:"limit"`
}

// CreatedMsg confirms a create
type CreatedMsg struct {
	Name string `json:"name"`
	SID  string `json:"sid"`
}

// DestroyedMsg confirms a destroy
type DestroyedMsg struct {
	Name string `json:"name"`
}

// SessionsMsg carries search results
type SessionsMsg struct {
	Results []SessionDescriptor `json:"results"`
}

// JoinedMsg confirms a join; Connect is the world address to travel to
type JoinedMsg struct {
	Name    string `json:"name"`
	SID     string `json:"sid"`
	Connect string `json:"connect"`
}

// TraveledMsg confirms a server travel and hands the host its own seat
type TraveledMsg struct {
	Name    string `json:"name"`
	SID     string `json:"sid"`
	Route   string `json:"route"`
	Connect string `json:"connect"`
}

// AuthOKMsg confirms register, login or auth
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// LeadersMsg carries the leaderboard
type LeadersMsg struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// ErrorMsg reports a failed request; Op is the request type
type ErrorMsg struct {
	Op  string `json:"op"`
	Msg string `json:"msg"`
}
