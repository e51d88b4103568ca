package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120
	maxNameLen        = 16
	maxSessionNameLen = 30
)

var (
	errPeerBacklogged = errors.New("peer send buffer full")
)

// Client is one server-side websocket connection. A lobby client speaks
// JSON envelopes; a world client is bound to one player and speaks frames.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	remoteAddr string
	host       string
	msgCount   int
	msgResetAt time.Time
	// World binding, set before the pumps start
	playerID  string
	sessionID string
	world     *World
	// Auth state
	authPlayerID int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client. host is the address the connection was
// made to and is used to build world connect strings.
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr, host string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		id:         GenerateID(8),
		remoteAddr: remoteAddr,
		host:       host,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		if c.world != nil {
			if msgType == websocket.BinaryMessage {
				c.handleFrame(message)
			}
			continue
		}
		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from queueBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendReliable queues a binary frame that must arrive. A client whose
// buffer is full is disconnected instead of silently losing the frame.
func (c *Client) SendReliable(data []byte) error {
	if !c.queueBinary(data) {
		c.conn.Close()
		return errPeerBacklogged
	}
	return nil
}

// SendUnreliable queues a binary frame, dropping it if the client is slow
func (c *Client) SendUnreliable(data []byte) {
	c.queueBinary(data)
}

// queueBinary prefixes the 0xFF marker so WritePump sends a binary message
func (c *Client) queueBinary(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(op string, err error) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Op: op, Msg: err.Error()}})
}

// handleFrame routes a world frame from the owning player
func (c *Client) handleFrame(raw []byte) {
	f, err := DecodeFrame(raw)
	if err != nil {
		log.Printf("frame from %s: %v", c.remoteAddr, err)
		return
	}
	switch f.Kind {
	case FrameInput:
		c.world.HandleInput(c.playerID, *f.Input)
	case FrameRPC:
		if err := c.world.HandleRPC(c.playerID, *f.RPC); err != nil {
			log.Printf("rpc %s from %s rejected: %v", f.RPC.Kind, c.playerID, err)
		}
	}
}

// handleMessage routes incoming lobby messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgDestroy:
		c.handleDestroy(env.D)
	case MsgFind:
		c.handleFind(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgTravel:
		c.handleTravel(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgLeaderboard:
		c.handleLeaderboard(env.D)
	}
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := truncate(strings.TrimSpace(msg.Name), maxSessionNameLen)
	if name == "" {
		name = DefaultSessionName
	}
	owner := c.displayName(msg.Owner)

	sess, err := c.hub.sessions.CreateSession(c.id, owner, name, msg.Settings)
	if err != nil {
		c.sendError(MsgCreate, err)
		return
	}
	log.Printf("session %s (%s) created by %s", sess.ID, sess.Name, owner)
	c.SendJSON(Envelope{T: MsgCreated, Data: CreatedMsg{Name: sess.Name, SID: sess.ID}})
}

func (c *Client) handleDestroy(data json.RawMessage) {
	var msg DestroyMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if err := c.hub.sessions.DestroySession(c.id, msg.Name); err != nil {
		c.sendError(MsgDestroy, err)
		return
	}
	c.SendJSON(Envelope{T: MsgDestroyed, Data: DestroyedMsg{Name: msg.Name}})
}

func (c *Client) handleFind(data json.RawMessage) {
	var msg FindMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	results := c.hub.sessions.FindSessions(msg.Query)
	c.SendJSON(Envelope{T: MsgSessions, Data: SessionsMsg{Results: results}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	seat, err := c.hub.sessions.JoinSession(msg.SID)
	if err != nil {
		c.sendError(MsgJoin, err)
		return
	}
	connect, err := c.connectString(msg.SID, seat, c.displayName(msg.Player))
	if err != nil {
		c.sendError(MsgJoin, err)
		return
	}
	c.SendJSON(Envelope{T: MsgJoined, Data: JoinedMsg{Name: msg.Name, SID: msg.SID, Connect: connect}})
}

func (c *Client) handleTravel(data json.RawMessage) {
	var msg TravelMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess, err := c.hub.sessions.Travel(c.id, msg.Name, msg.Route)
	if err != nil {
		c.sendError(MsgTravel, err)
		return
	}
	// a listen server plays in its own world
	seat, err := c.hub.sessions.JoinSession(sess.ID)
	if err != nil {
		c.sendError(MsgTravel, err)
		return
	}
	connect, err := c.connectString(sess.ID, seat, sess.Owner)
	if err != nil {
		c.sendError(MsgTravel, err)
		return
	}
	c.SendJSON(Envelope{T: MsgTraveled, Data: TraveledMsg{
		Name:    sess.Name,
		SID:     sess.ID,
		Route:   msg.Route,
		Connect: connect,
	}})
}

func (c *Client) handleRegister(data json.RawMessage) {
	var msg CredentialsMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(MsgRegister, err)
		return
	}
	c.authPlayerID = id
	c.authUsername = strings.TrimSpace(msg.Username)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: c.authUsername,
		PlayerID: id,
	}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	var msg CredentialsMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(MsgLogin, err)
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError(MsgAuth, errors.New("invalid token"))
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    msg.Token,
		Username: username,
		PlayerID: id,
	}})
}

func (c *Client) handleLeaderboard(data json.RawMessage) {
	var msg LeaderboardMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	if c.hub.db == nil {
		c.sendError(MsgLeaderboard, errors.New("stats disabled"))
		return
	}
	if msg.Limit <= 0 || msg.Limit > 100 {
		msg.Limit = 10
	}
	entries, err := c.hub.db.GetLeaderboard(msg.OrderBy, msg.Limit)
	if err != nil {
		c.sendError(MsgLeaderboard, errors.New("database error"))
		return
	}
	c.SendJSON(Envelope{T: MsgLeaders, Data: LeadersMsg{Entries: entries}})
}

// displayName picks the name a player is shown under
func (c *Client) displayName(requested string) string {
	if c.authUsername != "" {
		return c.authUsername
	}
	name := truncate(strings.TrimSpace(requested), maxNameLen)
	if name == "" {
		name = GenerateGuestName()
	}
	return name
}

// connectString issues a travel ticket for a reserved seat and returns the
// world address that redeems it
func (c *Client) connectString(sessionID, seat, name string) (string, error) {
	ticket, err := c.hub.auth.IssueTicket(Ticket{
		SessionID: sessionID,
		Seat:      seat,
		Name:      name,
		AccountID: c.authPlayerID,
	})
	if err != nil {
		return "", err
	}
	base := c.hub.publicURL
	if base == "" {
		base = "ws://" + c.host
	}
	return strings.TrimRight(base, "/") + "/play?ticket=" + url.QueryEscape(ticket), nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
