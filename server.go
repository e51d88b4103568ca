package main

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Lobby WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip, r.Host)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	// World WebSocket endpoint, opened with a ticket from join or travel
	mux.HandleFunc("/play", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		ticket, err := hub.auth.ValidateTicket(r.URL.Query().Get("ticket"))
		if err != nil {
			http.Error(w, "invalid ticket", http.StatusUnauthorized)
			return
		}
		sess, err := hub.sessions.ClaimSeat(ticket.SessionID, ticket.Seat)
		switch {
		case errors.Is(err, ErrSessionNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, "invalid ticket", http.StatusUnauthorized)
			return
		}
		player := sess.World.AddPlayer(ticket.Name, ticket.AccountID)
		if player == nil {
			http.Error(w, "session full", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			sess.World.RemovePlayer(player.ID)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip, r.Host)
		client.world = sess.World
		client.sessionID = sess.ID
		client.playerID = player.ID
		client.authPlayerID = ticket.AccountID
		hub.register <- client

		if err := sess.World.Attach(player.ID, client); err != nil {
			log.Printf("attach %s to %s: %v", player.ID, sess.ID, err)
		}
		log.Printf("player %s (%s) entered session %s", player.ID, player.Name, sess.ID)

		go client.WritePump()
		go client.ReadPump()
	})

	// QR code of the session share link
	mux.HandleFunc("/qr", func(w http.ResponseWriter, r *http.Request) {
		sid := r.URL.Query().Get("sid")
		if hub.sessions.GetSession(sid) == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		base := hub.publicURL
		if base == "" {
			base = "ws://" + r.Host
		}
		png, err := SessionQR(base, sid)
		if err != nil {
			log.Printf("qr error: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"sessions": hub.sessions.Count(),
			"clients":  hub.ClientCount(),
		})
	})

	return mux
}
