package main

import (
	"database/sql"
	"log"
	"sync"
	"time"
)

// Event types for the analytics journal
const (
	EvtSessionCreated   = "session.created"
	EvtSessionDestroyed = "session.destroyed"
	EvtServerTravel     = "session.server_travel"
	EvtPlayerJoined     = "lifecycle.player_joined"
	EvtPlayerLeft       = "lifecycle.player_left"
	EvtPlayerDeath      = "lifecycle.player_died"
	EvtPlayerRespawn    = "lifecycle.player_respawned"
	EvtShotFired        = "combat.shot_fired"
)

// AnalyticsEvent represents a single trackable event. OtherID is the second
// account involved, e.g. the killer of a death.
type AnalyticsEvent struct {
	Type      string
	PlayerID  int64
	OtherID   int64
	SessionID string
	Data      string
	Timestamp time.Time
}

// Analytics handles event tracking with batched background writes. Stats
// counters for accounts are updated in the same batch.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup

	// Live metrics
	mu              sync.RWMutex
	concurrentPeers int
	activeSessions  int
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, 1024),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking). A nil
// Analytics discards events.
func (a *Analytics) Track(evtType string, playerID, otherID int64, sessionID, data string) {
	if a == nil {
		return
	}
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		PlayerID:  playerID,
		OtherID:   otherID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full: drop the event, the game loop must not block
	}
}

// SetConcurrentPeers updates live player count metric
func (a *Analytics) SetConcurrentPeers(n int) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.concurrentPeers = n
	a.mu.Unlock()
}

// SetActiveSessions updates live session count metric
func (a *Analytics) SetActiveSessions(n int) {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.activeSessions = n
	a.mu.Unlock()
}

// GetLiveMetrics returns current live metrics
func (a *Analytics) GetLiveMetrics() (int, int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.concurrentPeers, a.activeSessions
}

// Stop flushes pending events and shuts down the writer
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= 50 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// Drain what is already queued; Track never blocks so
			// nothing waits on the channel
		drain:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					break drain
				}
			}
			if len(batch) > 0 {
				a.flush(batch)
			}
			return
		}
	}
}

// flush writes a batch of events and their stats increments
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Printf("analytics: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_id, other_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("analytics: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: evt.PlayerID, Valid: evt.PlayerID > 0}
		oid := sql.NullInt64{Int64: evt.OtherID, Valid: evt.OtherID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, oid, sid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.Printf("analytics: insert error: %v", err)
		}
		if err := applyStats(tx, evt); err != nil {
			log.Printf("analytics: stats error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("analytics: commit error: %v", err)
	}
}

// applyStats bumps the account counters an event contributes to
func applyStats(tx *sql.Tx, evt AnalyticsEvent) error {
	var err error
	switch evt.Type {
	case EvtPlayerDeath:
		if evt.PlayerID > 0 {
			_, err = tx.Exec("UPDATE stats SET deaths = deaths + 1 WHERE player_id = ?", evt.PlayerID)
		}
		if err == nil && evt.OtherID > 0 && evt.OtherID != evt.PlayerID {
			_, err = tx.Exec("UPDATE stats SET kills = kills + 1 WHERE player_id = ?", evt.OtherID)
		}
	case EvtShotFired:
		if evt.PlayerID > 0 {
			_, err = tx.Exec("UPDATE stats SET shots = shots + 1 WHERE player_id = ?", evt.PlayerID)
		}
	case EvtPlayerRespawn:
		if evt.PlayerID > 0 {
			_, err = tx.Exec("UPDATE stats SET respawns = respawns + 1 WHERE player_id = ?", evt.PlayerID)
		}
	}
	return err
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}
