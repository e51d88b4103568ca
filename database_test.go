package main

import "testing"

func TestStatsFromJournal(t *testing.T) {
	db := newTestDB(t)
	victim, err := db.CreatePlayer("victim", "")
	if err != nil {
		t.Fatal(err)
	}
	killer, err := db.CreatePlayer("killer", "")
	if err != nil {
		t.Fatal(err)
	}

	journal := NewAnalytics(db)
	journal.Track(EvtShotFired, killer, 0, "s1", string(ClassDefaultBall))
	journal.Track(EvtShotFired, killer, 0, "s1", string(ClassPowerBall))
	journal.Track(EvtPlayerDeath, victim, killer, "s1", "")
	journal.Track(EvtPlayerRespawn, victim, 0, "s1", "")
	journal.Track(EvtPlayerDeath, victim, 0, "s1", "")
	journal.Stop()

	ks, err := db.GetStats(killer)
	if err != nil {
		t.Fatal(err)
	}
	if ks.Kills != 1 || ks.Shots != 2 || ks.Deaths != 0 {
		t.Errorf("unexpected killer stats %+v", ks)
	}
	vs, _ := db.GetStats(victim)
	if vs.Deaths != 2 || vs.Respawns != 1 || vs.Kills != 0 {
		t.Errorf("unexpected victim stats %+v", vs)
	}

	lb, err := db.GetLeaderboard("kills", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lb) != 2 || lb[0].Username != "killer" || lb[0].Rank != 1 || lb[1].Rank != 2 {
		t.Errorf("unexpected leaderboard %+v", lb)
	}
	lb, _ = db.GetLeaderboard("deaths", 1)
	if len(lb) != 1 || lb[0].Username != "victim" {
		t.Errorf("unexpected deaths leaderboard %+v", lb)
	}
	if _, err := db.GetLeaderboard("1; DROP TABLE players", 10); err != nil {
		t.Errorf("unknown columns should fall back to kills: %v", err)
	}
}

func TestEventCounts(t *testing.T) {
	db := newTestDB(t)
	journal := NewAnalytics(db)
	journal.Track(EvtSessionCreated, 0, 0, "s1", "GameSession")
	journal.Track(EvtServerTravel, 0, 0, "s1", "/Game/Maps/Arena?listen")
	journal.Track(EvtServerTravel, 0, 0, "s1", "/Game/Maps/Arena?listen")
	journal.Stop()

	counts, err := journal.EventCounts(1)
	if err != nil {
		t.Fatal(err)
	}
	if counts[EvtSessionCreated] != 1 || counts[EvtServerTravel] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestNilJournalIsSafe(t *testing.T) {
	var journal *Analytics
	journal.Track(EvtShotFired, 1, 0, "s", "")
	journal.SetConcurrentPeers(3)
	journal.SetActiveSessions(1)
}

func TestSessionHistory(t *testing.T) {
	db := newTestDB(t)
	sm := NewSessionManager(WorldConfig{Route: DefaultMapRoute}, db, nil)

	s, err := sm.CreateSession("h", "Pancho", "GameSession", SessionSettings{MaxPublicConnections: 4, Advertise: true})
	if err != nil {
		t.Fatal(err)
	}
	sm.DestroySession("h", "GameSession")

	rows, err := db.GetSessionHistory(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one session row, got %d", len(rows))
	}
	r := rows[0]
	if r.ID != s.ID || r.Owner != "Pancho" || r.Route != DefaultMapRoute || r.MaxSlots != 4 {
		t.Errorf("unexpected row %+v", r)
	}
	if !r.EndedAt.Valid {
		t.Error("destroyed session should have an end time")
	}
}

func TestSettings(t *testing.T) {
	db := newTestDB(t)
	if db.GetSetting("missing") != "" {
		t.Error("missing key should read empty")
	}
	db.SetSetting("k", "1")
	db.SetSetting("k", "2")
	if v := db.GetSetting("k"); v != "2" {
		t.Errorf("expected upsert to 2, got %q", v)
	}
}

func TestGetPlayerMissing(t *testing.T) {
	db := newTestDB(t)
	p, err := db.GetPlayerByUsername("ghost")
	if err != nil || p != nil {
		t.Errorf("expected nil, nil; got %v, %v", p, err)
	}
}
