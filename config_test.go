package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "server" || cfg.SessionName != DefaultSessionName || cfg.MatchType != DefaultMatchType {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.MaxSearchResults != 10000 || cfg.MaxPublicConnections != 4 || cfg.JoinFirstMatchOnly {
		t.Errorf("unexpected session defaults %+v", cfg)
	}
	if cfg.FireCooldown != 250*time.Millisecond {
		t.Errorf("unexpected cooldown %s", cfg.FireCooldown)
	}
	spawns, err := cfg.SpawnVectors()
	if err != nil || len(spawns) != 4 || spawns[1] != (Vec3{X: 800, Z: 96}) {
		t.Errorf("unexpected spawns %v %v", spawns, err)
	}
	if cams := cfg.ViewTargets(); len(cams) != 4 || cams[0] != "CamNorth" {
		t.Errorf("unexpected cameras %v", cams)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("ARENA_PLAYER_NAME=FromFile\nARENA_RESPAWN_DELAY=5s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("ARENA_PLAYER_NAME")
		os.Unsetenv("ARENA_RESPAWN_DELAY")
	})
	t.Setenv("ARENA_MATCH_TYPE", "FromEnv")
	t.Setenv("ARENA_HEALTH_NOTIFY", "on-change")

	cfg, err := LoadConfig([]string{"-match-type", "FromFlag", "-mode", "client", "-action", "host"}, envFile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PlayerName != "FromFile" || cfg.RespawnDelay != 5*time.Second {
		t.Errorf(".env values not applied: %+v", cfg)
	}
	if cfg.MatchType != "FromFlag" {
		t.Errorf("flag should override env, got %s", cfg.MatchType)
	}
	if cfg.Mode != "client" || cfg.ClientAction != "host" {
		t.Errorf("unexpected mode %s/%s", cfg.Mode, cfg.ClientAction)
	}
	if cfg.WorldConfig(nil).Policy != NotifyOnChange {
		t.Error("expected on-change policy")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	if _, err := LoadConfig([]string{"-mode", "peer"}, missing); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := LoadConfig([]string{"-action", "spectate"}, missing); err == nil {
		t.Error("expected error for unknown action")
	}
	t.Setenv("ARENA_SPAWN_POINTS", "1,2")
	if _, err := LoadConfig(nil, missing); err == nil {
		t.Error("expected error for a malformed spawn point")
	}
}

func TestSessionShareLink(t *testing.T) {
	if got := SessionShareLink("https://arena.example/", "abc"); got != "https://arena.example/ws#abc" {
		t.Errorf("unexpected link %s", got)
	}
	png, err := SessionQR("https://arena.example", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Error("expected PNG output")
	}
}
