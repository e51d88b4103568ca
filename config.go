package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DefaultSessionName = "GameSession"
	DefaultMatchType   = "TeamMach"
	DefaultMapRoute    = "/Game/Maps/Arena"
	// DefaultSearchResults is how many sessions a join asks for
	DefaultSearchResults = 10000
)

// Config is the process configuration. Values come from defaults, then an
// optional .env file, then ARENA_* environment variables, then flags.
type Config struct {
	Mode      string `env:"ARENA_MODE"       envDefault:"server"`
	Addr      string `env:"ARENA_ADDR"       envDefault:":8080"`
	DBPath    string `env:"ARENA_DB"         envDefault:"arena.db"`
	PublicURL string `env:"ARENA_PUBLIC_URL"`

	// Client mode
	LobbyURL     string `env:"ARENA_LOBBY_URL"     envDefault:"ws://localhost:8080/ws"`
	ClientAction string `env:"ARENA_CLIENT_ACTION" envDefault:"join"`
	PlayerName   string `env:"ARENA_PLAYER_NAME"`
	Autopilot    bool   `env:"ARENA_AUTOPILOT"     envDefault:"true"`

	// Session orchestration
	SessionName          string `env:"ARENA_SESSION_NAME"      envDefault:"GameSession"`
	MatchType            string `env:"ARENA_MATCH_TYPE"        envDefault:"TeamMach"`
	MapRoute             string `env:"ARENA_MAP_ROUTE"         envDefault:"/Game/Maps/Arena"`
	MaxPublicConnections int    `env:"ARENA_MAX_CONNECTIONS"   envDefault:"4"`
	MaxSearchResults     int    `env:"ARENA_MAX_SEARCH"        envDefault:"10000"`
	JoinFirstMatchOnly   bool   `env:"ARENA_JOIN_FIRST_MATCH"`

	// Gameplay tuning
	MaxHealth          float64       `env:"ARENA_MAX_HEALTH"        envDefault:"100"`
	FireCooldown       time.Duration `env:"ARENA_FIRE_COOLDOWN"     envDefault:"250ms"`
	RespawnDelay       time.Duration `env:"ARENA_RESPAWN_DELAY"     envDefault:"3s"`
	PickupInterval     time.Duration `env:"ARENA_PICKUP_INTERVAL"   envDefault:"15s"`
	SpawnPoints        []string      `env:"ARENA_SPAWN_POINTS"      envSeparator:";" envDefault:"0,0,96;800,0,96;0,800,96;-800,0,96"`
	Cameras            []string      `env:"ARENA_CAMERAS"           envSeparator:"," envDefault:"CamNorth,CamEast,CamSouth,CamWest"`
	HealthNotifyPolicy string        `env:"ARENA_HEALTH_NOTIFY"     envDefault:"always"`
}

// LoadConfig builds the configuration. envFile may be missing.
func LoadConfig(args []string, envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fset := flag.NewFlagSet("arena", flag.ContinueOnError)
	fset.StringVar(&cfg.Mode, "mode", cfg.Mode, "server or client")
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty disables persistence)")
	fset.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "Base websocket URL advertised in connect strings")
	fset.StringVar(&cfg.LobbyURL, "lobby", cfg.LobbyURL, "Lobby websocket URL (client mode)")
	fset.StringVar(&cfg.ClientAction, "action", cfg.ClientAction, "host or join (client mode)")
	fset.StringVar(&cfg.PlayerName, "name", cfg.PlayerName, "Player display name (client mode)")
	fset.BoolVar(&cfg.Autopilot, "autopilot", cfg.Autopilot, "Move and fire automatically (client mode)")
	fset.StringVar(&cfg.MatchType, "match-type", cfg.MatchType, "MatchType attribute to advertise and filter on")
	fset.BoolVar(&cfg.JoinFirstMatchOnly, "join-first", cfg.JoinFirstMatchOnly, "Join only the first matching session")
	fset.StringVar(&cfg.HealthNotifyPolicy, "health-notify", cfg.HealthNotifyPolicy, "always or on-change")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Mode != "server" && cfg.Mode != "client" {
		return Config{}, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if cfg.ClientAction != "host" && cfg.ClientAction != "join" {
		return Config{}, fmt.Errorf("unknown client action %q", cfg.ClientAction)
	}
	if _, err := cfg.SpawnVectors(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SpawnVectors parses SpawnPoints ("x,y,z" each)
func (c Config) SpawnVectors() ([]Vec3, error) {
	out := make([]Vec3, 0, len(c.SpawnPoints))
	for _, p := range c.SpawnPoints {
		parts := strings.Split(strings.TrimSpace(p), ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("spawn point %q: want x,y,z", p)
		}
		var xyz [3]float64
		for i, s := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("spawn point %q: %w", p, err)
			}
			xyz[i] = v
		}
		out = append(out, Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	return out, nil
}

// ViewTargets returns the spectator cameras
func (c Config) ViewTargets() []ViewTarget {
	out := make([]ViewTarget, 0, len(c.Cameras))
	for _, name := range c.Cameras {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, ViewTarget(name))
		}
	}
	return out
}

// WorldConfig returns the template every hosted world starts from
func (c Config) WorldConfig(diag Diagnostics) WorldConfig {
	spawns, _ := c.SpawnVectors()
	return WorldConfig{
		Route:          c.MapRoute,
		MaxHealth:      c.MaxHealth,
		Cooldown:       c.FireCooldown,
		RespawnDelay:   c.RespawnDelay,
		PickupInterval: c.PickupInterval,
		SpawnPoints:    spawns,
		Cameras:        c.ViewTargets(),
		Policy:         ParseNotifyPolicy(c.HealthNotifyPolicy),
		Diagnostics:    diag,
	}
}

// OrchestratorConfig returns the session workflow settings
func (c Config) OrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		SessionName:          c.SessionName,
		MatchType:            c.MatchType,
		MapRoute:             c.MapRoute,
		MaxPublicConnections: c.MaxPublicConnections,
		MaxSearchResults:     c.MaxSearchResults,
		JoinFirstMatchOnly:   c.JoinFirstMatchOnly,
	}
}
