package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// inputEvery is how many ticks pass between input flushes
const inputEvery = 2

var errLobbyClosed = errors.New("lobby connection closed")

type worldFrame struct {
	link  *Link
	frame Frame
}

// GameClient is a headless player. It runs the session workflow against the
// lobby, travels into worlds and keeps a replica of the current one. All
// replica and orchestrator work happens on the Run loop goroutine.
type GameClient struct {
	cfg    Config
	name   string
	diag   Diagnostics
	logger *log.Logger

	lobby   *Link
	backend *RemoteSessionBackend
	orch    *SessionOrchestrator
	view    *SpectatorView

	ctx     context.Context
	world   *Link
	replica *ReplicaWorld
	frames  chan worldFrame
	ticks   uint64
}

// NewGameClient creates a client. A nil logger uses log.Default().
func NewGameClient(cfg Config, logger *log.Logger) *GameClient {
	if logger == nil {
		logger = log.Default()
	}
	name := cfg.PlayerName
	if name == "" {
		name = GenerateGuestName()
	}
	return &GameClient{
		cfg:    cfg,
		name:   name,
		diag:   NewLogDiagnostics(logger, name+": "),
		logger: logger,
		view:   NewSpectatorView(logger),
		frames: make(chan worldFrame, sendBufSize),
	}
}

// Run connects to the lobby, performs the configured action and plays
// until ctx ends or the lobby goes away
func (c *GameClient) Run(ctx context.Context) error {
	lobby, err := DialLink(ctx, c.cfg.LobbyURL)
	if err != nil {
		return err
	}
	c.lobby = lobby
	c.backend = NewRemoteSessionBackend(lobby, c.name)
	c.backend.OnTravelComplete(c.onTraveled)
	c.orch = NewSessionOrchestrator(c.cfg.OrchestratorConfig(), c.backend, c, c.diag)

	g, ctx := errgroup.WithContext(ctx)
	c.ctx = ctx
	g.Go(func() error { return lobby.Run(ctx, c.backend.HandleMessage) })
	g.Go(func() error { return c.loop(ctx) })
	return g.Wait()
}

func (c *GameClient) loop(ctx context.Context) error {
	defer func() {
		if c.world != nil {
			c.world.Close()
		}
		c.lobby.Close()
	}()

	var err error
	if c.cfg.ClientAction == "host" {
		err = c.orch.CreateGameSession()
	} else {
		err = c.orch.JoinGameSession()
	}
	if err != nil {
		return err
	}

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.lobby.Done():
			if ctx.Err() != nil {
				return nil
			}
			return errLobbyClosed
		case wf := <-c.frames:
			c.applyFrame(wf)
		case <-ticker.C:
			c.tick(TickDuration)
		}
	}
}

func (c *GameClient) applyFrame(wf worldFrame) {
	if wf.link != c.world {
		return // from a world we already left
	}
	switch wf.frame.Kind {
	case FrameWelcome:
		w := wf.frame.Welcome
		c.replica = NewReplicaWorld(*w, ReplicaConfig{
			Invoker:     wf.link,
			Input:       wf.link,
			Diagnostics: c.diag,
			View:        c.view,
			Logger:      c.logger,
			Policy:      ParseNotifyPolicy(c.cfg.HealthNotifyPolicy),
		})
		notifyf(c.diag, SeverityInfo, "Entered %s as %s", w.Route, w.PlayerID)
	default:
		if c.replica != nil {
			c.replica.ApplyFrame(wf.frame)
		}
	}
}

func (c *GameClient) tick(dt time.Duration) {
	c.ticks++
	c.backend.Pump()
	if c.replica == nil {
		return
	}
	c.replica.Advance(dt)
	if c.cfg.Autopilot {
		c.drive()
	}
	if c.ticks%inputEvery == 0 {
		if err := c.replica.Flush(); err != nil {
			log.Printf("input flush: %v", err)
		}
	}
}

// drive is the autopilot: run forward in a slow circle and keep firing;
// while dead, cycle spectator cameras once a second
func (c *GameClient) drive() {
	p := c.replica.Local()
	if p == nil {
		return
	}
	if !p.Life.Alive() {
		if c.ticks%TickRate == 0 {
			p.ChangeCamera(1)
		}
		return
	}
	p.Move(1, 0)
	p.Look(0.01, 0)
	p.StartFire()
}

// ServerTravel moves the hosted session to route; the lobby answers with
// a seat in it
func (c *GameClient) ServerTravel(route string) error {
	notifyf(c.diag, SeverityInfo, "Server travel to %s", route)
	return c.backend.Travel(c.cfg.SessionName, route)
}

func (c *GameClient) onTraveled(msg TraveledMsg) {
	if err := c.ClientTravel(msg.Connect, TravelAbsolute); err != nil {
		notifyf(c.diag, SeverityAlert, "Could not enter hosted world: %v", err)
	}
}

// ClientTravel leaves the current world and connects to address
func (c *GameClient) ClientTravel(address string, mode TravelMode) error {
	if mode != TravelAbsolute {
		return fmt.Errorf("client travel: %s travel is not supported", mode)
	}
	link, err := DialLink(c.ctx, address)
	if err != nil {
		return err
	}
	if c.world != nil {
		c.world.Close()
	}
	c.world = link
	c.replica = nil

	go func() {
		err := link.Run(c.ctx, func(kind int, data []byte) {
			if kind != websocket.BinaryMessage {
				return
			}
			f, err := DecodeFrame(data)
			if err != nil {
				log.Printf("world frame: %v", err)
				return
			}
			select {
			case c.frames <- worldFrame{link: link, frame: f}:
			case <-link.Done():
			}
		})
		if err != nil {
			log.Printf("world link: %v", err)
		}
	}()
	return nil
}

// Replica returns the current world replica, nil before the welcome frame
func (c *GameClient) Replica() *ReplicaWorld { return c.replica }
