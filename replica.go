package main

import (
	"log"
	"time"
)

// ReplicaConfig wires a ReplicaWorld to the client's services
type ReplicaConfig struct {
	Invoker     Invoker
	Input       InputSender
	Diagnostics Diagnostics
	View        ViewService
	Logger      *log.Logger // animation output, nil discards
	Policy      NotifyPolicy
}

// ReplicaWorld is an observer's copy of a World. It is fed by snapshots and
// authority broadcasts and never writes canonical state; the only thing it
// sends is the local player's input and fire requests.
type ReplicaWorld struct {
	cfg       ReplicaConfig
	sessionID string
	route     string
	localID   string
	maxHealth float64
	cooldown  time.Duration
	cameras   []ViewTarget

	sched     *TickScheduler
	players   map[string]*Player
	anims     map[string]*LogAnimator
	localBody *RemoteBody

	projectiles []ProjectileState
	pickups     []PickupState
	lastTick    uint64
	applied     bool
}

// NewReplicaWorld creates the replica described by a welcome frame,
// including the locally controlled player
func NewReplicaWorld(w WelcomeFrame, cfg ReplicaConfig) *ReplicaWorld {
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = nopDiagnostics{}
	}
	r := &ReplicaWorld{
		cfg:       cfg,
		sessionID: w.SessionID,
		route:     w.Route,
		localID:   w.PlayerID,
		maxHealth: w.MaxHealth,
		cooldown:  seconds(w.Cooldown),
		cameras:   w.Cameras,
		sched:     NewTickScheduler(),
		players:   make(map[string]*Player),
		anims:     make(map[string]*LogAnimator),
		localBody: NewRemoteBody(cfg.Input),
	}
	r.addPlayer(PlayerState{ID: w.PlayerID, Health: w.MaxHealth, MaxHealth: w.MaxHealth, Alive: true})
	return r
}

func (r *ReplicaWorld) addPlayer(st PlayerState) *Player {
	local := st.ID == r.localID
	var body MovementService = &ReplicaBody{}
	if local {
		body = r.localBody
	}
	maxHealth := st.MaxHealth
	if maxHealth <= 0 {
		maxHealth = r.maxHealth
	}
	anim := NewLogAnimator(st.ID, r.cfg.Logger)
	cfg := PlayerConfig{
		Role:        RoleObserver,
		Local:       local,
		Body:        body,
		Scheduler:   r.sched,
		Invoker:     r.cfg.Invoker,
		Animation:   anim,
		Diagnostics: r.cfg.Diagnostics,
		MaxHealth:   maxHealth,
		Cooldown:    r.cooldown,
		Policy:      r.cfg.Policy,
	}
	if local {
		cfg.View = r.cfg.View
		cfg.Cameras = r.cameras
	}
	p := NewPlayer(st.ID, st.Name, cfg)
	r.players[st.ID] = p
	r.anims[st.ID] = anim
	return p
}

// Local returns the locally controlled player
func (r *ReplicaWorld) Local() *Player { return r.players[r.localID] }

// Player returns a replicated player by ID
func (r *ReplicaWorld) Player(id string) *Player { return r.players[id] }

// Animator returns the animator of a replicated player
func (r *ReplicaWorld) Animator(id string) *LogAnimator { return r.anims[id] }

// PlayerCount returns the number of replicated players
func (r *ReplicaWorld) PlayerCount() int { return len(r.players) }

func (r *ReplicaWorld) SessionID() string              { return r.sessionID }
func (r *ReplicaWorld) Route() string                  { return r.route }
func (r *ReplicaWorld) Tick() uint64                   { return r.lastTick }
func (r *ReplicaWorld) Projectiles() []ProjectileState { return r.projectiles }
func (r *ReplicaWorld) Pickups() []PickupState         { return r.pickups }

// Advance runs the replica's deferred events (fire cooldowns)
func (r *ReplicaWorld) Advance(dt time.Duration) int {
	return r.sched.Advance(dt)
}

// Flush forwards the local player's pending input
func (r *ReplicaWorld) Flush() error {
	return r.localBody.Flush()
}

// ApplyFrame routes an incoming world frame
func (r *ReplicaWorld) ApplyFrame(f Frame) {
	switch f.Kind {
	case FrameSnapshot:
		r.ApplySnapshot(*f.Snapshot)
	case FrameRPC:
		r.ApplyRPC(*f.RPC)
	}
}

// ApplySnapshot replaces the replicated state. Snapshots that are not newer
// than the last applied one are dropped and false is returned.
func (r *ReplicaWorld) ApplySnapshot(s Snapshot) bool {
	if r.applied && s.Tick <= r.lastTick {
		return false
	}
	r.applied = true
	r.lastTick = s.Tick
	if s.Route != "" {
		r.route = s.Route
	}

	seen := make(map[string]bool, len(s.Players))
	for _, st := range s.Players {
		seen[st.ID] = true
		p, ok := r.players[st.ID]
		if !ok {
			p = r.addPlayer(st)
		}
		p.Name = st.Name
		p.Score = st.Score
		p.Deaths = st.Deaths

		p.Body.SetLocation(st.Location)
		if rb, ok := p.Body.(*ReplicaBody); ok {
			rb.yaw = st.Yaw
		}
		p.Health.ApplyReplicated(st.Health)

		// reconcile a life state the broadcasts have not told us about yet
		switch {
		case !st.Alive && p.Life.Alive():
			p.Life.MarkDead()
		case st.Alive && !p.Life.Alive():
			p.Life.Respawn(st.Location)
		}
	}
	for id := range r.players {
		if id != r.localID && !seen[id] {
			delete(r.players, id)
			delete(r.anims, id)
		}
	}

	r.projectiles = s.Projectiles
	r.pickups = s.Pickups
	return true
}

// ApplyRPC runs an authority broadcast on this machine
func (r *ReplicaWorld) ApplyRPC(rpc RPC) bool {
	p, ok := r.players[rpc.Source]
	if !ok {
		return false
	}
	switch rpc.Kind {
	case RPCFireAnimation:
		p.PlayFireAnimation()
	case RPCDeath:
		p.Health.ApplyReplicated(0)
		p.Life.MarkDead()
		killer := rpc.Killer
		if k, ok := r.players[rpc.Killer]; ok && k.Name != "" {
			killer = k.Name
		}
		if killer != "" {
			notifyf(r.cfg.Diagnostics, SeverityInfo, "%s was killed by %s", p.Name, killer)
		}
	case RPCRespawn:
		p.Respawn(rpc.Location)
	default:
		return false
	}
	return true
}
