package main

import (
	"log"
	"math"
	"sync"
	"time"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 30 // snapshots per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxProjectilesPerWorld = 256
	maxPlayersPerWorld     = 16
	// authorityFireSlack shortens the authority's cooldown so shots that
	// arrive slightly early because of network jitter are not rejected
	authorityFireSlack = 20 * time.Millisecond
	// maxLookDelta bounds the yaw and pitch change of one input frame
	maxLookDelta = math.Pi
)

// Peer receives frames for one connected player
type Peer interface {
	// SendReliable queues a frame that must not be dropped
	SendReliable(data []byte) error
	// SendUnreliable queues a frame that may be dropped under back-pressure
	SendUnreliable(data []byte)
}

// WorldConfig holds the rules of one world
type WorldConfig struct {
	SessionID      string
	Route          string
	MaxPlayers     int
	MaxHealth      float64
	Cooldown       time.Duration
	RespawnDelay   time.Duration
	PickupInterval time.Duration // 0 disables power pickups
	SpawnPoints    []Vec3
	Cameras        []ViewTarget
	Policy         NotifyPolicy
	Diagnostics    Diagnostics
	Journal        *Analytics
}

// World is the authority for one session. It simulates players and
// projectiles and replicates the result to every attached peer.
type World struct {
	mu          sync.Mutex
	cfg         WorldConfig
	route       string
	players     map[string]*Player
	bodies      map[string]*KinematicBody
	projectiles map[string]*Projectile
	pickups     map[string]*Pickup
	peers       map[string]Peer
	sched       *TickScheduler
	guard       *RPCGuard
	grid        *SpatialGrid
	tick        uint64
	nextSpawn   int
	nextPickup  int
	stopped     bool
	stop        chan struct{}
}

// NewWorld creates a World
func NewWorld(cfg WorldConfig) *World {
	if cfg.MaxPlayers <= 0 || cfg.MaxPlayers > maxPlayersPerWorld {
		cfg.MaxPlayers = maxPlayersPerWorld
	}
	if cfg.MaxHealth <= 0 {
		cfg.MaxHealth = DefaultMaxHealth
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = seconds(DefaultFireCooldown)
	}
	if cfg.RespawnDelay <= 0 {
		cfg.RespawnDelay = seconds(DefaultRespawnDelay)
	}
	if len(cfg.SpawnPoints) == 0 {
		cfg.SpawnPoints = []Vec3{{Z: BodyHalfHeight}}
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = nopDiagnostics{}
	}
	w := &World{
		cfg:         cfg,
		route:       cfg.Route,
		players:     make(map[string]*Player),
		bodies:      make(map[string]*KinematicBody),
		projectiles: make(map[string]*Projectile),
		pickups:     make(map[string]*Pickup),
		peers:       make(map[string]Peer),
		sched:       NewTickScheduler(),
		guard:       NewRPCGuard(),
		grid:        NewSpatialGrid(SpatialCellSize),
		stop:        make(chan struct{}),
	}
	if cfg.PickupInterval > 0 {
		w.sched.After(cfg.PickupInterval, w.spawnPickup)
	}
	return w
}

// Run starts the game loop
func (w *World) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.update()
		case <-w.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (w *World) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.stop)
	}
}

// AddPlayer spawns a new authority player. Returns nil if the world is full.
func (w *World) AddPlayer(name string, authID int64) *Player {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.players) >= w.cfg.MaxPlayers {
		return nil
	}

	id := GenerateID(4)
	body := NewKinematicBody(w.nextSpawnPoint())
	var p *Player
	p = NewPlayer(id, name, PlayerConfig{
		Role:        RoleAuthority,
		Body:        body,
		Scheduler:   w.sched,
		Invoker:     w,
		Spawner:     w,
		Diagnostics: w.cfg.Diagnostics,
		Cameras:     w.cfg.Cameras,
		MaxHealth:   w.cfg.MaxHealth,
		Cooldown:    w.cfg.Cooldown - authorityFireSlack,
		Policy:      w.cfg.Policy,
		OnDeath:     DeathHandlerFunc(func() { w.onPlayerDeath(p) }),
	})
	p.AuthPlayerID = authID
	w.players[id] = p
	w.bodies[id] = body
	w.cfg.Journal.Track(EvtPlayerJoined, authID, 0, w.cfg.SessionID, name)
	return p
}

// RemovePlayer removes a player and its peer
func (w *World) RemovePlayer(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return
	}
	delete(w.players, id)
	delete(w.bodies, id)
	delete(w.peers, id)
	w.guard.Forget(id)
	w.cfg.Journal.Track(EvtPlayerLeft, p.AuthPlayerID, 0, w.cfg.SessionID, p.Name)
}

// Attach connects a peer to a player and sends it the welcome frame
func (w *World) Attach(playerID string, peer Peer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.players[playerID]; !ok {
		return ErrPlayerNotFound
	}
	w.peers[playerID] = peer
	data, err := EncodeFrame(Frame{Kind: FrameWelcome, Welcome: &WelcomeFrame{
		PlayerID:  playerID,
		SessionID: w.cfg.SessionID,
		Route:     w.route,
		MaxHealth: w.cfg.MaxHealth,
		Cooldown:  w.cfg.Cooldown.Seconds(),
		Cameras:   w.cfg.Cameras,
	}})
	if err != nil {
		return err
	}
	return peer.SendReliable(data)
}

// HasPlayer checks whether a player is in the world
func (w *World) HasPlayer(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.players[id]
	return ok
}

// PlayerCount returns the number of players
func (w *World) PlayerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.players)
}

// Route returns the map route the world is running
func (w *World) Route() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.route
}

// HandleInput applies a batch of movement intents from a player's owner
func (w *World) HandleInput(playerID string, in InputFrame) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[playerID]
	if !ok {
		return
	}
	if !finite(in.Forward, in.Right, in.Yaw, in.Pitch) {
		return
	}
	if in.Forward != 0 || in.Right != 0 {
		p.Move(Clamp(in.Forward, -1, 1), Clamp(in.Right, -1, 1))
	}
	if in.Yaw != 0 || in.Pitch != 0 {
		p.Look(Clamp(in.Yaw, -maxLookDelta, maxLookDelta), Clamp(in.Pitch, -maxLookDelta, maxLookDelta))
	}
	if in.Jump {
		p.Jumped()
	}
}

// HandleRPC validates and runs a request sent by the owner of playerID
func (w *World) HandleRPC(playerID string, rpc RPC) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.players[playerID]; !ok {
		return ErrPlayerNotFound
	}
	if err := w.guard.Admit(playerID, rpc); err != nil {
		return err
	}
	w.dispatchToAuthority(rpc)
	return nil
}

// StagePowerBall gives a player a one-shot projectile class
func (w *World) StagePowerBall(playerID string, class ClassToken) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[playerID]
	if !ok || !KnownProjectileClass(class) {
		return false
	}
	return p.ChangePowerBall(class)
}

// Travel moves the world to a new map route. Everyone respawns and all
// projectiles and pickups are cleared.
func (w *World) Travel(route string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.route = route
	w.projectiles = make(map[string]*Projectile)
	w.pickups = make(map[string]*Pickup)
	w.nextSpawn = 0
	for _, id := range w.sortedPlayerIDs() {
		w.respawn(w.players[id], w.nextSpawnPoint())
	}
	w.cfg.Journal.Track(EvtServerTravel, 0, 0, w.cfg.SessionID, route)
	log.Printf("world %s: server travel to %s", w.cfg.SessionID, route)
}

// Step advances the world by n ticks. The game loop uses it with n=1.
func (w *World) Step(n int) {
	for i := 0; i < n; i++ {
		w.update()
	}
}

// Snapshot returns the current replicated state
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// update runs one game tick
func (w *World) update() {
	w.mu.Lock()
	defer w.mu.Unlock()

	dt := TickDuration.Seconds()
	w.tick++
	w.sched.Advance(TickDuration)

	for _, body := range w.bodies {
		body.Update(dt)
	}

	for id, proj := range w.projectiles {
		proj.Update(dt)
		if !proj.Alive {
			delete(w.projectiles, id)
		}
	}

	for id, pk := range w.pickups {
		pk.Update(dt)
		if !pk.Alive {
			delete(w.pickups, id)
		}
	}

	w.checkHits()
	w.checkPickups()

	if w.tick%BroadcastEvery == 0 {
		w.broadcastState()
	}
}

// Spawn implements SpawnService for the world's players
func (w *World) Spawn(class ClassToken, t Transform, instigator, owner string) EntityHandle {
	if len(w.projectiles) >= maxProjectilesPerWorld {
		return ""
	}
	proj := NewProjectile(class, t, instigator, owner)
	w.projectiles[proj.ID] = proj
	authID := int64(0)
	if p, ok := w.players[owner]; ok {
		authID = p.AuthPlayerID
	}
	w.cfg.Journal.Track(EvtShotFired, authID, 0, w.cfg.SessionID, string(class))
	return EntityHandle(proj.ID)
}

// SendToAuthority runs a request on this machine: the world is the
// authority. Called with w.mu held.
func (w *World) SendToAuthority(rpc RPC) error {
	if !rpc.Kind.ToAuthority() {
		return ErrWrongDirection
	}
	w.dispatchToAuthority(rpc)
	return nil
}

// BroadcastToObservers runs rpc locally and sends it to every peer. Called
// with w.mu held.
func (w *World) BroadcastToObservers(rpc RPC) error {
	if rpc.Kind.ToAuthority() {
		return ErrWrongDirection
	}
	if p, ok := w.players[rpc.Source]; ok && rpc.Kind == RPCFireAnimation {
		p.PlayFireAnimation()
	}
	data, err := EncodeFrame(Frame{Kind: FrameRPC, RPC: &rpc})
	if err != nil {
		return err
	}
	for id, peer := range w.peers {
		if err := peer.SendReliable(data); err != nil {
			log.Printf("world %s: reliable send to %s: %v", w.cfg.SessionID, id, err)
		}
	}
	return nil
}

func (w *World) dispatchToAuthority(rpc RPC) {
	switch rpc.Kind {
	case RPCServerFire:
		if p, ok := w.players[rpc.Source]; ok {
			// The authority runs its own gate, so a client cannot fire
			// faster than the cooldown or while dead.
			p.StartFire()
		}
	}
}

// onPlayerDeath is the authority's death handler
func (w *World) onPlayerDeath(p *Player) {
	p.Deaths++
	var killerAuth int64
	if killer, ok := w.players[p.LastKiller]; ok && killer != p {
		killer.Score++
		killerAuth = killer.AuthPlayerID
	}
	w.cfg.Journal.Track(EvtPlayerDeath, p.AuthPlayerID, killerAuth, w.cfg.SessionID, p.LastKiller)
	if err := w.BroadcastToObservers(RPC{Kind: RPCDeath, Source: p.ID, Killer: p.LastKiller}); err != nil {
		log.Printf("death of %s: %v", p.ID, err)
	}

	pos := w.nextSpawnPoint()
	w.sched.After(w.cfg.RespawnDelay, func() {
		// The player may have left or already been respawned by a travel
		if cur, ok := w.players[p.ID]; ok && cur == p && !p.Life.Alive() {
			w.respawn(p, pos)
		}
	})
}

func (w *World) respawn(p *Player, pos Vec3) {
	p.LastKiller = ""
	p.Respawn(pos)
	w.cfg.Journal.Track(EvtPlayerRespawn, p.AuthPlayerID, 0, w.cfg.SessionID, "")
	if err := w.BroadcastToObservers(RPC{Kind: RPCRespawn, Source: p.ID, Location: pos}); err != nil {
		log.Printf("respawn of %s: %v", p.ID, err)
	}
}

func (w *World) nextSpawnPoint() Vec3 {
	pt := w.cfg.SpawnPoints[w.nextSpawn%len(w.cfg.SpawnPoints)]
	w.nextSpawn++
	return pt
}

func (w *World) spawnPickup() {
	if len(w.pickups) < maxPickups {
		pt := w.cfg.SpawnPoints[w.nextPickup%len(w.cfg.SpawnPoints)]
		w.nextPickup++
		pk := NewPickup(ClassPowerBall, pt)
		w.pickups[pk.ID] = pk
	}
	w.sched.After(w.cfg.PickupInterval, w.spawnPickup)
}

// broadcastState sends the current snapshot to all peers
func (w *World) broadcastState() {
	if len(w.peers) == 0 {
		return
	}
	snap := w.snapshot()
	data, err := EncodeFrame(Frame{Kind: FrameSnapshot, Snapshot: &snap})
	if err != nil {
		log.Printf("world %s: encode snapshot: %v", w.cfg.SessionID, err)
		return
	}
	for _, peer := range w.peers {
		peer.SendUnreliable(data)
	}
}

func (w *World) snapshot() Snapshot {
	snap := Snapshot{
		Tick:        w.tick,
		Route:       w.route,
		Players:     make([]PlayerState, 0, len(w.players)),
		Projectiles: make([]ProjectileState, 0, len(w.projectiles)),
		Pickups:     make([]PickupState, 0, len(w.pickups)),
	}
	for _, id := range w.sortedPlayerIDs() {
		snap.Players = append(snap.Players, w.players[id].ToState())
	}
	for _, proj := range w.projectiles {
		snap.Projectiles = append(snap.Projectiles, proj.ToState())
	}
	for _, pk := range w.pickups {
		snap.Pickups = append(snap.Pickups, pk.ToState())
	}
	return snap
}
