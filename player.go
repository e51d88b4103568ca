package main

import (
	"log"
	"time"
)

const (
	DefaultMaxHealth    = 100.0
	DefaultFireCooldown = 0.25 // seconds between shots
	DefaultRespawnDelay = 3.0  // seconds before respawn
)

// PlayerConfig wires a Player to the services of the machine it lives on
type PlayerConfig struct {
	Role        Role
	Local       bool // controlled by this machine's user
	Body        MovementService
	Scheduler   Scheduler
	Invoker     Invoker
	Spawner     SpawnService // authority only
	Animation   AnimationService
	View        ViewService
	Diagnostics Diagnostics
	Cameras     []ViewTarget
	MaxHealth   float64
	Cooldown    time.Duration
	Policy      NotifyPolicy
	OnDeath     DeathHandler
}

// Player is a controllable actor. Every machine holds one instance per
// player; only the authority's instance writes canonical state.
type Player struct {
	ID   string
	Name string

	Body   MovementService
	Health *HealthState
	Life   *LifecycleController
	Gate   *ActionGate

	Score        int
	Deaths       int
	LastKiller   string // ID of whoever landed the last damaging hit
	AuthPlayerID int64  // 0 = guest

	role   Role
	local  bool
	weapon *Weapon
	rpc    Invoker
	anim   AnimationService
	diag   Diagnostics
}

// NewPlayer creates an alive, full-health player
func NewPlayer(id, name string, cfg PlayerConfig) *Player {
	if cfg.MaxHealth <= 0 {
		cfg.MaxHealth = DefaultMaxHealth
	}
	if cfg.Diagnostics == nil {
		cfg.Diagnostics = nopDiagnostics{}
	}
	p := &Player{
		ID:    id,
		Name:  name,
		Body:  cfg.Body,
		role:  cfg.Role,
		local: cfg.Local,
		rpc:   cfg.Invoker,
		anim:  cfg.Animation,
		diag:  cfg.Diagnostics,
	}
	p.Health = NewHealthState(cfg.Role, cfg.MaxHealth, p.onHealthUpdate)
	p.Health.SetPolicy(cfg.Policy)
	p.Life = NewLifecycleController(LifecycleConfig{
		Local:   cfg.Local,
		Self:    ViewTarget(id),
		Health:  p.Health,
		Body:    cfg.Body,
		View:    cfg.View,
		Cameras: cfg.Cameras,
		OnDeath: cfg.OnDeath,
	})
	p.Gate = NewActionGate(cfg.Cooldown, cfg.Scheduler, p.Life, p.requestFire)
	if cfg.Role == RoleAuthority {
		p.weapon = NewWeapon(ClassDefaultBall, cfg.Spawner)
	}
	return p
}

func (p *Player) Role() Role    { return p.role }
func (p *Player) IsLocal() bool { return p.local }

// onHealthUpdate runs after every authority write and on replica delivery
func (p *Player) onHealthUpdate() {
	current := p.Health.Current()

	if p.local {
		notifyf(p.diag, SeverityInfo, "You now have %.0f health remaining.", current)
		if current <= 0 {
			notifyf(p.diag, SeverityAlert, "You have been killed.")
		}
	}

	if p.role == RoleAuthority {
		notifyf(p.diag, SeverityInfo, "%s now has %.0f health remaining.", p.Name, current)
	}

	if current <= 0 {
		p.Life.MarkDead()
	}
}

// TakeDamage applies damage on the authority. Dead players ignore damage.
func (p *Player) TakeDamage(amount float64) bool {
	if !p.Life.Alive() {
		return false
	}
	return p.Health.TakeDamage(amount)
}

// Move applies a movement intent unless dead
func (p *Player) Move(forward, right float64) bool {
	return p.Life.Move(forward, right)
}

// Look turns the view
func (p *Player) Look(yaw, pitch float64) bool {
	return p.Life.Look(yaw, pitch)
}

// Jumped jumps unless dead
func (p *Player) Jumped() bool {
	return p.Life.Jump()
}

// ChangeCamera cycles spectator cameras while dead
func (p *Player) ChangeCamera(delta int) (ViewTarget, bool) {
	return p.Life.ChangeCamera(delta)
}

// StartFire triggers the weapon through the fire-rate gate
func (p *Player) StartFire() bool {
	return p.Gate.StartFire()
}

// Respawn resets the player at pos
func (p *Player) Respawn(pos Vec3) {
	p.Life.Respawn(pos)
}

// ChangePowerBall stages a one-shot projectile class. Authority only.
func (p *Player) ChangePowerBall(class ClassToken) bool {
	if p.weapon == nil {
		return false
	}
	p.weapon.Stage(class)
	return true
}

// StagedPowerBall returns the staged one-shot class, if any
func (p *Player) StagedPowerBall() ClassToken {
	if p.weapon == nil {
		return ""
	}
	return p.weapon.Staged()
}

// requestFire is the gate's fire callback. Observers ask the authority; the
// authority fires directly.
func (p *Player) requestFire() {
	if p.role == RoleAuthority {
		p.HandleFire()
		return
	}
	if p.rpc == nil {
		return
	}
	if err := p.rpc.SendToAuthority(RPC{Kind: RPCServerFire, Source: p.ID}); err != nil {
		log.Printf("fire request for %s: %v", p.ID, err)
	}
}

// HandleFire spawns a projectile and broadcasts the attack animation. It
// only has an effect on the authority.
func (p *Player) HandleFire() (EntityHandle, bool) {
	if p.role != RoleAuthority || p.weapon == nil || p.Body == nil {
		return "", false
	}
	handle, _ := p.weapon.Fire(p.Body.Location(), p.Body.Rotation(), p.ID, p.ID)
	if p.rpc != nil {
		if err := p.rpc.BroadcastToObservers(RPC{Kind: RPCFireAnimation, Source: p.ID}); err != nil {
			log.Printf("fire animation for %s: %v", p.ID, err)
		}
	}
	return handle, handle != ""
}

// PlayFireAnimation is the multicast side of a shot
func (p *Player) PlayFireAnimation() {
	if p.anim != nil {
		p.anim.Play(ClipAttack, AttackPlayRate)
	}
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	s := PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		Health:    p.Health.Current(),
		MaxHealth: p.Health.Max(),
		Alive:     p.Life.Alive(),
		Score:     p.Score,
		Deaths:    p.Deaths,
	}
	if p.Body != nil {
		loc := p.Body.Location()
		s.Location = Vec3{round1(loc.X), round1(loc.Y), round1(loc.Z)}
		s.Yaw = p.Body.Rotation().Yaw
	}
	return s
}
