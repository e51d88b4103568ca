package main

// LifeState is the death/respawn state of an entity
type LifeState uint8

const (
	Alive LifeState = 0
	Dead  LifeState = 1
)

func (s LifeState) String() string {
	if s == Dead {
		return "dead"
	}
	return "alive"
}

// DeathHandler is invoked once per Alive→Dead transition
type DeathHandler interface {
	OnDeath()
}

// DeathHandlerFunc adapts a function to DeathHandler
type DeathHandlerFunc func()

func (f DeathHandlerFunc) OnDeath() { f() }

// LifecycleController gates an entity's actions on its life state and runs
// respawns. While dead the spectator cameras can be cycled.
type LifecycleController struct {
	state   LifeState
	local   bool
	self    ViewTarget
	health  *HealthState
	body    MovementService
	view    ViewService
	cameras []ViewTarget
	camera  int
	onDeath DeathHandler
}

// LifecycleConfig wires a controller to the entity it belongs to
type LifecycleConfig struct {
	Local   bool
	Self    ViewTarget
	Health  *HealthState
	Body    MovementService
	View    ViewService
	Cameras []ViewTarget
	OnDeath DeathHandler
}

// NewLifecycleController creates an Alive controller
func NewLifecycleController(cfg LifecycleConfig) *LifecycleController {
	return &LifecycleController{
		state:   Alive,
		local:   cfg.Local,
		self:    cfg.Self,
		health:  cfg.Health,
		body:    cfg.Body,
		view:    cfg.View,
		cameras: cfg.Cameras,
		onDeath: cfg.OnDeath,
	}
}

func (l *LifecycleController) State() LifeState { return l.state }
func (l *LifecycleController) Alive() bool      { return l.state == Alive }

// SetDeathHandler replaces the death handler
func (l *LifecycleController) SetDeathHandler(h DeathHandler) {
	l.onDeath = h
}

// SetCameras replaces the spectator camera set and resets the index
func (l *LifecycleController) SetCameras(cameras []ViewTarget) {
	l.cameras = cameras
	l.camera = 0
}

// MarkDead moves Alive→Dead and runs the death handler. Repeated calls while
// dead do nothing and return false.
func (l *LifecycleController) MarkDead() bool {
	if l.state == Dead {
		return false
	}
	l.state = Dead
	if l.onDeath != nil {
		l.onDeath.OnDeath()
	}
	return true
}

// Respawn brings the entity back at pos with full health. Calling it while
// alive is a full reset.
func (l *LifecycleController) Respawn(pos Vec3) {
	l.state = Alive
	if l.health != nil {
		if l.health.Role() == RoleAuthority {
			l.health.SetCurrentHealth(l.health.Max())
		} else {
			l.health.ApplyReplicated(l.health.Max())
		}
	}
	if l.local && l.view != nil {
		l.view.SetPrimaryView(l.self, 0)
	}
	if l.body != nil {
		l.body.SetLocation(pos)
	}
}

// Move forwards a movement intent unless dead
func (l *LifecycleController) Move(forward, right float64) bool {
	if l.state == Dead || l.body == nil {
		return false
	}
	l.body.ApplyMovementIntent(forward, right)
	return true
}

// Look is allowed in every state so a dead player can still orbit
func (l *LifecycleController) Look(yaw, pitch float64) bool {
	if l.body == nil {
		return false
	}
	l.body.ApplyLookDelta(yaw, pitch)
	return true
}

// Jump forwards a jump unless dead
func (l *LifecycleController) Jump() bool {
	if l.state == Dead || l.body == nil {
		return false
	}
	l.body.Jump()
	return true
}

// ChangeCamera steps through the spectator cameras, wrapping in both
// directions. Only allowed while dead.
func (l *LifecycleController) ChangeCamera(delta int) (ViewTarget, bool) {
	if l.state != Dead || len(l.cameras) == 0 {
		return "", false
	}
	n := len(l.cameras)
	l.camera = ((l.camera+delta)%n + n) % n
	target := l.cameras[l.camera]
	if l.view != nil {
		l.view.SetPrimaryView(target, 0)
	}
	return target, true
}

// CameraIndex returns the current spectator camera index
func (l *LifecycleController) CameraIndex() int {
	return l.camera
}
