package main

import "time"

// Gatekeeper says whether an entity may act at all
type Gatekeeper interface {
	Alive() bool
}

// ActionGate limits an action to one trigger per cooldown. While a cycle is
// pending further triggers are ignored.
type ActionGate struct {
	cooldown time.Duration
	active   bool
	sched    Scheduler
	life     Gatekeeper
	fire     func()
}

// NewActionGate creates an idle gate. fire runs on every accepted trigger.
func NewActionGate(cooldown time.Duration, sched Scheduler, life Gatekeeper, fire func()) *ActionGate {
	return &ActionGate{
		cooldown: cooldown,
		sched:    sched,
		life:     life,
		fire:     fire,
	}
}

// Active reports whether a fire cycle is pending
func (g *ActionGate) Active() bool {
	return g.active
}

// Cooldown returns the gate's cycle length
func (g *ActionGate) Cooldown() time.Duration {
	return g.cooldown
}

// StartFire opens a fire cycle and runs the fire request. Returns false if
// the owner is dead or a cycle is already pending.
func (g *ActionGate) StartFire() bool {
	if g.active {
		return false
	}
	if g.life != nil && !g.life.Alive() {
		return false
	}
	g.active = true
	if g.sched != nil {
		g.sched.After(g.cooldown, g.StopFire)
	}
	if g.fire != nil {
		g.fire()
	}
	return true
}

// StopFire closes the fire cycle. It is the cooldown timer's callback.
func (g *ActionGate) StopFire() {
	g.active = false
}
