package main

const (
	PickupRadius   = 60.0
	PickupTimeout  = 30.0 // seconds before an untouched pickup despawns
	PickupInterval = 15.0 // seconds between power pickup spawns
	maxPickups     = 3
)

// Pickup is a power orb. Touching it stages its projectile class as the
// player's next shot.
type Pickup struct {
	ID       string
	Class    ClassToken
	Location Vec3
	Life     float64
	Alive    bool
}

// NewPickup spawns a pickup of class at loc
func NewPickup(class ClassToken, loc Vec3) *Pickup {
	return &Pickup{
		ID:       GenerateID(4),
		Class:    class,
		Location: loc,
		Life:     PickupTimeout,
		Alive:    true,
	}
}

// Update ticks down the pickup lifetime
func (p *Pickup) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.Life -= dt
	if p.Life <= 0 {
		p.Alive = false
	}
}

// ToState converts to protocol state
func (p *Pickup) ToState() PickupState {
	return PickupState{
		ID:    p.ID,
		Class: string(p.Class),
		X:     round1(p.Location.X),
		Y:     round1(p.Location.Y),
		Z:     round1(p.Location.Z),
	}
}
