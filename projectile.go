package main

// Projectile is a ball in flight, simulated only on the authority
type Projectile struct {
	ID         string
	Class      ClassToken
	OwnerID    string
	Instigator string
	Location   Vec3
	Velocity   Vec3
	Rotation   Rotator
	Radius     float64
	Damage     float64
	Life       float64
	Alive      bool
}

// NewProjectile creates a projectile of the given class at a spawn transform
func NewProjectile(class ClassToken, t Transform, instigator, owner string) *Projectile {
	def := GetProjectileClass(class)
	return &Projectile{
		ID:         GenerateID(3),
		Class:      class,
		OwnerID:    owner,
		Instigator: instigator,
		Location:   t.Location,
		Velocity:   t.Rotation.Forward().Scale(def.Speed),
		Rotation:   t.Rotation,
		Radius:     def.Radius,
		Damage:     def.Damage,
		Life:       def.Lifetime,
		Alive:      true,
	}
}

// Update moves the projectile one tick
func (p *Projectile) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.Location = p.Location.Add(p.Velocity.Scale(dt))
	p.Life -= dt

	if p.Life <= 0 || p.Location.Z < killZ {
		p.Alive = false
	}
}

// ToState converts to protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    p.ID,
		Class: string(p.Class),
		X:     round1(p.Location.X),
		Y:     round1(p.Location.Y),
		Z:     round1(p.Location.Z),
		Owner: p.OwnerID,
	}
}
