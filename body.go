package main

import "math"

const (
	BodyAccel         = 2048.0 // units/s² at full intent
	BodyMaxWalkSpeed  = 500.0  // units/s
	BodyBraking       = 2000.0 // units/s² when there is no intent
	BodyAirControl    = 0.35   // fraction of accel available while airborne
	BodyJumpZVelocity = 700.0
	BodyGravity       = 980.0
	BodyRadius        = 42.0
	BodyHalfHeight    = 96.0
	MaxPitch          = 1.5 // radians, just under straight up/down
	killZ             = -5000.0
)

// KinematicBody is the authority-side movement simulation for a player. It
// accumulates intents between ticks and integrates them in Update.
type KinematicBody struct {
	loc      Vec3
	vel      Vec3
	yaw      float64
	pitch    float64
	fwd      float64
	right    float64
	grounded bool
	floorZ   float64
}

// NewKinematicBody creates a grounded body standing at loc
func NewKinematicBody(loc Vec3) *KinematicBody {
	return &KinematicBody{loc: loc, floorZ: loc.Z, grounded: true}
}

func (b *KinematicBody) ApplyMovementIntent(forward, right float64) {
	b.fwd = Clamp(b.fwd+forward, -1, 1)
	b.right = Clamp(b.right+right, -1, 1)
}

func (b *KinematicBody) ApplyLookDelta(yaw, pitch float64) {
	b.yaw = NormalizeAngle(b.yaw + yaw)
	b.pitch = Clamp(b.pitch+pitch, -MaxPitch, MaxPitch)
}

func (b *KinematicBody) Jump() {
	if !b.grounded {
		return
	}
	b.vel.Z = BodyJumpZVelocity
	b.grounded = false
}

func (b *KinematicBody) Location() Vec3 { return b.loc }

// Rotation is the actor facing: yaw only, the pitch stays on the view
func (b *KinematicBody) Rotation() Rotator { return Rotator{Yaw: b.yaw} }

// ControlRotation is the full view rotation including pitch
func (b *KinematicBody) ControlRotation() Rotator { return Rotator{Yaw: b.yaw, Pitch: b.pitch} }

func (b *KinematicBody) Velocity() Vec3 { return b.vel }

// SetLocation teleports the body and stops it
func (b *KinematicBody) SetLocation(loc Vec3) {
	b.loc = loc
	b.vel = Vec3{}
	b.floorZ = loc.Z
	b.grounded = true
	b.fwd, b.right = 0, 0
}

// Update integrates one tick (dt in seconds) and clears pending intents
func (b *KinematicBody) Update(dt float64) {
	rot := Rotator{Yaw: b.yaw}
	dir := rot.Forward().Scale(b.fwd).Add(rot.Right().Scale(b.right))
	dir.Z = 0

	accel := BodyAccel * dt
	if !b.grounded {
		accel *= BodyAirControl
	}

	if dir.Len() > 0 {
		b.vel.X += dir.X * accel
		b.vel.Y += dir.Y * accel
	} else if b.grounded {
		// Brake toward a stop instead of coasting
		speed := math.Hypot(b.vel.X, b.vel.Y)
		if speed > 0 {
			next := math.Max(speed-BodyBraking*dt, 0)
			scale := next / speed
			b.vel.X *= scale
			b.vel.Y *= scale
		}
	}

	// Clamp horizontal speed
	speed := math.Hypot(b.vel.X, b.vel.Y)
	if speed > BodyMaxWalkSpeed {
		scale := BodyMaxWalkSpeed / speed
		b.vel.X *= scale
		b.vel.Y *= scale
	}

	if !b.grounded {
		b.vel.Z -= BodyGravity * dt
	}

	b.loc = b.loc.Add(b.vel.Scale(dt))

	if !b.grounded && b.loc.Z <= b.floorZ {
		b.loc.Z = b.floorZ
		b.vel.Z = 0
		b.grounded = true
	}

	b.fwd, b.right = 0, 0
}
