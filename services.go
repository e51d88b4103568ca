package main

import "time"

// MovementService drives an entity's body. Implementations decide whether
// intents are simulated locally or forwarded to the authority.
type MovementService interface {
	ApplyMovementIntent(forward, right float64)
	ApplyLookDelta(yaw, pitch float64)
	Jump()
	Location() Vec3
	Rotation() Rotator
	SetLocation(loc Vec3)
}

// ClassToken names a spawnable class
type ClassToken string

// EntityHandle identifies a spawned entity. Empty means nothing spawned.
type EntityHandle string

// SpawnService instantiates entities on the authority
type SpawnService interface {
	Spawn(class ClassToken, t Transform, instigator, owner string) EntityHandle
}

// ClipToken names an animation clip
type ClipToken string

// AnimationService plays clips on an entity's mesh
type AnimationService interface {
	Play(clip ClipToken, rate float64)
}

// ViewTarget names something a view can look through: an entity or a
// placed camera
type ViewTarget string

// ViewService controls the local player's primary view
type ViewService interface {
	SetPrimaryView(target ViewTarget, blend time.Duration)
}
