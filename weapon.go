package main

const (
	MuzzleForward = 100.0 // spawn distance in front of the actor
	MuzzleUp      = 50.0  // spawn height above the actor origin

	ClipAttack     ClipToken = "Attack"
	AttackPlayRate           = 2.0
)

// Weapon spawns projectiles for its owner on the authority. A staged power
// class replaces the default for exactly one shot.
type Weapon struct {
	defaultClass ClassToken
	staged       ClassToken
	spawner      SpawnService
}

// NewWeapon creates a weapon firing defaultClass through spawner
func NewWeapon(defaultClass ClassToken, spawner SpawnService) *Weapon {
	return &Weapon{defaultClass: defaultClass, spawner: spawner}
}

// Stage sets the one-shot class. An empty token clears it.
func (w *Weapon) Stage(class ClassToken) {
	w.staged = class
}

// Staged returns the currently staged class, if any
func (w *Weapon) Staged() ClassToken {
	return w.staged
}

// SpawnTransform places a shot in front of and above the actor, facing the
// actor's rotation
func SpawnTransform(loc Vec3, rot Rotator) Transform {
	return Transform{
		Location: loc.Add(rot.Forward().Scale(MuzzleForward)).Add(UpVector.Scale(MuzzleUp)),
		Rotation: rot,
	}
}

// Fire spawns one projectile and consumes the staged class if set
func (w *Weapon) Fire(loc Vec3, rot Rotator, instigator, owner string) (EntityHandle, ClassToken) {
	class := w.defaultClass
	if w.staged != "" {
		class = w.staged
		w.staged = ""
	}
	if w.spawner == nil {
		return "", class
	}
	return w.spawner.Spawn(class, SpawnTransform(loc, rot), instigator, owner), class
}
