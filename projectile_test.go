package main

import (
	"math"
	"testing"
)

func TestNewProjectile(t *testing.T) {
	tr := SpawnTransform(Vec3{X: 500, Y: 500, Z: 96}, Rotator{})
	proj := NewProjectile(ClassDefaultBall, tr, "owner1", "owner1")
	def := GetProjectileClass(ClassDefaultBall)

	if proj.OwnerID != "owner1" {
		t.Errorf("expected owner owner1, got %s", proj.OwnerID)
	}
	if !proj.Alive {
		t.Error("projectile should be alive")
	}
	if proj.Life != def.Lifetime {
		t.Errorf("expected lifetime %f, got %f", def.Lifetime, proj.Life)
	}
	// Should be spawned ahead of and above the owner
	if proj.Location.X <= 500 || proj.Location.Z <= 96 {
		t.Errorf("projectile should spawn ahead and above, got %v", proj.Location)
	}
	// Velocity follows the spawn rotation
	if math.Abs(proj.Velocity.X-def.Speed) > 1e-9 || math.Abs(proj.Velocity.Y) > 1e-9 {
		t.Errorf("expected velocity ~(%f, 0), got %v", def.Speed, proj.Velocity)
	}
}

func TestProjectileClasses(t *testing.T) {
	power := NewProjectile(ClassPowerBall, Transform{}, "a", "a")
	def := NewProjectile(ClassDefaultBall, Transform{}, "a", "a")
	if power.Damage <= def.Damage || power.Radius <= def.Radius {
		t.Error("power ball should hit harder and be larger")
	}

	unknown := NewProjectile("Mystery", Transform{}, "a", "a")
	if unknown.Damage != def.Damage {
		t.Error("unknown classes should fall back to the default ball")
	}
	if KnownProjectileClass("Mystery") || !KnownProjectileClass(ClassPowerBall) {
		t.Error("unexpected class registry")
	}
}

func TestProjectileUpdate(t *testing.T) {
	proj := NewProjectile(ClassDefaultBall, Transform{Location: Vec3{X: 100, Y: 100}}, "a", "a")
	speed := GetProjectileClass(ClassDefaultBall).Speed

	dt := 1.0 / 60.0
	proj.Update(dt)
	expectedX := 100 + speed*dt
	if math.Abs(proj.Location.X-expectedX) > 0.01 {
		t.Errorf("expected X ~%f, got %f", expectedX, proj.Location.X)
	}
}

func TestProjectileExpiry(t *testing.T) {
	proj := NewProjectile(ClassDefaultBall, Transform{}, "a", "a")
	proj.Life = 0.01
	proj.Update(1.0 / 60.0)
	if proj.Alive {
		t.Error("projectile should die when life expires")
	}

	falling := NewProjectile(ClassDefaultBall, Transform{Location: Vec3{Z: killZ + 1}, Rotation: Rotator{Pitch: -1.5}}, "a", "a")
	falling.Update(1.0 / 60.0)
	if falling.Alive {
		t.Error("projectile below the kill plane should die")
	}
}

func TestProjectileToState(t *testing.T) {
	proj := NewProjectile(ClassPowerBall, Transform{Location: Vec3{X: 1.04, Y: 2.06, Z: 3}}, "a", "owner")
	st := proj.ToState()
	if st.Class != string(ClassPowerBall) || st.Owner != "owner" || st.X != 1 || st.Y != 2.1 {
		t.Errorf("unexpected state %+v", st)
	}
}
