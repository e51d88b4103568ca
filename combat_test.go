package main

import "testing"

func newCombatPlayer(id string) *Player {
	return NewPlayer(id, id, PlayerConfig{
		Role:      RoleAuthority,
		Body:      NewKinematicBody(Vec3{}),
		Scheduler: NewTickScheduler(),
		MaxHealth: 100,
	})
}

func TestApplyDamage(t *testing.T) {
	p := newCombatPlayer("victim")

	died := ApplyDamage(p, "shooter", 50)
	if died {
		t.Error("should not die from 50 damage")
	}
	if p.Health.Current() != 50 {
		t.Errorf("expected HP 50, got %v", p.Health.Current())
	}
	if p.LastKiller != "shooter" {
		t.Errorf("expected last killer shooter, got %q", p.LastKiller)
	}

	died = ApplyDamage(p, "shooter", 60)
	if !died {
		t.Error("should die from 60 more damage")
	}
	if p.Health.Current() != 0 {
		t.Errorf("expected HP clamped to 0, got %v", p.Health.Current())
	}
}

func TestApplyDamageToDeadPlayer(t *testing.T) {
	p := newCombatPlayer("victim")
	ApplyDamage(p, "a", 100)

	died := ApplyDamage(p, "b", 50)
	if died {
		t.Error("dead player should not die again")
	}
	if p.LastKiller != "a" {
		t.Errorf("a dead player's killer should not change, got %q", p.LastKiller)
	}
}
