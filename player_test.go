package main

import (
	"strings"
	"testing"
	"time"
)

type note struct {
	sev Severity
	msg string
}

// recordingDiagnostics keeps every notification
type recordingDiagnostics struct {
	notes []note
}

func (d *recordingDiagnostics) Notify(sev Severity, msg string) {
	d.notes = append(d.notes, note{sev, msg})
}

func (d *recordingDiagnostics) count(substr string) int {
	n := 0
	for _, nt := range d.notes {
		if strings.Contains(nt.msg, substr) {
			n++
		}
	}
	return n
}

// recordingSpawner remembers spawned classes
type recordingSpawner struct {
	classes []ClassToken
	last    Transform
}

func (s *recordingSpawner) Spawn(class ClassToken, t Transform, instigator, owner string) EntityHandle {
	s.classes = append(s.classes, class)
	s.last = t
	return EntityHandle(string(class) + "-" + owner)
}

// recordingInvoker remembers requests and broadcasts
type recordingInvoker struct {
	sent       []RPC
	broadcasts []RPC
}

func (r *recordingInvoker) SendToAuthority(rpc RPC) error {
	r.sent = append(r.sent, rpc)
	return nil
}

func (r *recordingInvoker) BroadcastToObservers(rpc RPC) error {
	r.broadcasts = append(r.broadcasts, rpc)
	return nil
}

func TestNewPlayer(t *testing.T) {
	p := NewPlayer("test1", "TestPilot", PlayerConfig{Role: RoleAuthority, Body: NewKinematicBody(Vec3{})})
	if p.ID != "test1" {
		t.Errorf("expected ID test1, got %s", p.ID)
	}
	if p.Name != "TestPilot" {
		t.Errorf("expected name TestPilot, got %s", p.Name)
	}
	if p.Health.Current() != DefaultMaxHealth {
		t.Errorf("expected HP %v, got %v", DefaultMaxHealth, p.Health.Current())
	}
	if !p.Life.Alive() {
		t.Error("expected player to be alive")
	}
	if p.Role() != RoleAuthority {
		t.Errorf("expected authority role, got %s", p.Role())
	}
}

func TestPlayerHealthMessagesOnAuthority(t *testing.T) {
	diag := &recordingDiagnostics{}
	p := NewPlayer("a", "Pancho", PlayerConfig{
		Role:        RoleAuthority,
		Body:        NewKinematicBody(Vec3{}),
		Diagnostics: diag,
	})

	p.TakeDamage(30)
	if diag.count("Pancho now has 70 health remaining.") != 1 {
		t.Errorf("expected one authority message, got %v", diag.notes)
	}
	if diag.count("You now have") != 0 {
		t.Error("a remote player's authority instance should not emit local messages")
	}
}

func TestPlayerHealthMessagesOnLocalObserver(t *testing.T) {
	diag := &recordingDiagnostics{}
	p := NewPlayer("a", "Pancho", PlayerConfig{
		Role:        RoleObserver,
		Local:       true,
		Body:        &ReplicaBody{},
		Diagnostics: diag,
	})

	p.Health.ApplyReplicated(40)
	if diag.count("You now have 40 health remaining.") != 1 {
		t.Errorf("expected local health message, got %v", diag.notes)
	}

	p.Health.ApplyReplicated(0)
	if diag.count("You have been killed.") != 1 {
		t.Errorf("expected kill message, got %v", diag.notes)
	}
	for _, nt := range diag.notes {
		if nt.msg == "You have been killed." && nt.sev != SeverityAlert {
			t.Error("kill message should be an alert")
		}
	}
	if p.Life.Alive() {
		t.Error("replica should be dead after health reached 0")
	}
}

func TestPlayerTakeDamageIgnoredWhileDead(t *testing.T) {
	p := NewPlayer("a", "a", PlayerConfig{Role: RoleAuthority, Body: NewKinematicBody(Vec3{})})
	p.TakeDamage(100)
	if p.Life.Alive() {
		t.Fatal("expected player to be dead")
	}
	if p.TakeDamage(10) {
		t.Error("damage to a dead player should be ignored")
	}
}

func TestObserverFireSendsRequest(t *testing.T) {
	inv := &recordingInvoker{}
	sched := NewTickScheduler()
	p := NewPlayer("me", "me", PlayerConfig{
		Role:      RoleObserver,
		Local:     true,
		Body:      &ReplicaBody{},
		Scheduler: sched,
		Invoker:   inv,
		Cooldown:  250 * time.Millisecond,
	})

	if !p.StartFire() {
		t.Fatal("first StartFire should be accepted")
	}
	if p.StartFire() {
		t.Error("StartFire during cooldown should be ignored")
	}
	if len(inv.sent) != 1 || inv.sent[0].Kind != RPCServerFire || inv.sent[0].Source != "me" {
		t.Errorf("expected one server fire request for me, got %+v", inv.sent)
	}
	if len(inv.broadcasts) != 0 {
		t.Error("an observer must not broadcast")
	}
	if _, ok := p.HandleFire(); ok {
		t.Error("HandleFire should do nothing on an observer")
	}
}

func TestAuthorityFireBroadcastsAnimation(t *testing.T) {
	inv := &recordingInvoker{}
	spawner := &recordingSpawner{}
	anim := NewLogAnimator("a", nil)
	p := NewPlayer("a", "a", PlayerConfig{
		Role:      RoleAuthority,
		Body:      NewKinematicBody(Vec3{}),
		Scheduler: NewTickScheduler(),
		Invoker:   inv,
		Spawner:   spawner,
		Animation: anim,
		Cooldown:  time.Second,
	})

	p.StartFire()
	if len(spawner.classes) != 1 {
		t.Fatalf("expected one spawn, got %d", len(spawner.classes))
	}
	if len(inv.broadcasts) != 1 || inv.broadcasts[0].Kind != RPCFireAnimation {
		t.Errorf("expected fire animation broadcast, got %+v", inv.broadcasts)
	}
	if len(inv.sent) != 0 {
		t.Error("the authority should not send to itself")
	}

	p.PlayFireAnimation()
	if n, clip := anim.Plays(); n != 1 || clip != ClipAttack {
		t.Errorf("expected Attack played once, got %d %q", n, clip)
	}
}

func TestPlayerToState(t *testing.T) {
	p := NewPlayer("a", "Pancho", PlayerConfig{Role: RoleAuthority, Body: NewKinematicBody(Vec3{X: 1.26, Y: 2, Z: 3})})
	p.Score = 2
	st := p.ToState()
	if st.ID != "a" || st.Name != "Pancho" || st.Score != 2 || !st.Alive {
		t.Errorf("unexpected state %+v", st)
	}
	if st.Location.X != 1.3 {
		t.Errorf("expected location rounded to 1.3, got %v", st.Location.X)
	}
}
