package main

import (
	"errors"
	"fmt"
)

// RPCKind identifies a remote effect request
type RPCKind uint8

const (
	// RPCServerFire asks the authority to fire the source player's weapon
	RPCServerFire RPCKind = 1
	// RPCFireAnimation plays the attack clip on every machine
	RPCFireAnimation RPCKind = 2
	// RPCDeath announces a kill to every machine
	RPCDeath RPCKind = 3
	// RPCRespawn moves a dead player back into play on every machine
	RPCRespawn RPCKind = 4
)

func (k RPCKind) String() string {
	switch k {
	case RPCServerFire:
		return "server_fire"
	case RPCFireAnimation:
		return "fire_animation"
	case RPCDeath:
		return "death"
	case RPCRespawn:
		return "respawn"
	}
	return fmt.Sprintf("rpc(%d)", uint8(k))
}

// ToAuthority reports whether the kind travels from a client to the
// authority. Everything else is an authority broadcast.
func (k RPCKind) ToAuthority() bool {
	return k == RPCServerFire
}

// RPC is a remote effect request. Source is the entity the request is made
// on behalf of.
type RPC struct {
	Kind     RPCKind `msgpack:"k"`
	Source   string  `msgpack:"s"`
	Seq      uint64  `msgpack:"q,omitempty"`
	Location Vec3    `msgpack:"l,omitempty"`
	Killer   string  `msgpack:"ki,omitempty"`
}

var (
	ErrNotAuthority   = errors.New("rpc: requires authority")
	ErrForeignSource  = errors.New("rpc: source is not owned by sender")
	ErrStaleSequence  = errors.New("rpc: sequence already processed")
	ErrWrongDirection = errors.New("rpc: kind cannot be sent to authority")
)

// Invoker carries remote effect requests across the authority boundary
type Invoker interface {
	// SendToAuthority delivers rpc to the authority reliably. Each call
	// executes at most once.
	SendToAuthority(rpc RPC) error
	// BroadcastToObservers runs rpc on every machine, reliably and in
	// order per source. Only the authority may broadcast.
	BroadcastToObservers(rpc RPC) error
}

// RPCGuard validates requests arriving at the authority: the sender must own
// the source entity and each sequence number is accepted once.
type RPCGuard struct {
	last map[string]uint64
}

// NewRPCGuard creates an empty guard
func NewRPCGuard() *RPCGuard {
	return &RPCGuard{last: make(map[string]uint64)}
}

// Admit checks rpc sent by the connection that owns owner
func (g *RPCGuard) Admit(owner string, rpc RPC) error {
	if !rpc.Kind.ToAuthority() {
		return fmt.Errorf("%w: %s", ErrWrongDirection, rpc.Kind)
	}
	if rpc.Source == "" || rpc.Source != owner {
		return fmt.Errorf("%w: %q sent for %q", ErrForeignSource, owner, rpc.Source)
	}
	if rpc.Seq <= g.last[owner] {
		return fmt.Errorf("%w: %d", ErrStaleSequence, rpc.Seq)
	}
	g.last[owner] = rpc.Seq
	return nil
}

// Forget drops the sequence history of an owner that left
func (g *RPCGuard) Forget(owner string) {
	delete(g.last, owner)
}

// sequencer stamps outgoing requests with per-source increasing numbers
type sequencer struct {
	next map[string]uint64
}

func newSequencer() *sequencer {
	return &sequencer{next: make(map[string]uint64)}
}

func (s *sequencer) stamp(rpc RPC) RPC {
	s.next[rpc.Source]++
	rpc.Seq = s.next[rpc.Source]
	return rpc
}
