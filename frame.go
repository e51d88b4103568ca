package main

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// FrameKind tags a binary world frame
type FrameKind uint8

const (
	FrameInput    FrameKind = 1 // client -> authority: movement intent
	FrameRPC      FrameKind = 2 // both directions: remote effect request
	FrameSnapshot FrameKind = 3 // authority -> client: replicated state
	FrameWelcome  FrameKind = 4 // authority -> client: sent once on entering a world
)

// InputFrame carries one batch of movement intents
type InputFrame struct {
	Forward float64 `msgpack:"f,omitempty"`
	Right   float64 `msgpack:"r,omitempty"`
	Yaw     float64 `msgpack:"y,omitempty"`
	Pitch   float64 `msgpack:"p,omitempty"`
	Jump    bool    `msgpack:"j,omitempty"`
}

// PlayerState is the replicated view of one player
type PlayerState struct {
	ID        string  `msgpack:"id"`
	Name      string  `msgpack:"n"`
	Location  Vec3    `msgpack:"l"`
	Yaw       float64 `msgpack:"yw"`
	Health    float64 `msgpack:"hp"`
	MaxHealth float64 `msgpack:"mhp"`
	Alive     bool    `msgpack:"a"`
	Score     int     `msgpack:"sc"`
	Deaths    int     `msgpack:"d"`
}

// ProjectileState is the replicated view of one projectile
type ProjectileState struct {
	ID    string  `msgpack:"id"`
	Class string  `msgpack:"c"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	Z     float64 `msgpack:"z"`
	Owner string  `msgpack:"o"`
}

// PickupState is the replicated view of one power pickup
type PickupState struct {
	ID    string  `msgpack:"id"`
	Class string  `msgpack:"c"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	Z     float64 `msgpack:"z"`
}

// Snapshot is the full replicated world state at a tick. Observers apply
// snapshots in tick order and drop stale ones.
type Snapshot struct {
	Tick        uint64            `msgpack:"t"`
	Route       string            `msgpack:"rt"`
	Players     []PlayerState     `msgpack:"p"`
	Projectiles []ProjectileState `msgpack:"pr"`
	Pickups     []PickupState     `msgpack:"pk"`
}

// WelcomeFrame tells a client which player it controls
type WelcomeFrame struct {
	PlayerID  string       `msgpack:"id"`
	SessionID string       `msgpack:"sid"`
	Route     string       `msgpack:"rt"`
	MaxHealth float64      `msgpack:"mhp"`
	Cooldown  float64      `msgpack:"cd"`
	Cameras   []ViewTarget `msgpack:"cams"`
}

// Frame is the binary envelope for world traffic
type Frame struct {
	Kind     FrameKind     `msgpack:"k"`
	Input    *InputFrame   `msgpack:"i,omitempty"`
	RPC      *RPC          `msgpack:"r,omitempty"`
	Snapshot *Snapshot     `msgpack:"s,omitempty"`
	Welcome  *WelcomeFrame `msgpack:"w,omitempty"`
}

// EncodeFrame marshals a frame with msgpack
func EncodeFrame(f Frame) ([]byte, error) {
	return msgpack.Marshal(&f)
}

// DecodeFrame unmarshals a frame and checks that its payload matches its kind
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	var ok bool
	switch f.Kind {
	case FrameInput:
		ok = f.Input != nil
	case FrameRPC:
		ok = f.RPC != nil
	case FrameSnapshot:
		ok = f.Snapshot != nil
	case FrameWelcome:
		ok = f.Welcome != nil
	}
	if !ok {
		return Frame{}, fmt.Errorf("decode frame: kind %d without payload", f.Kind)
	}
	return f, nil
}
