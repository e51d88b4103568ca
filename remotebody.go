package main

// InputSender carries movement intents to the authority
type InputSender interface {
	SendInput(in InputFrame) error
}

// RemoteBody is the locally controlled player's body on an observer. Intents
// are batched and forwarded to the authority; the location comes back in
// snapshots.
type RemoteBody struct {
	out     InputSender
	loc     Vec3
	rot     Rotator
	pending InputFrame
	dirty   bool
}

// NewRemoteBody creates a body that forwards to out
func NewRemoteBody(out InputSender) *RemoteBody {
	return &RemoteBody{out: out}
}

func (b *RemoteBody) ApplyMovementIntent(forward, right float64) {
	b.pending.Forward = Clamp(b.pending.Forward+forward, -1, 1)
	b.pending.Right = Clamp(b.pending.Right+right, -1, 1)
	b.dirty = true
}

// ApplyLookDelta turns the local view at once and forwards the delta
func (b *RemoteBody) ApplyLookDelta(yaw, pitch float64) {
	b.rot.Yaw = NormalizeAngle(b.rot.Yaw + yaw)
	b.rot.Pitch = Clamp(b.rot.Pitch+pitch, -MaxPitch, MaxPitch)
	b.pending.Yaw += yaw
	b.pending.Pitch += pitch
	b.dirty = true
}

func (b *RemoteBody) Jump() {
	b.pending.Jump = true
	b.dirty = true
}

func (b *RemoteBody) Location() Vec3     { return b.loc }
func (b *RemoteBody) Rotation() Rotator  { return Rotator{Yaw: b.rot.Yaw} }
func (b *RemoteBody) SetLocation(l Vec3) { b.loc = l }

// Flush sends the intents gathered since the last flush
func (b *RemoteBody) Flush() error {
	if !b.dirty || b.out == nil {
		return nil
	}
	in := b.pending
	b.pending = InputFrame{}
	b.dirty = false
	return b.out.SendInput(in)
}

// ReplicaBody is another player's body on an observer. It only follows
// snapshots; intents are ignored.
type ReplicaBody struct {
	loc Vec3
	yaw float64
}

func (b *ReplicaBody) ApplyMovementIntent(forward, right float64) {}
func (b *ReplicaBody) ApplyLookDelta(yaw, pitch float64)          {}
func (b *ReplicaBody) Jump()                                      {}
func (b *ReplicaBody) Location() Vec3                             { return b.loc }
func (b *ReplicaBody) Rotation() Rotator                          { return Rotator{Yaw: b.yaw} }
func (b *ReplicaBody) SetLocation(l Vec3)                         { b.loc = l }
