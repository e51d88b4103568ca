package main

import (
	"errors"
	"testing"
)

func TestRPCGuard(t *testing.T) {
	g := NewRPCGuard()

	tests := []struct {
		name    string
		owner   string
		rpc     RPC
		wantErr error
	}{
		{"first request", "p1", RPC{Kind: RPCServerFire, Source: "p1", Seq: 1}, nil},
		{"foreign source", "p1", RPC{Kind: RPCServerFire, Source: "p2", Seq: 2}, ErrForeignSource},
		{"empty source", "p1", RPC{Kind: RPCServerFire, Seq: 2}, ErrForeignSource},
		{"replayed sequence", "p1", RPC{Kind: RPCServerFire, Source: "p1", Seq: 1}, ErrStaleSequence},
		{"broadcast kind", "p1", RPC{Kind: RPCDeath, Source: "p1", Seq: 3}, ErrWrongDirection},
		{"next request", "p1", RPC{Kind: RPCServerFire, Source: "p1", Seq: 5}, nil},
		{"other owner independent", "p2", RPC{Kind: RPCServerFire, Source: "p2", Seq: 1}, nil},
	}
	for _, tt := range tests {
		err := g.Admit(tt.owner, tt.rpc)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.wantErr)
		}
	}

	g.Forget("p1")
	if err := g.Admit("p1", RPC{Kind: RPCServerFire, Source: "p1", Seq: 1}); err != nil {
		t.Errorf("forgotten owner should start over: %v", err)
	}
}

func TestSequencerStamps(t *testing.T) {
	s := newSequencer()
	a1 := s.stamp(RPC{Kind: RPCServerFire, Source: "a"})
	a2 := s.stamp(RPC{Kind: RPCServerFire, Source: "a"})
	b1 := s.stamp(RPC{Kind: RPCServerFire, Source: "b"})
	if a1.Seq != 1 || a2.Seq != 2 || b1.Seq != 1 {
		t.Errorf("unexpected sequence numbers %d %d %d", a1.Seq, a2.Seq, b1.Seq)
	}
}

func TestDecodeFrame(t *testing.T) {
	data, err := EncodeFrame(Frame{Kind: FrameRPC, RPC: &RPC{Kind: RPCRespawn, Source: "p1", Location: Vec3{X: 1, Y: 2, Z: 3}}})
	if err != nil {
		t.Fatal(err)
	}
	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	if f.RPC.Kind != RPCRespawn || f.RPC.Location != (Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected rpc %+v", f.RPC)
	}

	bare, _ := EncodeFrame(Frame{Kind: FrameSnapshot})
	if _, err := DecodeFrame(bare); err == nil {
		t.Error("expected error for a snapshot frame without payload")
	}
	if _, err := DecodeFrame([]byte{0xc1}); err == nil {
		t.Error("expected error for garbage")
	}
}
