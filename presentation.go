package main

import (
	"log"
	"time"
)

// LogAnimator plays clips by logging them. Headless clients and the
// authority use it in place of a mesh.
type LogAnimator struct {
	entity string
	logger *log.Logger
	plays  int
	last   ClipToken
}

// NewLogAnimator creates an animator for entity. A nil logger discards.
func NewLogAnimator(entity string, logger *log.Logger) *LogAnimator {
	return &LogAnimator{entity: entity, logger: logger}
}

func (a *LogAnimator) Play(clip ClipToken, rate float64) {
	a.plays++
	a.last = clip
	if a.logger != nil {
		a.logger.Printf("%s plays %s x%.1f", a.entity, clip, rate)
	}
}

// Plays returns how many clips were played and the latest one
func (a *LogAnimator) Plays() (int, ClipToken) { return a.plays, a.last }

// SpectatorView tracks what the local view is looking through
type SpectatorView struct {
	logger  *log.Logger
	current ViewTarget
}

// NewSpectatorView creates a view. A nil logger discards.
func NewSpectatorView(logger *log.Logger) *SpectatorView {
	return &SpectatorView{logger: logger}
}

func (v *SpectatorView) SetPrimaryView(target ViewTarget, blend time.Duration) {
	v.current = target
	if v.logger != nil {
		v.logger.Printf("view -> %s (blend %s)", target, blend)
	}
}

// Current returns the active view target
func (v *SpectatorView) Current() ViewTarget { return v.current }
