// Package playback sequences synthesized clips through a single shared audio
// sink: grace-delayed start, two-deep chaining, manual replay.
package playback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
)

// DefaultGraceDelay is how long playback waits before the first clip, so
// audio does not land on top of a screen transition.
const DefaultGraceDelay = 800 * time.Millisecond

// Coordinator owns the one playback sink. Only one clip plays at a time;
// chained playback is exactly two clips deep.
type Coordinator struct {
	sink   repositories.Sink
	grace  time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	clips map[string]entities.Clip
}

// NewCoordinator creates a coordinator around a sink. grace <= 0 selects
// DefaultGraceDelay.
func NewCoordinator(sink repositories.Sink, grace time.Duration, logger *zap.Logger) *Coordinator {
	if grace <= 0 {
		grace = DefaultGraceDelay
	}
	return &Coordinator{
		sink:   sink,
		grace:  grace,
		logger: logger,
		clips:  make(map[string]entities.Clip),
	}
}

// SetClips replaces the replayable clip set for the current turn.
func (c *Coordinator) SetClips(clips []entities.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clips = make(map[string]entities.Clip, len(clips))
	for _, clip := range clips {
		c.clips[clip.Label] = clip
	}
}

// PlayChain plays primary after the grace delay, then secondary when the
// primary finishes. Either may be nil. Sink failures are logged and
// swallowed; autoplay refusal degrades to manual replay, never an error.
func (c *Coordinator) PlayChain(ctx context.Context, primary, secondary *entities.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return
	case <-time.After(c.grace):
	}

	if primary != nil {
		if err := c.sink.Play(ctx, primary.Audio); err != nil {
			c.logger.Debug("Playback failed", zap.String("label", primary.Label), zap.Error(err))
			return
		}
	}
	if secondary != nil {
		if err := c.sink.Play(ctx, secondary.Audio); err != nil {
			c.logger.Debug("Playback failed", zap.String("label", secondary.Label), zap.Error(err))
		}
	}
}

// Replay plays one stored clip again, without the grace delay and without
// chaining. Unknown labels and sink failures are silently ignored.
func (c *Coordinator) Replay(ctx context.Context, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clip, ok := c.clips[label]
	if !ok {
		c.logger.Debug("No clip to replay", zap.String("label", label))
		return
	}
	if err := c.sink.Play(ctx, clip.Audio); err != nil {
		c.logger.Debug("Replay failed", zap.String("label", label), zap.Error(err))
	}
}
