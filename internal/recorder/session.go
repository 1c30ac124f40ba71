// Package recorder owns one microphone capture session per turn: buffering,
// the hard auto-stop deadline, and the single finalized blob handoff.
package recorder

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/repositories"
)

// State of a capture session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Blob is one finalized capture, tagged with the negotiated encoding.
type Blob struct {
	Data     []byte
	Encoding string
	Duration time.Duration
}

// CompleteFunc receives the finalized blob exactly once per session. On an
// empty capture it receives domain.ErrEmptyCapture instead of a blob.
type CompleteFunc func(Blob, error)

// Session drives one recording from start to a single completion handoff.
// Not reusable; create a new Session per turn.
type Session struct {
	device    repositories.CaptureDevice
	preferred []string
	logger    *zap.Logger

	mu        sync.Mutex
	state     State
	stream    repositories.CaptureStream
	autoStop  *time.Timer
	startedAt time.Time
	chunks    [][]byte
	complete  CompleteFunc
	collected chan struct{}
}

// NewSession creates an idle session bound to a capture device.
func NewSession(device repositories.CaptureDevice, preferred []string, logger *zap.Logger) *Session {
	return &Session{
		device:    device,
		preferred: preferred,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start opens the capture device and begins buffering. The session stops on
// its own at maxDuration unless Stop is called first. complete fires exactly
// once, after the device has been released.
func (s *Session) Start(maxDuration time.Duration, complete CompleteFunc) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return domain.ErrBusy
	}

	stream, err := s.device.Open(s.preferred)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.stream = stream
	s.state = StateRecording
	s.startedAt = time.Now()
	s.chunks = nil
	s.complete = complete
	s.collected = make(chan struct{})
	s.autoStop = time.AfterFunc(maxDuration, func() {
		s.logger.Info("Auto-stop fired", zap.Duration("max_duration", maxDuration))
		s.Stop()
	})
	s.mu.Unlock()

	go s.collect(stream)

	s.logger.Info("Recording started",
		zap.String("encoding", stream.Encoding()),
		zap.Duration("max_duration", maxDuration))

	return nil
}

// collect buffers fragments in arrival order until the stream closes.
func (s *Session) collect(stream repositories.CaptureStream) {
	for chunk := range stream.Chunks() {
		s.mu.Lock()
		if s.state == StateRecording || s.state == StateStopping {
			s.chunks = append(s.chunks, chunk)
		}
		s.mu.Unlock()
	}
	s.mu.Lock()
	close(s.collected)
	died := s.state == StateRecording
	s.mu.Unlock()

	// The channel closing while still recording means the device failed
	// mid-capture; finalize immediately instead of waiting for auto-stop.
	if died {
		s.Stop()
	}
}

// Stop finalizes the session. Idempotent; calling it while not recording is
// a no-op. The capture device is released before the completion handoff.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	s.autoStop.Stop()
	stream := s.stream
	collected := s.collected
	s.mu.Unlock()

	// Closing the stream ends the chunk channel, which lets the collector
	// drain any fragments already in flight.
	stream.Close()
	<-collected

	s.mu.Lock()
	var size int
	for _, c := range s.chunks {
		size += len(c)
	}
	blob := Blob{
		Encoding: stream.Encoding(),
		Duration: time.Since(s.startedAt),
	}
	if size > 0 {
		blob.Data = make([]byte, 0, size)
		for _, c := range s.chunks {
			blob.Data = append(blob.Data, c...)
		}
	}
	s.chunks = nil
	s.state = StateStopped
	complete := s.complete
	s.complete = nil
	s.mu.Unlock()

	if err := stream.Err(); err != nil {
		s.logger.Warn("Capture failed mid-recording", zap.Error(err))
		complete(Blob{}, &domain.CaptureError{Err: err})
		return
	}
	if size == 0 {
		s.logger.Warn("Empty capture", zap.Duration("duration", blob.Duration))
		complete(Blob{}, domain.ErrEmptyCapture)
		return
	}

	s.logger.Info("Recording finalized",
		zap.Int("bytes", size),
		zap.Duration("duration", blob.Duration))
	complete(blob, nil)
}
