package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/entities"
	"github.com/everhighit/coach-client/domain/repositories"
	"github.com/everhighit/coach-client/internal/countdown"
	"github.com/everhighit/coach-client/internal/playback"
	"github.com/everhighit/coach-client/internal/recorder"
)

// StatusNotifier receives user-visible pipeline progress: the status line
// and the countdown ticks.
type StatusNotifier interface {
	Status(text string)
	Tick(remainingSeconds int)
}

type noopNotifier struct{}

func (noopNotifier) Status(string) {}
func (noopNotifier) Tick(int)      {}

// NormalizeFunc optionally rewrites a finalized blob before it enters the
// pipeline, for example wrapping raw PCM into a WAV container.
type NormalizeFunc func(recorder.Blob) recorder.Blob

// ControllerConfig carries the controller's collaborators and tuning.
type ControllerConfig struct {
	Device    repositories.CaptureDevice
	Preferred []string // capture encoding preference order
	Sequencer *TurnSequencer
	Playback  *playback.Coordinator
	History   repositories.TurnRepository // may be nil
	Lessons   repositories.LessonDialogue // may be nil
	Notifier  StatusNotifier              // may be nil
	Normalize NormalizeFunc               // may be nil
	MaxRecord time.Duration               // hard cap per recording, default 15s
	TickStep  time.Duration               // countdown granularity, default 1s
	Logger    *zap.Logger
}

// TurnController is the single entry point for turns. It enforces the
// one-turn-at-a-time rule, couples the countdown timer to the recording
// session, and hands finalized blobs to the sequencer. A turn in flight
// runs to completion or failure; only the recording phase is cancellable.
type TurnController struct {
	device    repositories.CaptureDevice
	preferred []string
	sequencer *TurnSequencer
	playback  *playback.Coordinator
	history   repositories.TurnRepository
	lessons   repositories.LessonDialogue
	notifier  StatusNotifier
	normalize NormalizeFunc
	maxRecord time.Duration
	timer     *countdown.Timer
	logger    *zap.Logger

	mu      sync.Mutex
	busy    bool
	profile *entities.Profile
	lesson  *entities.LessonState
	session *recorder.Session
	last    *entities.TurnResult
}

// NewTurnController builds a controller from config, filling defaults.
func NewTurnController(cfg ControllerConfig) *TurnController {
	if cfg.MaxRecord <= 0 {
		cfg.MaxRecord = 15 * time.Second
	}
	if cfg.TickStep <= 0 {
		cfg.TickStep = time.Second
	}
	if cfg.Notifier == nil {
		cfg.Notifier = noopNotifier{}
	}
	return &TurnController{
		device:    cfg.Device,
		preferred: cfg.Preferred,
		sequencer: cfg.Sequencer,
		playback:  cfg.Playback,
		history:   cfg.History,
		lessons:   cfg.Lessons,
		notifier:  cfg.Notifier,
		normalize: cfg.Normalize,
		maxRecord: cfg.MaxRecord,
		timer:     countdown.NewTimerWithInterval(cfg.TickStep),
		logger:    cfg.Logger,
	}
}

// SetProfile installs the resolved user profile. A turn cannot start
// without one.
func (c *TurnController) SetProfile(p *entities.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p
	return nil
}

// Profile returns the installed profile, or nil.
func (c *TurnController) Profile() *entities.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// LastResult returns the most recent completed turn, or nil.
func (c *TurnController) LastResult() *entities.TurnResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Busy reports whether a turn is in flight.
func (c *TurnController) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// StartTurn begins recording a new turn. Returns ErrNoProfile before a
// profile is set and ErrBusy while a turn is in flight. The countdown timer
// starts in lockstep with the recording session.
func (c *TurnController) StartTurn() error {
	c.mu.Lock()
	if c.profile == nil {
		c.mu.Unlock()
		return domain.ErrNoProfile
	}
	if c.busy {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	c.busy = true
	session := recorder.NewSession(c.device, c.preferred, c.logger)
	c.session = session
	lesson := c.lesson
	profile := c.profile
	c.mu.Unlock()

	err := session.Start(c.maxRecord, func(blob recorder.Blob, err error) {
		// The timer shares the session's lifecycle: it is cancelled on
		// every exit path, auto-stop and empty capture included.
		c.timer.Cancel()
		c.finishRecording(blob, err, profile, lesson)
	})
	if err != nil {
		c.timer.Cancel()
		c.mu.Lock()
		c.busy = false
		c.session = nil
		c.mu.Unlock()
		c.notifier.Status(err.Error())
		return err
	}

	seconds := int(c.maxRecord / time.Second)
	c.notifier.Status(StatusListening)
	c.notifier.Tick(seconds)
	c.timer.Start(seconds, c.notifier.Tick)

	return nil
}

// StopTurn ends the recording phase early. A no-op when nothing is
// recording; once the pipeline has begun there is nothing to stop.
func (c *TurnController) StopTurn() {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// finishRecording runs on the session's completion handoff and drives the
// pipeline to its end.
func (c *TurnController) finishRecording(blob recorder.Blob, err error, profile *entities.Profile, lesson *entities.LessonState) {
	if err != nil {
		c.logger.Warn("Recording did not produce a blob", zap.Error(err))
		c.release(err.Error())
		return
	}
	if c.normalize != nil {
		blob = c.normalize(blob)
	}

	ctx := context.Background()
	var result *entities.TurnResult
	if lesson != nil && !lesson.Done {
		result, err = c.sequencer.RunLessonTurn(ctx, blob, profile, lesson, c.notifier.Status)
	} else {
		result, err = c.sequencer.RunFreeTurn(ctx, blob, profile, c.notifier.Status)
	}
	if err != nil {
		c.logger.Warn("Turn pipeline halted", zap.Error(err))
		c.release(err.Error())
		return
	}

	c.mu.Lock()
	c.last = result
	c.mu.Unlock()

	c.playback.SetClips(result.Clips)
	c.playback.PlayChain(ctx, result.Clip(entities.ClipFeedback), result.Clip(entities.ClipShadowing))

	if c.history != nil {
		if err := c.history.Save(ctx, result); err != nil {
			c.logger.Warn("Failed to save turn history", zap.Error(err))
		}
	}

	c.release(StatusReady)
}

// release ends the in-flight turn and publishes the terminal status. The
// busy flag drops before the status goes out so a listener reacting to
// "Ready" can start the next turn immediately.
func (c *TurnController) release(status string) {
	c.mu.Lock()
	c.busy = false
	c.session = nil
	c.mu.Unlock()
	c.notifier.Status(status)
}

// Replay plays a stored clip from the last turn again. Never affects
// pipeline state.
func (c *TurnController) Replay(ctx context.Context, label string) {
	c.playback.Replay(ctx, label)
}

// StartLesson begins a scripted lesson and pins its state to the
// controller. Subsequent turns run through the lesson variant until
// FinishLesson or the service reports the lesson done.
func (c *TurnController) StartLesson(ctx context.Context, topic string) (*entities.LessonState, error) {
	c.mu.Lock()
	profile := c.profile
	busy := c.busy
	c.mu.Unlock()

	if profile == nil {
		return nil, domain.ErrNoProfile
	}
	if busy {
		return nil, domain.ErrBusy
	}
	if c.lessons == nil {
		return nil, domain.ErrNoLessons
	}

	state, err := c.lessons.Start(ctx, repositories.StartLessonParams{
		UserID:         profile.UserID,
		NativeLanguage: profile.NativeLanguage,
		TargetLanguage: profile.TargetLanguage,
		Topic:          topic,
		StudentName:    profile.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lesson = state
	c.mu.Unlock()

	c.logger.Info("Lesson started",
		zap.String("lesson_id", state.LessonID),
		zap.String("topic", topic))
	return state, nil
}

// Lesson returns the active lesson state, or nil.
func (c *TurnController) Lesson() *entities.LessonState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lesson
}

// FinishLesson ends the active lesson, notifying the remote service.
func (c *TurnController) FinishLesson(ctx context.Context) error {
	c.mu.Lock()
	state := c.lesson
	c.lesson = nil
	c.mu.Unlock()

	if state == nil || c.lessons == nil {
		return nil
	}
	return c.lessons.Finish(ctx, state.LessonID)
}
