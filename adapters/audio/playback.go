package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain/repositories"
)

// PCMSink plays raw little-endian 16-bit mono PCM through the default
// output device.
type PCMSink struct {
	sampleRate int
	logger     *zap.Logger
}

var _ repositories.Sink = (*PCMSink)(nil)

// NewPCMSink returns a PortAudio-backed sink. PortAudio must already be
// initialized (NewCaptureDevice does this).
func NewPCMSink(sampleRate int, logger *zap.Logger) *PCMSink {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	return &PCMSink{sampleRate: sampleRate, logger: logger}
}

// Play implements repositories.Sink. It blocks until the full buffer has
// been written to the device or ctx is cancelled.
func (s *PCMSink) Play(ctx context.Context, audio []byte) error {
	samples := make([]int16, len(audio)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(audio[i*2:]))
	}

	buffer := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, Channels, float64(s.sampleRate), FramesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for offset := 0; offset < len(samples); offset += FramesPerBuffer {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n := copy(buffer, samples[offset:])
		for i := n; i < FramesPerBuffer; i++ {
			buffer[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}
	}

	return nil
}

// SystemSink plays compressed clips (mp3) by piping them to a system
// player. PortAudio has no decoder, so the backend's mp3 output goes
// through mpg123 or its platform equivalent.
type SystemSink struct {
	player string
	args   []string
	logger *zap.Logger
}

var _ repositories.Sink = (*SystemSink)(nil)

// NewSystemSink locates a player binary for the current platform.
func NewSystemSink(logger *zap.Logger) (*SystemSink, error) {
	candidates := [][]string{
		{"mpg123", "-q", "-"},
		{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-"},
	}

	for _, c := range candidates {
		if path, err := exec.LookPath(c[0]); err == nil {
			logger.Info("Using system audio player", zap.String("player", path))
			return &SystemSink{player: path, args: c[1:], logger: logger}, nil
		}
	}
	return nil, fmt.Errorf("no system audio player found (tried mpg123, ffplay)")
}

// Play implements repositories.Sink. Blocks until the player exits; ctx
// cancellation kills the player process.
func (s *SystemSink) Play(ctx context.Context, audio []byte) error {
	cmd := exec.CommandContext(ctx, s.player, s.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open player stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	if _, err := stdin.Write(audio); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("failed to feed player: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("player exited: %w", err)
	}
	return nil
}
