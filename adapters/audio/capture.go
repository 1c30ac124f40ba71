package audio

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/everhighit/coach-client/domain"
	"github.com/everhighit/coach-client/domain/repositories"
)

const (
	// SampleRate matches what the speech recognizers expect.
	SampleRate = 16000
	// Channels is mono capture.
	Channels = 1
	// FramesPerBuffer is the PortAudio read granularity.
	FramesPerBuffer = 1024
)

// CaptureDevice opens microphone streams through PortAudio. The raw device
// only produces little-endian 16-bit PCM; compressed encodings are resolved
// away during negotiation.
type CaptureDevice struct {
	logger *zap.Logger
}

var _ repositories.CaptureDevice = (*CaptureDevice)(nil)

// NewCaptureDevice initializes PortAudio and returns a capture device.
func NewCaptureDevice(logger *zap.Logger) (*CaptureDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &domain.PermissionError{Reason: err.Error()}
	}
	return &CaptureDevice{logger: logger}, nil
}

// Terminate releases the PortAudio host API. Call once on shutdown.
func (d *CaptureDevice) Terminate() {
	portaudio.Terminate()
}

// Open implements repositories.CaptureDevice. A failure to open the default
// input stream is reported as a permission problem so the caller can guide
// the user to system settings.
func (d *CaptureDevice) Open(preferred []string) (repositories.CaptureStream, error) {
	encoding, err := ResolveEncoding(preferred, []string{"pcm_s16le"})
	if err != nil {
		return nil, err
	}

	buffer := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, buffer)
	if err != nil {
		d.logger.Warn("Failed to open input stream", zap.Error(err))
		return nil, &domain.PermissionError{Reason: err.Error()}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, &domain.PermissionError{Reason: err.Error()}
	}

	cs := &captureStream{
		stream:   stream,
		buffer:   buffer,
		encoding: encoding,
		chunks:   make(chan []byte, 16),
		done:     make(chan struct{}),
		logger:   d.logger,
	}
	go cs.readLoop()

	d.logger.Info("Capture stream opened",
		zap.String("encoding", encoding),
		zap.Int("sample_rate", SampleRate))

	return cs, nil
}

type captureStream struct {
	stream   *portaudio.Stream
	buffer   []int16
	encoding string
	chunks   chan []byte
	done     chan struct{}
	logger   *zap.Logger

	closeOnce sync.Once

	mu      sync.Mutex
	readErr error
}

func (cs *captureStream) Chunks() <-chan []byte { return cs.chunks }

func (cs *captureStream) Encoding() string { return cs.encoding }

func (cs *captureStream) readLoop() {
	defer close(cs.chunks)

	for {
		select {
		case <-cs.done:
			return
		default:
		}

		available, err := cs.stream.AvailableToRead()
		if err != nil {
			cs.fail(err)
			return
		}
		if available == 0 {
			select {
			case <-cs.done:
				return
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}

		if err := cs.stream.Read(); err != nil {
			cs.fail(err)
			return
		}

		chunk := make([]byte, len(cs.buffer)*2)
		for i, s := range cs.buffer {
			binary.LittleEndian.PutUint16(chunk[i*2:], uint16(s))
		}

		select {
		case cs.chunks <- chunk:
		case <-cs.done:
			return
		}
	}
}

// fail records a terminal device error. Returning from the read loop closes
// the chunk channel, which the session treats as a failure exit when it did
// not initiate the close itself.
func (cs *captureStream) fail(err error) {
	cs.mu.Lock()
	cs.readErr = err
	cs.mu.Unlock()
	cs.logger.Warn("Capture stream failed", zap.Error(err))
}

// Err implements repositories.CaptureStream.
func (cs *captureStream) Err() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.readErr
}

// Close implements repositories.CaptureStream. Safe to call more than once;
// the chunk channel is closed once the read loop drains.
func (cs *captureStream) Close() error {
	cs.closeOnce.Do(func() {
		close(cs.done)
		cs.stream.Stop()
		cs.stream.Close()
		cs.logger.Debug("Capture stream closed")
	})
	return nil
}
