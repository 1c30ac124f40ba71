package repositories

import "context"

// CaptureDevice acquires the microphone. Exclusive: one open stream at a
// time, and the stream must be closed on every exit path.
type CaptureDevice interface {
	// Open acquires the device and negotiates an encoding from the ordered
	// preference list. Returns *domain.PermissionError when access is denied
	// or no device exists.
	Open(preferred []string) (CaptureStream, error)
}

// CaptureStream delivers buffered audio fragments in arrival order.
type CaptureStream interface {
	// Chunks yields audio fragments until the stream is closed. The channel
	// also closes when the device fails mid-capture; Err tells the two
	// apart.
	Chunks() <-chan []byte
	// Encoding is the negotiated encoding for this stream.
	Encoding() string
	// Err returns the terminal capture error, if any, once Chunks has
	// closed. Nil after a clean Close.
	Err() error
	// Close stops capture and releases the device. Idempotent.
	Close() error
}

// Sink plays one audio clip and blocks until playback finishes or ctx is
// canceled. Only one clip plays at a time by construction.
type Sink interface {
	Play(ctx context.Context, audio []byte) error
}
