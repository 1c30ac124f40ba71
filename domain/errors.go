package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyCapture is reported when a recording stops before the capture
// device produced any audio. Recoverable: the user simply records again.
var ErrEmptyCapture = errors.New("recording produced no audio")

// ErrBusy is returned when a new turn is requested while one is in flight.
var ErrBusy = errors.New("a turn is already in progress")

// ErrNoProfile is returned when a turn is requested before the user profile
// has been resolved.
var ErrNoProfile = errors.New("profile is not resolved")

// ErrNoLessons is returned when a lesson is requested but no lesson service
// is configured.
var ErrNoLessons = errors.New("lesson service is not configured")

// PermissionError indicates the capture device could not be acquired, either
// because access was denied or because no device exists. There is no retry;
// the condition is surfaced to the user as a blocking status.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("microphone unavailable: %s", e.Reason)
}

// CaptureError indicates the capture device failed mid-recording. The
// session finalizes immediately; whatever was buffered is discarded.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return fmt.Sprintf("capture failed: %v", e.Err) }
func (e *CaptureError) Unwrap() error { return e.Err }

// NetworkError carries the remote status code and a truncated response body
// for diagnostics. It wraps every non-2xx or transport-level failure from a
// remote collaborator.
type NetworkError struct {
	Status int
	Body   string
	Err    error
}

const maxErrorBody = 500

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("remote returned %d: %s", e.Status, e.Body)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetworkError builds a NetworkError, truncating the body for logs.
func NewNetworkError(status int, body []byte) *NetworkError {
	s := string(body)
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return &NetworkError{Status: status, Body: s}
}

// TranscriptionError indicates the speech-to-text stage failed or returned
// no usable text.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return fmt.Sprintf("transcription failed: %v", e.Err) }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// ErrNothingRecognized halts the pipeline when transcription succeeds but
// yields an empty transcript.
var ErrNothingRecognized = errors.New("nothing recognized")

// DialogueError indicates the correction/feedback stage failed.
type DialogueError struct {
	Err error
}

func (e *DialogueError) Error() string { return fmt.Sprintf("dialogue failed: %v", e.Err) }
func (e *DialogueError) Unwrap() error { return e.Err }

// SynthesisError indicates one synthesis call failed. Each synthesis call is
// independent: a failure never invalidates a clip already attached to the
// turn result.
type SynthesisError struct {
	Label string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis of %q failed: %v", e.Label, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
