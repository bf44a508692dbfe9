package adjust

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	// ErrFormat reports a source without a readable canonical pixel buffer.
	ErrFormat = errors.New("adjust: unsupported pixel format")

	// ErrRenderStage reports a failed filter stage.
	ErrRenderStage = errors.New("adjust: render stage failed")

	// ErrEncode reports that no encoder could produce output.
	ErrEncode = errors.New("adjust: encoding failed")

	// ErrCodecUnavailable reports an encoder whose platform codec is missing.
	ErrCodecUnavailable = errors.New("adjust: codec unavailable")

	// ErrClosed is returned by a closed Scheduler or Executor.
	ErrClosed = errors.New("adjust: closed")
)

// FormatError describes why a bitmap is not canonical.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "adjust: unsupported pixel format: " + e.Reason
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErrorf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// RenderStageError wraps the failure of one filter stage. Stage is the
// stage name and is meant for logs.
type RenderStageError struct {
	Stage string
	Err   error
}

func (e *RenderStageError) Error() string {
	return fmt.Sprintf("adjust: stage %s: %v", e.Stage, e.Err)
}

func (e *RenderStageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRenderStage.
func (e *RenderStageError) Is(target error) bool { return target == ErrRenderStage }

// EncodeError is returned when every encoder in the chain failed. Err joins
// the error of each attempt in order.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("adjust: all encoders failed: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEncode.
func (e *EncodeError) Is(target error) bool { return target == ErrEncode }
