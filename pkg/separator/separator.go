// Package separator isolates the vocal content of an audio file.
package separator

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrToolFailure is returned when the separation process fails or does not
// produce the expected output.
var ErrToolFailure = errors.New("vocal separation tool failure")

type Result struct {
	VocalsPath string

	// InstrumentalPath is empty if the separator does not produce an
	// instrumental track.
	InstrumentalPath string
}

type Separator interface {
	io.Closer

	Separate(ctx context.Context, inputPath string) (Result, error)
}

// ToolError is a non-zero exit of the separation process.
type ToolError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

func (e *ToolError) Unwrap() error {
	return ErrToolFailure
}
