package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Sink persists a finished artifact under a name.
type Sink interface {
	// Write stores size bytes from r under name and returns where they went.
	Write(ctx context.Context, name string, r io.Reader, size int64) (string, error)
}

// ErrWrite is matched by every WriteError.
var ErrWrite = errors.New("write failed")

// WriteError reports a destination that could not be written.
type WriteError struct {
	Dest string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Dest, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// ctxReader checks for cancellation before every Read.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
