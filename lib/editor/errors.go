// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"errors"
	"fmt"
	"net"
)

// ErrBufferNotFound reports that the editor holds no buffer for the
// requested file. Callers treat it as "this instance has nothing to
// say about the file", not as a failure of the instance.
var ErrBufferNotFound = errors.New("buffer not found")

// OpError records a failed editor operation with enough context to
// identify the instance that failed.
type OpError struct {
	// Op is the capability-level operation: "dial", "status",
	// "refresh", "notify", "selection", or "delete".
	Op string

	// Socket is the Unix socket path of the editor instance.
	Socket string

	// Err is the underlying failure.
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Socket, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Timeout reports whether the operation failed because the per-call
// deadline expired, as opposed to a protocol or editor-side error.
func (e *OpError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
