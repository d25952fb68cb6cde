// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"context"
	"time"
)

// CallTimeout bounds every editor RPC. Hooks run inline in Claude
// Code's tool loop, so a slow editor must cost seconds, not minutes.
const CallTimeout = 2 * time.Second

// BufferStatus describes how one editor instance sees a file.
type BufferStatus struct {
	// IsCurrent reports whether the file is in the editor's focused
	// buffer or visible document.
	IsCurrent bool

	// HasUnsavedChanges reports whether the editor holds modifications
	// to the file that are not on disk.
	HasUnsavedChanges bool
}

// Merge combines observations of the same file from two editor
// instances. A file counts as focused or dirty if any instance says
// so.
func (s BufferStatus) Merge(other BufferStatus) BufferStatus {
	return BufferStatus{
		IsCurrent:         s.IsCurrent || other.IsCurrent,
		HasUnsavedChanges: s.HasUnsavedChanges || other.HasUnsavedChanges,
	}
}

// Context is a user-selected region of a file, captured from the
// editor to be forwarded to the agent alongside a prompt.
type Context struct {
	FilePath  string
	StartLine int
	EndLine   int
	Content   string
}

// Client is one live connection to one editor instance. Methods map
// one-to-one onto editor RPCs; implementations translate to their wire
// protocol and wrap failures in [*OpError].
type Client interface {
	// Status reports how this instance sees the given file. The path
	// is compared against the editor's open buffers; a file the editor
	// has never opened returns an error wrapping [ErrBufferNotFound].
	Status(ctx context.Context, filePath string) (BufferStatus, error)

	// Refresh makes the editor re-read the file from disk, preserving
	// cursor positions where the editor supports it.
	Refresh(ctx context.Context, filePath string) error

	// Notify displays a warning-level message to the user.
	Notify(ctx context.Context, message string) error

	// Selection returns the user's current visual selection, or
	// (nil, nil) if nothing is selected.
	Selection(ctx context.Context) (*Context, error)

	// Delete closes the editor's buffer for the given file without
	// touching the file on disk. Editors refuse when the buffer holds
	// unsaved changes.
	Delete(ctx context.Context, filePath string) error

	// Close releases the underlying connection.
	Close() error
}
