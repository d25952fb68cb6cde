// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the sidekick
// binary. These functions centralize the raw I/O pattern that exists
// before the structured logger:
//
//   - Fatal error reporting to stderr when the logger may not be
//     initialized (pre-logger).
//   - Process exit after an unrecoverable error in main().
//
// Everything past entrypoint setup should report errors through the
// structured logger instead.
package process
