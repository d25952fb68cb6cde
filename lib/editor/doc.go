// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package editor defines the capability surface sidekick expects from
// a connected editor instance, independent of the wire protocol behind
// it.
//
// A [Client] is one live connection to one editor process. The Neovim
// implementation (lib/editor/neovim) speaks msgpack-RPC to the
// editor's own API socket; the VS Code implementation
// (lib/editor/vscode) speaks newline-delimited JSON-RPC to a
// companion extension. Callers hold the interface and never branch on
// the editor family.
//
// Every operation takes a context and observes [CallTimeout] as an
// upper bound, so one wedged editor cannot stall a hook invocation
// past its deadline. Results are point-in-time observations: a buffer
// reported clean may be dirty by the time the caller acts, which is
// acceptable for advisory coordination.
//
// Failures carry an [*OpError] naming the operation and socket, so
// multi-instance callers can log which editor misbehaved. A missing
// buffer is reported via [ErrBufferNotFound] wrapped in the OpError
// chain.
package editor
