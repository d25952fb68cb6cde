// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package fanout applies one editor operation across every discovered
// editor instance and aggregates the results.
//
// A [Target] pairs a socket path with the dialer for its editor kind,
// so a mixed fleet (Neovim and VS Code instances on the same
// workspace) flattens into one slice. Each operation dials fresh,
// runs, and closes the connection: hook invocations are short-lived
// processes, so there is nothing to pool.
//
// Instances are best-effort. A socket that refuses the connection or
// an editor that errors is skipped, never fatal, because stale sockets
// from crashed editors are an expected part of the addressing scheme.
// The three aggregation shapes differ in what they make of the
// survivors:
//
//   - [AnySuccess] visits every target and reports whether at least
//     one operation succeeded. Side-effect operations (notify,
//     refresh) use it: each instance deserves the attempt even after
//     one succeeds.
//   - [Fold] combines successful results into an accumulator and lets
//     the combiner stop early once the answer cannot change. Its
//     second return value distinguishes "no instance answered" from
//     "instances answered, accumulator unchanged".
//   - [CollectAll] gathers every non-nil result in target order,
//     dropping failures.
package fanout
