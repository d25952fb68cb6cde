// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package fanout

import (
	"context"

	"github.com/NishantJoshi00/sidekick/lib/editor"
)

// DialFunc connects to the editor instance behind a socket path.
type DialFunc func(ctx context.Context, socket string) (editor.Client, error)

// Target is one editor instance to visit: its socket path and the
// dialer that speaks its protocol.
type Target struct {
	Socket string
	Dial   DialFunc
}

// Targets pairs each socket with the same dialer.
func Targets(sockets []string, dial DialFunc) []Target {
	targets := make([]Target, len(sockets))
	for i, socket := range sockets {
		targets[i] = Target{Socket: socket, Dial: dial}
	}
	return targets
}

// AnySuccess runs op against every target and reports whether at least
// one run succeeded. It never stops early: a notification should reach
// every instance, not just the first reachable one.
func AnySuccess(ctx context.Context, targets []Target, op func(ctx context.Context, client editor.Client) error) bool {
	succeeded := false
	for _, target := range targets {
		client, err := target.Dial(ctx, target.Socket)
		if err != nil {
			continue
		}
		err = op(ctx, client)
		_ = client.Close()
		if err == nil {
			succeeded = true
		}
	}
	return succeeded
}

// Fold runs op against targets in order, feeding each successful
// result through combine. Targets that fail to dial or whose op errors
// are skipped without touching the accumulator. combine's second
// return value says whether to keep visiting; returning false stops
// the fold once the outcome is settled.
//
// The returned bool is false only when no target produced a result,
// letting callers distinguish "nothing answered" from an accumulator
// the results happened to leave at its initial value.
func Fold[A, T any](ctx context.Context, targets []Target, op func(ctx context.Context, client editor.Client) (T, error), initial A, combine func(acc A, value T) (A, bool)) (A, bool) {
	acc := initial
	processed := false
	for _, target := range targets {
		client, err := target.Dial(ctx, target.Socket)
		if err != nil {
			continue
		}
		value, err := op(ctx, client)
		_ = client.Close()
		if err != nil {
			continue
		}
		processed = true
		var keepGoing bool
		acc, keepGoing = combine(acc, value)
		if !keepGoing {
			break
		}
	}
	return acc, processed
}

// CollectAll runs op against every target and returns the non-nil
// results in target order. Failures and nil results are dropped.
func CollectAll[T any](ctx context.Context, targets []Target, op func(ctx context.Context, client editor.Client) (*T, error)) []T {
	var collected []T
	for _, target := range targets {
		client, err := target.Dial(ctx, target.Socket)
		if err != nil {
			continue
		}
		value, err := op(ctx, client)
		_ = client.Close()
		if err != nil || value == nil {
			continue
		}
		collected = append(collected, *value)
	}
	return collected
}
