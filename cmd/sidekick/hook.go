// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/NishantJoshi00/sidekick/lib/hook"
	"github.com/NishantJoshi00/sidekick/lib/policy"
)

// runHook handles one Claude Code hook invocation. The event arrives
// as JSON on stdin and the decision leaves as JSON on stdout, so all
// logging goes to stderr: Claude Code parses stdout as the hook
// response.
func runHook(args []string) error {
	flagSet := pflag.NewFlagSet("sidekick hook", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to config file (default: standard lookup)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	event, err := hook.ReadEvent(os.Stdin)
	if err != nil {
		return err
	}

	engine, err := policy.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	output := engine.Handle(context.Background(), event)
	if err := json.NewEncoder(os.Stdout).Encode(output); err != nil {
		return fmt.Errorf("writing hook output: %w", err)
	}
	return nil
}
