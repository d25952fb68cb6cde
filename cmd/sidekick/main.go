// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// sidekick bridges Claude Code and live editor sessions. It is a
// single binary with three modes:
//
//   - "sidekick hook" handles a Claude Code hook event: it reads the
//     event JSON from stdin, consults the editor instances attached to
//     the current workspace, and writes the decision JSON to stdout.
//     Claude Code spawns this as a subprocess for each hook invocation.
//
//   - "sidekick nvim [args...]" launches Neovim listening on the
//     workspace's socket address, so hook invocations from the same
//     directory can find it.
//
//   - "sidekick setup" registers the hook commands in Claude Code's
//     settings file.
//
// This dual-mode design avoids shipping a separate hook binary: the
// settings written by setup point back at the same executable.
//
// Configuration comes from ~/.config/sidekick/config.yaml (see
// lib/config). A missing config file means defaults, because hooks
// run in whatever directory the user happens to start Claude Code in.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/NishantJoshi00/sidekick/lib/config"
	"github.com/NishantJoshi00/sidekick/lib/process"
	"github.com/NishantJoshi00/sidekick/lib/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "hook":
		if err := runHook(os.Args[2:]); err != nil {
			process.Fatal(fmt.Errorf("hook: %w", err))
		}
	case "nvim", "neovim":
		if err := runNeovim(os.Args[2:]); err != nil {
			process.Fatal(fmt.Errorf("nvim: %w", err))
		}
	case "setup":
		if err := runSetup(os.Args[2:]); err != nil {
			process.Fatal(fmt.Errorf("setup: %w", err))
		}
	case "version", "--version":
		fmt.Println("sidekick " + version.Info())
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "sidekick: unknown command %q\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(2)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `sidekick: Claude Code hook handler with editor awareness.

Usage:
  sidekick hook [--config path]          handle a hook event (JSON on stdin)
  sidekick nvim [args...]                launch Neovim on the workspace socket
  sidekick setup [--global] [--print]    register hooks in Claude Code settings
  sidekick version                       print version information

Hook events are read from stdin and answered on stdout per the Claude
Code hooks protocol. Logs go to stderr.
`)
}

// loadConfig loads configuration for a subcommand. An explicit path
// (from --config) must name an existing file; otherwise the standard
// lookup applies and a missing file means defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
