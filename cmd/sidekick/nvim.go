// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/NishantJoshi00/sidekick/lib/config"
	"github.com/NishantJoshi00/sidekick/lib/socketpath"
)

// runNeovim execs the configured Neovim binary listening on the
// workspace's socket address. Arguments pass through verbatim, with
// no flag parsing: flags like -R or +42 belong to Neovim. The process
// is replaced rather than forked, so the pid baked into the socket
// name stays accurate for the lifetime of the editor.
func runNeovim(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Editors.Neovim.Enabled {
		return fmt.Errorf("neovim integration is disabled in config")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}
	workspace, err := socketpath.Workspace(cwd)
	if err != nil {
		return err
	}
	socket := socketpath.Compute(cfg.SocketDir, workspace, socketpath.Neovim, os.Getpid())

	binary, err := cfg.NeovimBinary()
	if err != nil {
		return err
	}

	argv := append([]string{binary, "--listen", socket}, args...)
	if err := syscall.Exec(binary, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", binary, err)
	}
	return nil
}
