// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)

	for _, want := range []string{"sidekick hook", "sidekick nvim", "sidekick setup", "sidekick version"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage should mention %q:\n%s", want, buf.String())
		}
	}
}

func TestLoadConfig(t *testing.T) {
	// Not parallel: t.Setenv.

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Fatal("expected error for missing explicit config")
		}
	})

	t.Run("empty path falls back to defaults", func(t *testing.T) {
		t.Setenv("SIDEKICK_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.SocketDir != "/tmp" {
			t.Errorf("SocketDir = %q, want default /tmp", cfg.SocketDir)
		}
	})

	t.Run("explicit file is honored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("socket_dir: /run/sidekick\n"), 0644); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.SocketDir != "/run/sidekick" {
			t.Errorf("SocketDir = %q, want /run/sidekick", cfg.SocketDir)
		}
	})
}
