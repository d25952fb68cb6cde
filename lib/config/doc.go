// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for sidekick.
//
// Configuration is read from a single file specified by the
// SIDEKICK_CONFIG environment variable or a --config flag (both via
// [LoadFile]), falling back to $XDG_CONFIG_HOME/sidekick/config.yaml
// when present. Unlike tools that demand explicit configuration,
// sidekick must work with zero setup: hooks run inside arbitrary
// repositories, so a missing file means the built-in [Default] values,
// not an error.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${TMPDIR}, and ${VAR:-default} patterns are expanded. No
// other environment variables override config values, which keeps a
// hook invocation's behavior reproducible from the file alone.
//
// Key exports:
//
//   - [Config] -- log level, socket directory, per-editor settings
//   - [Default] -- the zero-setup configuration
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other sidekick packages.
package config
