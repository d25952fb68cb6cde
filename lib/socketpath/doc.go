// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package socketpath computes and discovers the Unix socket paths that
// connect sidekick to editor instances.
//
// Editors and sidekick never exchange addresses directly. Instead both
// sides derive the same path from shared facts:
//
//	{dir}/{hash}-{id}.sock         Neovim
//	{dir}/{hash}-vscode-{id}.sock  VS Code
//
// where hash is the hex-encoded BLAKE3 digest of the canonical
// workspace path (absolute, symlinks resolved) and id is the editor
// process ID. An editor listens on its computed path; a hook invocation
// globs the directory for the workspace hash and talks to every socket
// it finds. The scheme needs no registry and no cleanup protocol:
// restarting an editor changes the PID, and [Discover] skips entries
// that are not sockets.
//
// [Workspace] produces the canonical form of a workspace directory.
// Canonicalizing on both sides is what makes the rendezvous work when
// one process launched from a symlinked path and another did not.
package socketpath
