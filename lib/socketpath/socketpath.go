// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package socketpath

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// Kind identifies an editor family for socket addressing. The zero
// value is not a valid kind; use the package variables.
type Kind struct {
	name string
	tag  string
}

var (
	// Neovim sockets are named {hash}-{pid}.sock.
	Neovim = Kind{name: "neovim"}

	// VSCode sockets are named {hash}-vscode-{pid}.sock.
	VSCode = Kind{name: "vscode", tag: "vscode-"}
)

// String returns the kind name for logging.
func (k Kind) String() string { return k.name }

// claims reports whether the given socket name suffix (the part
// between the workspace hash and ".sock") belongs to this kind. The
// suffix must be the kind's tag followed by a decimal instance ID,
// which keeps Neovim discovery from picking up VS Code sockets and
// drops anything else sharing the hash prefix.
func (k Kind) claims(suffix string) bool {
	id, ok := strings.CutPrefix(suffix, k.tag)
	if !ok || id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Workspace canonicalizes a workspace directory into the form used for
// socket naming: absolute, with symlinks resolved. Both the editor and
// the hook must canonicalize so that they derive the same hash even
// when one of them was launched from a symlinked path.
func Workspace(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path of %q: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks of %q: %w", abs, err)
	}
	return resolved, nil
}

// Compute returns the socket path for one editor instance. The
// workspace must already be canonical (see [Workspace]); instanceID is
// the editor's process ID.
func Compute(dir, workspace string, kind Kind, instanceID int) string {
	name := fmt.Sprintf("%s-%s%d.sock", workspaceHash(workspace), kind.tag, instanceID)
	return filepath.Join(dir, name)
}

// Discover returns the socket paths in dir that belong to the given
// workspace and editor kind, in lexical order. Entries that do not
// parse as this kind's names or are not sockets on disk are skipped;
// a socket whose editor has already exited is still returned, and the
// caller finds out when the dial fails.
func Discover(dir, workspace string, kind Kind) []string {
	prefix := workspaceHash(workspace) + "-"
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*.sock"))
	if err != nil {
		// Only reachable with glob metacharacters in dir.
		return nil
	}
	var sockets []string
	for _, match := range matches {
		name := filepath.Base(match)
		suffix := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".sock")
		if !kind.claims(suffix) {
			continue
		}
		info, err := os.Lstat(match)
		if err != nil || info.Mode().Type()&os.ModeSocket == 0 {
			continue
		}
		sockets = append(sockets, match)
	}
	return sockets
}

// workspaceHash returns the hex-encoded BLAKE3 digest of the canonical
// workspace path.
func workspaceHash(workspace string) string {
	sum := blake3.Sum256([]byte(workspace))
	return hex.EncodeToString(sum[:])
}
