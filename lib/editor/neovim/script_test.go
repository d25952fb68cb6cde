// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package neovim

import (
	"strings"
	"testing"
)

func TestRefreshScript(t *testing.T) {
	t.Parallel()

	script := refreshScript(42)

	for _, want := range []string{
		"local buf = 42",
		"local is_current = vim.api.nvim_get_current_buf() == buf",
		"nvim_win_get_cursor",
		"vim.cmd('checktime')",
		"vim.cmd('edit')",
		"nvim_win_is_valid",
		"pcall(vim.api.nvim_win_set_cursor",
		"if is_current then",
		"vim.cmd('redraw')",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("expected script to contain %q:\n%s", want, script)
		}
	}

	// The current-buffer check must be captured before the reload:
	// :edit inside nvim_buf_call can move focus, and the redraw
	// decision belongs to the state the user saw.
	if strings.Index(script, "local is_current") > strings.Index(script, "checktime") {
		t.Errorf("expected current-buffer snapshot before the reload:\n%s", script)
	}
}

func TestNotifyScript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "plain message",
			message: "Claude tried to edit this file",
			want:    `vim.notify("Claude tried to edit this file", vim.log.levels.WARN)`,
		},
		{
			name:    "embedded quotes",
			message: `edit to "main.go"`,
			want:    `vim.notify("edit to \"main.go\"", vim.log.levels.WARN)`,
		},
		{
			name:    "backslash before quote",
			message: `path \"x`,
			want:    `vim.notify("path \\\"x", vim.log.levels.WARN)`,
		},
		{
			name:    "newline",
			message: "line one\nline two",
			want:    `vim.notify("line one\nline two", vim.log.levels.WARN)`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := notifyScript(tt.message); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSelectionScript(t *testing.T) {
	t.Parallel()

	// The script must handle both live visual mode and the marks left
	// after leaving it, and must report structured failure reasons.
	for _, want := range []string{
		"nvim_get_mode",
		"getpos('v')",
		`getpos("'<")`,
		"reason = 'no selection'",
		"reason = 'no file'",
		"nvim_buf_get_lines",
		"table.concat(lines, '\\n')",
	} {
		if !strings.Contains(selectionScript, want) {
			t.Errorf("expected selection script to contain %q", want)
		}
	}
}
