// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package neovim

import (
	"fmt"
	"strings"
)

// refreshScript returns Lua that re-reads the given buffer from disk
// while keeping every window's cursor where the user left it. Plain
// :checktime is not enough when the buffer is unmodified but the
// editor has not yet stat'd the file, so the buffer is also :edit'ed.
// Cursor restore is pcall'd: the file may have shrunk below the saved
// line. Whether the target is the current buffer is snapshotted before
// the reload, whose side effects can move focus.
func refreshScript(bufnr int64) string {
	return fmt.Sprintf(`
local buf = %d
local is_current = vim.api.nvim_get_current_buf() == buf
local cursors = {}
for _, win in ipairs(vim.api.nvim_list_wins()) do
  if vim.api.nvim_win_get_buf(win) == buf then
    cursors[win] = vim.api.nvim_win_get_cursor(win)
  end
end
vim.api.nvim_buf_call(buf, function()
  vim.cmd('checktime')
  vim.cmd('edit')
end)
for win, cursor in pairs(cursors) do
  if vim.api.nvim_win_is_valid(win) then
    pcall(vim.api.nvim_win_set_cursor, win, cursor)
  end
end
if is_current then
  vim.cmd('redraw')
end
`, bufnr)
}

// luaEscaper rewrites a message for embedding in a double-quoted Lua
// string literal.
var luaEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// notifyScript returns Lua that shows message to the user at warning
// level.
func notifyScript(message string) string {
	return `vim.notify("` + luaEscaper.Replace(message) + `", vim.log.levels.WARN)`
}

// selectionScript captures the user's visual selection. In an active
// visual mode it reads the live endpoints ('v' and the cursor); once
// the user has left visual mode it falls back to the '< and '> marks,
// which persist until the next selection. Returns a table with
// ok=false and a reason when there is nothing to capture.
const selectionScript = `
local mode = vim.api.nvim_get_mode().mode
local start_pos, end_pos
if mode == 'v' or mode == 'V' or mode == '\22' then
  start_pos = vim.fn.getpos('v')
  end_pos = vim.fn.getpos('.')
else
  start_pos = vim.fn.getpos("'<")
  end_pos = vim.fn.getpos("'>")
end
local start_line = start_pos[2]
local end_line = end_pos[2]
if start_line == 0 or end_line == 0 then
  return { ok = false, reason = 'no selection' }
end
if start_line > end_line then
  start_line, end_line = end_line, start_line
end
local path = vim.api.nvim_buf_get_name(0)
if path == '' then
  return { ok = false, reason = 'no file' }
end
local lines = vim.api.nvim_buf_get_lines(0, start_line - 1, end_line, false)
return {
  ok = true,
  file_path = path,
  start_line = start_line,
  end_line = end_line,
  content = table.concat(lines, '\n'),
}
`
