// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package neovim implements the editor client for Neovim instances
// over Neovim's own msgpack-RPC socket. No plugin is required on the
// editor side: buffer inspection uses the core API, and the behaviors
// the API does not expose directly (refresh with cursor restore,
// notifications, selection capture) are shipped as small Lua scripts
// through nvim_exec_lua.
package neovim

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/NishantJoshi00/sidekick/lib/editor"
)

// msgpack-RPC message type tags.
const (
	requestMessage      = 0
	responseMessage     = 1
	notificationMessage = 2
)

// Client is a connection to one Neovim instance. It is not safe for
// concurrent use; hook handling talks to each instance from a single
// goroutine.
type Client struct {
	conn    net.Conn
	enc     *msgpack.Encoder
	dec     *msgpack.Decoder
	socket  string
	timeout time.Duration
	nextID  uint64
}

var _ editor.Client = (*Client)(nil)

// Dial connects to the Neovim instance listening on socket.
func Dial(ctx context.Context, socket string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, &editor.OpError{Op: "dial", Socket: socket, Err: err}
	}
	return &Client{
		conn:    conn,
		enc:     msgpack.NewEncoder(conn),
		dec:     msgpack.NewDecoder(conn),
		socket:  socket,
		timeout: editor.CallTimeout,
	}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Status reports whether the file is in the focused buffer and whether
// that buffer holds unsaved changes.
func (c *Client) Status(ctx context.Context, filePath string) (editor.BufferStatus, error) {
	buf, err := c.findBuffer(ctx, filePath)
	if err != nil {
		return editor.BufferStatus{}, c.opError("status", err)
	}
	current, err := c.currentBuffer(ctx)
	if err != nil {
		return editor.BufferStatus{}, c.opError("status", err)
	}
	modified, err := c.bufferModified(ctx, buf)
	if err != nil {
		return editor.BufferStatus{}, c.opError("status", err)
	}
	return editor.BufferStatus{
		IsCurrent:         buf == current,
		HasUnsavedChanges: modified,
	}, nil
}

// Refresh re-reads the file's buffer from disk, preserving cursor
// positions in every window that shows it.
func (c *Client) Refresh(ctx context.Context, filePath string) error {
	buf, err := c.findBuffer(ctx, filePath)
	if err != nil {
		return c.opError("refresh", err)
	}
	if err := c.execLua(ctx, refreshScript(int64(buf)), nil); err != nil {
		return c.opError("refresh", err)
	}
	return nil
}

// Notify shows a warning-level message to the user.
func (c *Client) Notify(ctx context.Context, message string) error {
	if err := c.execLua(ctx, notifyScript(message), nil); err != nil {
		return c.opError("notify", err)
	}
	return nil
}

// Selection returns the user's visual selection, or (nil, nil) when
// nothing is selected.
func (c *Client) Selection(ctx context.Context) (*editor.Context, error) {
	var sel struct {
		OK        bool   `msgpack:"ok"`
		Reason    string `msgpack:"reason"`
		FilePath  string `msgpack:"file_path"`
		StartLine int    `msgpack:"start_line"`
		EndLine   int    `msgpack:"end_line"`
		Content   string `msgpack:"content"`
	}
	if err := c.execLua(ctx, selectionScript, &sel); err != nil {
		return nil, c.opError("selection", err)
	}
	if !sel.OK {
		if sel.Reason == "no selection" {
			return nil, nil
		}
		return nil, c.opError("selection", fmt.Errorf("selection unavailable: %s", sel.Reason))
	}
	return &editor.Context{
		FilePath:  sel.FilePath,
		StartLine: sel.StartLine,
		EndLine:   sel.EndLine,
		Content:   sel.Content,
	}, nil
}

// Delete closes the file's buffer. Neovim refuses (E89) when the
// buffer has unsaved changes, which surfaces as a remote error.
func (c *Client) Delete(ctx context.Context, filePath string) error {
	buf, err := c.findBuffer(ctx, filePath)
	if err != nil {
		return c.opError("delete", err)
	}
	if err := c.command(ctx, fmt.Sprintf("bdelete %d", int64(buf))); err != nil {
		return c.opError("delete", err)
	}
	return nil
}

func (c *Client) opError(op string, err error) error {
	return &editor.OpError{Op: op, Socket: c.socket, Err: err}
}

// findBuffer locates the buffer whose name resolves to the same file
// as filePath. Both sides are canonicalized so that a buffer opened
// through a symlink still matches.
func (c *Client) findBuffer(ctx context.Context, filePath string) (Buffer, error) {
	target := canonicalPath(filePath)
	bufs, err := c.listBuffers(ctx)
	if err != nil {
		return 0, err
	}
	for _, buf := range bufs {
		name, err := c.bufferName(ctx, buf)
		if err != nil {
			return 0, err
		}
		if name == "" {
			continue
		}
		if canonicalPath(name) == target {
			return buf, nil
		}
	}
	return 0, fmt.Errorf("no buffer for %s: %w", filePath, editor.ErrBufferNotFound)
}

// canonicalPath makes path absolute and resolves symlinks, falling
// back to the unresolved form when the file does not exist (an
// unsaved target or a buffer for a deleted file).
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}

// --- Neovim API wrappers ---

func (c *Client) listBuffers(ctx context.Context) ([]Buffer, error) {
	var bufs []Buffer
	if err := c.call(ctx, "nvim_list_bufs", &bufs); err != nil {
		return nil, err
	}
	return bufs, nil
}

func (c *Client) currentBuffer(ctx context.Context) (Buffer, error) {
	var buf Buffer
	if err := c.call(ctx, "nvim_get_current_buf", &buf); err != nil {
		return 0, err
	}
	return buf, nil
}

func (c *Client) bufferName(ctx context.Context, buf Buffer) (string, error) {
	var name string
	if err := c.call(ctx, "nvim_buf_get_name", &name, int64(buf)); err != nil {
		return "", err
	}
	return name, nil
}

func (c *Client) bufferModified(ctx context.Context, buf Buffer) (bool, error) {
	var modified bool
	if err := c.call(ctx, "nvim_buf_get_option", &modified, int64(buf), "modified"); err != nil {
		return false, err
	}
	return modified, nil
}

// cursor returns the 1-based line and 0-based column of the cursor in
// win. The refresh script does its own cursor bookkeeping in Lua, so
// this wrapper exists for callers that inspect a single window.
func (c *Client) cursor(ctx context.Context, win Window) (line, col int64, err error) {
	var pos [2]int64
	if err := c.call(ctx, "nvim_win_get_cursor", &pos, int64(win)); err != nil {
		return 0, 0, err
	}
	return pos[0], pos[1], nil
}

func (c *Client) setCursor(ctx context.Context, win Window, line, col int64) error {
	return c.call(ctx, "nvim_win_set_cursor", nil, int64(win), []any{line, col})
}

func (c *Client) execLua(ctx context.Context, code string, result any) error {
	return c.call(ctx, "nvim_exec_lua", result, code, []any{})
}

func (c *Client) command(ctx context.Context, cmd string) error {
	return c.call(ctx, "nvim_command", nil, cmd)
}

// call performs one msgpack-RPC request and decodes the response into
// result (which may be nil to discard it). The whole exchange is
// bounded by the client timeout or the context deadline, whichever
// comes first.
func (c *Client) call(ctx context.Context, method string, result any, params ...any) error {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	c.nextID++
	id := c.nextID
	if params == nil {
		params = []any{}
	}
	if err := c.enc.Encode([]any{requestMessage, id, method, params}); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	// Neovim may interleave notifications before the response; drop
	// them and keep reading.
	for {
		length, err := c.dec.DecodeArrayLen()
		if err != nil {
			return fmt.Errorf("reading %s response: %w", method, err)
		}
		kind, err := c.dec.DecodeInt64()
		if err != nil {
			return fmt.Errorf("reading %s response: %w", method, err)
		}
		if kind == notificationMessage && length == 3 {
			for i := 0; i < 2; i++ {
				if err := c.dec.Skip(); err != nil {
					return fmt.Errorf("skipping notification: %w", err)
				}
			}
			continue
		}
		if kind != responseMessage || length != 4 {
			return fmt.Errorf("%s: unexpected message type %d (array length %d)", method, kind, length)
		}
		break
	}

	responseID, err := c.dec.DecodeUint64()
	if err != nil {
		return fmt.Errorf("reading %s response id: %w", method, err)
	}
	if responseID != id {
		return fmt.Errorf("response id %d does not match request id %d", responseID, id)
	}

	var rpcErr any
	if err := c.dec.Decode(&rpcErr); err != nil {
		return fmt.Errorf("reading %s error: %w", method, err)
	}
	if rpcErr != nil {
		if err := c.dec.Skip(); err != nil {
			return fmt.Errorf("draining %s result: %w", method, err)
		}
		return fmt.Errorf("%s: %s", method, formatRPCError(rpcErr))
	}

	if result == nil {
		if err := c.dec.Skip(); err != nil {
			return fmt.Errorf("draining %s result: %w", method, err)
		}
		return nil
	}
	if err := c.dec.Decode(result); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

// formatRPCError renders Neovim's error value, a two-element array of
// [error type, message].
func formatRPCError(raw any) string {
	if pair, ok := raw.([]any); ok && len(pair) == 2 {
		return fmt.Sprintf("remote error %v: %v", pair[0], pair[1])
	}
	return fmt.Sprintf("remote error: %v", raw)
}
