// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package vscode implements the editor client for VS Code instances.
// Unlike Neovim, VS Code has no built-in RPC socket; a companion
// extension listens on the workspace socket and answers a small
// newline-delimited JSON-RPC vocabulary (buffer_status,
// refresh_buffer, send_message, get_visual_selection, delete_buffer).
package vscode

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/NishantJoshi00/sidekick/lib/editor"
)

// requestID issues JSON-RPC request IDs. It is process-wide rather
// than per-connection so that IDs stay unique in logs when one hook
// invocation talks to several VS Code instances.
var requestID atomic.Uint64

// Client is a connection to one VS Code instance's sidekick extension.
// It is not safe for concurrent use.
type Client struct {
	conn    net.Conn
	enc     *json.Encoder
	reader  *bufio.Reader
	socket  string
	timeout time.Duration
}

var _ editor.Client = (*Client)(nil)

// request is one JSON-RPC call to the extension.
type request struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// response is the extension's reply. Result stays raw so callers can
// distinguish an explicit null from a missing field.
type response struct {
	ID     *uint64         `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

type fileParams struct {
	FilePath string `json:"file_path"`
}

type messageParams struct {
	Message string `json:"message"`
}

type statusResult struct {
	IsCurrent         bool `json:"is_current"`
	HasUnsavedChanges bool `json:"has_unsaved_changes"`
}

type selectionResult struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
}

// Dial connects to the VS Code extension listening on socket.
func Dial(ctx context.Context, socket string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, &editor.OpError{Op: "dial", Socket: socket, Err: err}
	}
	return &Client{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		reader:  bufio.NewReader(conn),
		socket:  socket,
		timeout: editor.CallTimeout,
	}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Status reports whether the file is a visible document and whether it
// has unsaved changes.
func (c *Client) Status(ctx context.Context, filePath string) (editor.BufferStatus, error) {
	var status statusResult
	if err := c.call(ctx, "buffer_status", fileParams{FilePath: filePath}, &status); err != nil {
		return editor.BufferStatus{}, c.opError("status", err)
	}
	return editor.BufferStatus{
		IsCurrent:         status.IsCurrent,
		HasUnsavedChanges: status.HasUnsavedChanges,
	}, nil
}

// Refresh makes the extension revert the document to its on-disk
// contents.
func (c *Client) Refresh(ctx context.Context, filePath string) error {
	if err := c.call(ctx, "refresh_buffer", fileParams{FilePath: filePath}, nil); err != nil {
		return c.opError("refresh", err)
	}
	return nil
}

// Notify shows a warning toast to the user.
func (c *Client) Notify(ctx context.Context, message string) error {
	if err := c.call(ctx, "send_message", messageParams{Message: message}, nil); err != nil {
		return c.opError("notify", err)
	}
	return nil
}

// Selection returns the user's selection, or (nil, nil) when the
// extension reports none (a null result).
func (c *Client) Selection(ctx context.Context) (*editor.Context, error) {
	var sel *selectionResult
	if err := c.call(ctx, "get_visual_selection", nil, &sel); err != nil {
		return nil, c.opError("selection", err)
	}
	if sel == nil {
		return nil, nil
	}
	return &editor.Context{
		FilePath:  sel.FilePath,
		StartLine: sel.StartLine,
		EndLine:   sel.EndLine,
		Content:   sel.Content,
	}, nil
}

// Delete closes the document's editor tab without touching the file.
func (c *Client) Delete(ctx context.Context, filePath string) error {
	if err := c.call(ctx, "delete_buffer", fileParams{FilePath: filePath}, nil); err != nil {
		return c.opError("delete", err)
	}
	return nil
}

func (c *Client) opError(op string, err error) error {
	return &editor.OpError{Op: op, Socket: c.socket, Err: err}
}

// call performs one request/response exchange. An error in the
// response wins over any other validation; a response missing its
// result field (as opposed to carrying an explicit null) is malformed
// and fails every call, even ones that discard the result.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	id := requestID.Add(1)
	if err := c.enc.Encode(request{ID: id, Method: method, Params: params}); err != nil {
		return fmt.Errorf("sending %s: %w", method, err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}

	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if resp.ID != nil && *resp.ID != id {
		return fmt.Errorf("response id %d does not match request id %d", *resp.ID, id)
	}
	if len(resp.Result) == 0 {
		return fmt.Errorf("%s: missing result", method)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}
