// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package vscode

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NishantJoshi00/sidekick/lib/editor"
	"github.com/NishantJoshi00/sidekick/lib/testutil"
)

const receiveTimeout = 5 * time.Second

// fakeRequest is one request observed by the fake extension server.
type fakeRequest struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// startFakeVSCode serves line-delimited JSON on socket, answering each
// request with the object returned by handle and recording requests on
// the returned channel.
func startFakeVSCode(t *testing.T, socket string, handle func(req fakeRequest) map[string]any) <-chan fakeRequest {
	t.Helper()
	calls := make(chan fakeRequest, 16)
	listener, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("listening on %s: %v", socket, err)
	}
	t.Cleanup(func() {
		_ = listener.Close()
	})
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go serveVSCodeConn(conn, calls, handle)
		}
	}()
	return calls
}

func serveVSCodeConn(conn net.Conn, calls chan<- fakeRequest, handle func(fakeRequest) map[string]any) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req fakeRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			return
		}
		calls <- req
		data, err := json.Marshal(handle(req))
		if err != nil {
			return
		}
		if _, err := conn.Write(append(data, '\n')); err != nil {
			return
		}
	}
}

func dialTest(t *testing.T, socket string) *Client {
	t.Helper()
	client, err := Dial(context.Background(), socket)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

// --- Capabilities ---

func TestStatus(t *testing.T) {
	t.Parallel()

	socket := filepath.Join(testutil.SocketDir(t), "code.sock")
	calls := startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
		return map[string]any{
			"id":     req.ID,
			"result": map[string]any{"is_current": true, "has_unsaved_changes": false},
		}
	})

	status, err := dialTest(t, socket).Status(context.Background(), "/w/a.go")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	want := editor.BufferStatus{IsCurrent: true, HasUnsavedChanges: false}
	if status != want {
		t.Errorf("expected %+v, got %+v", want, status)
	}

	req := testutil.RequireReceive(t, calls, receiveTimeout, "waiting for buffer_status")
	if req.Method != "buffer_status" {
		t.Errorf("expected method buffer_status, got %s", req.Method)
	}
	var params fileParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("decoding params: %v", err)
	}
	if params.FilePath != "/w/a.go" {
		t.Errorf("expected file_path=/w/a.go, got %s", params.FilePath)
	}
}

func TestNotify(t *testing.T) {
	t.Parallel()

	socket := filepath.Join(testutil.SocketDir(t), "code.sock")
	calls := startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
		return map[string]any{"id": req.ID, "result": map[string]any{"success": true}}
	})

	if err := dialTest(t, socket).Notify(context.Background(), "Claude tried to edit this file"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	req := testutil.RequireReceive(t, calls, receiveTimeout, "waiting for send_message")
	if req.Method != "send_message" {
		t.Errorf("expected method send_message, got %s", req.Method)
	}
	var params messageParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("decoding params: %v", err)
	}
	if params.Message != "Claude tried to edit this file" {
		t.Errorf("unexpected message %q", params.Message)
	}
}

func TestRefreshAndDelete(t *testing.T) {
	t.Parallel()

	socket := filepath.Join(testutil.SocketDir(t), "code.sock")
	calls := startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
		return map[string]any{"id": req.ID, "result": map[string]any{"success": true}}
	})
	client := dialTest(t, socket)

	if err := client.Refresh(context.Background(), "/w/a.go"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := client.Delete(context.Background(), "/w/a.go"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	first := testutil.RequireReceive(t, calls, receiveTimeout, "waiting for refresh_buffer")
	if first.Method != "refresh_buffer" {
		t.Errorf("expected method refresh_buffer, got %s", first.Method)
	}
	second := testutil.RequireReceive(t, calls, receiveTimeout, "waiting for delete_buffer")
	if second.Method != "delete_buffer" {
		t.Errorf("expected method delete_buffer, got %s", second.Method)
	}
}

func TestSelection(t *testing.T) {
	t.Parallel()

	t.Run("active selection", func(t *testing.T) {
		t.Parallel()
		socket := filepath.Join(testutil.SocketDir(t), "code.sock")
		startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
			return map[string]any{
				"id": req.ID,
				"result": map[string]any{
					"file_path":  "/w/a.go",
					"start_line": 3,
					"end_line":   5,
					"content":    "x\ny\nz",
				},
			}
		})

		sel, err := dialTest(t, socket).Selection(context.Background())
		if err != nil {
			t.Fatalf("Selection failed: %v", err)
		}
		want := editor.Context{FilePath: "/w/a.go", StartLine: 3, EndLine: 5, Content: "x\ny\nz"}
		if sel == nil || *sel != want {
			t.Errorf("expected %+v, got %+v", want, sel)
		}
	})

	t.Run("null result means no selection", func(t *testing.T) {
		t.Parallel()
		socket := filepath.Join(testutil.SocketDir(t), "code.sock")
		startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
			return map[string]any{"id": req.ID, "result": nil}
		})

		sel, err := dialTest(t, socket).Selection(context.Background())
		if err != nil {
			t.Fatalf("Selection failed: %v", err)
		}
		if sel != nil {
			t.Errorf("expected nil selection, got %+v", sel)
		}
	})
}

// --- Wire protocol ---

func TestErrorWinsOverResult(t *testing.T) {
	t.Parallel()

	socket := filepath.Join(testutil.SocketDir(t), "code.sock")
	startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
		return map[string]any{
			"id":     req.ID,
			"result": map[string]any{"is_current": true, "has_unsaved_changes": true},
			"error":  map[string]any{"code": -32601, "message": "unknown method"},
		}
	})

	_, err := dialTest(t, socket).Status(context.Background(), "/w/a.go")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "remote error -32601: unknown method") {
		t.Errorf("expected remote error in message, got %q", err.Error())
	}
	var opErr *editor.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *editor.OpError, got %T", err)
	}
	if opErr.Op != "status" {
		t.Errorf("expected op=status, got %s", opErr.Op)
	}
}

func TestMissingResult(t *testing.T) {
	t.Parallel()

	t.Run("call expecting a result", func(t *testing.T) {
		t.Parallel()
		socket := filepath.Join(testutil.SocketDir(t), "code.sock")
		startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
			return map[string]any{"id": req.ID}
		})

		_, err := dialTest(t, socket).Status(context.Background(), "/w/a.go")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "missing result") {
			t.Errorf("expected missing result error, got %q", err.Error())
		}
	})

	t.Run("call discarding the result", func(t *testing.T) {
		t.Parallel()
		socket := filepath.Join(testutil.SocketDir(t), "code.sock")
		startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
			return map[string]any{"id": req.ID}
		})
		client := dialTest(t, socket)

		// A response with neither error nor result is malformed even
		// when the caller ignores the result.
		for op, err := range map[string]error{
			"refresh": client.Refresh(context.Background(), "/w/a.go"),
			"notify":  client.Notify(context.Background(), "hello"),
			"delete":  client.Delete(context.Background(), "/w/a.go"),
		} {
			if err == nil {
				t.Errorf("%s: expected error, got nil", op)
				continue
			}
			if !strings.Contains(err.Error(), "missing result") {
				t.Errorf("%s: expected missing result error, got %q", op, err.Error())
			}
		}
	})

	t.Run("explicit null result satisfies a void call", func(t *testing.T) {
		t.Parallel()
		socket := filepath.Join(testutil.SocketDir(t), "code.sock")
		startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
			return map[string]any{"id": req.ID, "result": nil}
		})

		if err := dialTest(t, socket).Refresh(context.Background(), "/w/a.go"); err != nil {
			t.Errorf("expected null result to satisfy refresh, got %v", err)
		}
	})
}

func TestResponseIDMismatch(t *testing.T) {
	t.Parallel()

	socket := filepath.Join(testutil.SocketDir(t), "code.sock")
	startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
		return map[string]any{"id": req.ID + 1, "result": map[string]any{"success": true}}
	})

	err := dialTest(t, socket).Refresh(context.Background(), "/w/a.go")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "does not match request id") {
		t.Errorf("expected id mismatch error, got %q", err.Error())
	}
}

func TestRequestIDsIncrease(t *testing.T) {
	// Deliberately not parallel: the request counter is process-wide,
	// and concurrent tests would interleave their own IDs.
	socket := filepath.Join(testutil.SocketDir(t), "code.sock")
	calls := startFakeVSCode(t, socket, func(req fakeRequest) map[string]any {
		return map[string]any{"id": req.ID, "result": map[string]any{"success": true}}
	})
	client := dialTest(t, socket)

	if err := client.Notify(context.Background(), "one"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if err := client.Notify(context.Background(), "two"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	first := testutil.RequireReceive(t, calls, receiveTimeout, "waiting for first request")
	second := testutil.RequireReceive(t, calls, receiveTimeout, "waiting for second request")
	if second.ID != first.ID+1 {
		t.Errorf("expected consecutive ids, got %d then %d", first.ID, second.ID)
	}
}

func TestCallTimeout(t *testing.T) {
	t.Parallel()

	socket := filepath.Join(testutil.SocketDir(t), "code.sock")
	listener, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("listening on %s: %v", socket, err)
	}
	t.Cleanup(func() {
		_ = listener.Close()
	})
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		// Read requests but never answer.
		_, _ = io.Copy(io.Discard, conn)
	}()

	client := dialTest(t, socket)
	client.timeout = 50 * time.Millisecond

	_, err = client.Status(context.Background(), "/w/a.go")
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	var opErr *editor.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *editor.OpError, got %T", err)
	}
	if !opErr.Timeout() {
		t.Errorf("expected Timeout() = true, got false: %v", err)
	}
}
