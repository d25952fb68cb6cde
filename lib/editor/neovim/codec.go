// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package neovim

import "github.com/vmihailenco/msgpack/v5"

// Neovim's msgpack-RPC API tags its object handles as extension types
// 0, 1, and 2. The ext payload is the integer handle, itself
// msgpack-encoded. Requests may pass plain integers instead (the API
// accepts either), but responses always carry the ext form, so the
// types must be registered for decoding.

// Buffer is a Neovim buffer handle. The handle value equals the buffer
// number, so it can be spliced into ex commands and Lua directly.
type Buffer int64

// Window is a Neovim window handle.
type Window int64

// Tabpage is a Neovim tabpage handle.
type Tabpage int64

func (b Buffer) MarshalMsgpack() ([]byte, error) { return msgpack.Marshal(int64(b)) }

func (b *Buffer) UnmarshalMsgpack(data []byte) error {
	var handle int64
	if err := msgpack.Unmarshal(data, &handle); err != nil {
		return err
	}
	*b = Buffer(handle)
	return nil
}

func (w Window) MarshalMsgpack() ([]byte, error) { return msgpack.Marshal(int64(w)) }

func (w *Window) UnmarshalMsgpack(data []byte) error {
	var handle int64
	if err := msgpack.Unmarshal(data, &handle); err != nil {
		return err
	}
	*w = Window(handle)
	return nil
}

func (p Tabpage) MarshalMsgpack() ([]byte, error) { return msgpack.Marshal(int64(p)) }

func (p *Tabpage) UnmarshalMsgpack(data []byte) error {
	var handle int64
	if err := msgpack.Unmarshal(data, &handle); err != nil {
		return err
	}
	*p = Tabpage(handle)
	return nil
}

func init() {
	msgpack.RegisterExt(0, (*Buffer)(nil))
	msgpack.RegisterExt(1, (*Window)(nil))
	msgpack.RegisterExt(2, (*Tabpage)(nil))
}
