// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package hook implements the Claude Code hook wire protocol: the
// event JSON a hook process reads from stdin and the decision JSON it
// writes back on stdout. Only the events and fields sidekick acts on
// are modeled; everything else in the event passes through unparsed.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
)

// Hook event names as they appear in hook_event_name.
const (
	EventPreToolUse       = "PreToolUse"
	EventPostToolUse      = "PostToolUse"
	EventUserPromptSubmit = "UserPromptSubmit"
)

// Event is one hook invocation's input.
type Event struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`

	// ToolName and ToolInput are set for PreToolUse and PostToolUse.
	// ToolInput's shape depends on the tool, so it stays raw.
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`

	// Prompt is set for UserPromptSubmit.
	Prompt string `json:"prompt,omitempty"`
}

// ReadEvent decodes one hook event, normally from stdin.
func ReadEvent(r io.Reader) (*Event, error) {
	var event Event
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return nil, fmt.Errorf("decoding hook event: %w", err)
	}
	return &event, nil
}

// TargetPath returns the file a tool call edits, for the file-editing
// tools sidekick coordinates on. The second return value is false for
// non-editing tools and for tool input that lacks a usable path.
func (e *Event) TargetPath() (string, bool) {
	var key string
	switch e.ToolName {
	case "Edit", "Write", "MultiEdit":
		key = "file_path"
	case "NotebookEdit":
		key = "notebook_path"
	default:
		return "", false
	}
	var input map[string]json.RawMessage
	if err := json.Unmarshal(e.ToolInput, &input); err != nil {
		return "", false
	}
	var path string
	if err := json.Unmarshal(input[key], &path); err != nil {
		return "", false
	}
	if path == "" {
		return "", false
	}
	return path, true
}

// Decision is the permission ruling a PreToolUse hook can return.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
	DecisionAsk   Decision = "ask"
)

// Output is a hook invocation's reply. The zero value marshals to "{}",
// which tells Claude Code to proceed normally.
type Output struct {
	Continue       *bool               `json:"continue,omitempty"`
	StopReason     string              `json:"stopReason,omitempty"`
	SuppressOutput *bool               `json:"suppressOutput,omitempty"`
	SystemMessage  string              `json:"systemMessage,omitempty"`
	Decision       string              `json:"decision,omitempty"`
	Reason         string              `json:"reason,omitempty"`
	HookSpecific   *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// HookSpecificOutput carries the per-event-type decision fields.
type HookSpecificOutput struct {
	HookEventName            string   `json:"hookEventName"`
	PermissionDecision       Decision `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string   `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string   `json:"additionalContext,omitempty"`
}

// Proceed returns the no-op output.
func Proceed() *Output {
	return &Output{}
}

// Deny blocks a PreToolUse tool call. The reason is shown to the agent
// so it can retry later instead of fighting the denial.
func Deny(reason string) *Output {
	return &Output{
		HookSpecific: &HookSpecificOutput{
			HookEventName:            EventPreToolUse,
			PermissionDecision:       DecisionDeny,
			PermissionDecisionReason: reason,
		},
	}
}

// AdditionalContext injects text into the conversation alongside the
// user's prompt.
func AdditionalContext(text string) *Output {
	return &Output{
		HookSpecific: &HookSpecificOutput{
			HookEventName:     EventUserPromptSubmit,
			AdditionalContext: text,
		},
	}
}
