// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy decides how sidekick answers each hook event. It
// discovers the workspace's editor instances, fans the relevant editor
// operation out across them, and folds the answers into a single hook
// output. All decisions are advisory and fail open: when no editor
// answers, Claude Code proceeds as if sidekick were not installed.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/NishantJoshi00/sidekick/lib/config"
	"github.com/NishantJoshi00/sidekick/lib/editor"
	"github.com/NishantJoshi00/sidekick/lib/editor/neovim"
	"github.com/NishantJoshi00/sidekick/lib/editor/vscode"
	"github.com/NishantJoshi00/sidekick/lib/fanout"
	"github.com/NishantJoshi00/sidekick/lib/hook"
	"github.com/NishantJoshi00/sidekick/lib/socketpath"
)

const (
	// denyReason is shown to the agent when an edit is blocked. It
	// names the retry path so the agent backs off instead of fighting
	// the denial.
	denyReason = "The file is being edited by the user, try again later"

	// notifyMessage is shown to the user in their editor when an edit
	// was blocked.
	notifyMessage = "Claude tried to edit this file"
)

// Engine answers hook events for one workspace.
type Engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	workspace string

	// targets enumerates the editor instances to consult. Overridden
	// in tests; defaults to live socket discovery.
	targets func() []fanout.Target
}

// NewEngine creates an engine rooted at the current working directory,
// which is the workspace Claude Code invokes hooks from.
func NewEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	workspace, err := socketpath.Workspace(cwd)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing workspace: %w", err)
	}
	engine := &Engine{
		cfg:       cfg,
		logger:    logger,
		workspace: workspace,
	}
	engine.targets = engine.liveTargets
	return engine, nil
}

// liveTargets discovers the enabled editor families' sockets for this
// workspace.
func (e *Engine) liveTargets() []fanout.Target {
	var targets []fanout.Target
	if e.cfg.Editors.Neovim.Enabled {
		sockets := socketpath.Discover(e.cfg.SocketDir, e.workspace, socketpath.Neovim)
		targets = append(targets, fanout.Targets(sockets, dialNeovim)...)
	}
	if e.cfg.Editors.VSCode.Enabled {
		sockets := socketpath.Discover(e.cfg.SocketDir, e.workspace, socketpath.VSCode)
		targets = append(targets, fanout.Targets(sockets, dialVSCode)...)
	}
	return targets
}

func dialNeovim(ctx context.Context, socket string) (editor.Client, error) {
	return neovim.Dial(ctx, socket)
}

func dialVSCode(ctx context.Context, socket string) (editor.Client, error) {
	return vscode.Dial(ctx, socket)
}

// Handle routes one hook event to its decision. Unhandled event types
// proceed.
func (e *Engine) Handle(ctx context.Context, event *hook.Event) *hook.Output {
	switch event.HookEventName {
	case hook.EventPreToolUse:
		return e.preToolUse(ctx, event)
	case hook.EventPostToolUse:
		return e.postToolUse(ctx, event)
	case hook.EventUserPromptSubmit:
		return e.promptSubmitted(ctx)
	default:
		e.logger.Debug("ignoring hook event", "event", event.HookEventName)
		return hook.Proceed()
	}
}

// preToolUse blocks a file edit while the user has that file focused
// with unsaved changes in any editor instance. Anything less than that
// (open but clean, dirty but in a background buffer) proceeds: the
// refresh after the edit reconciles those safely.
func (e *Engine) preToolUse(ctx context.Context, event *hook.Event) *hook.Output {
	path, ok := event.TargetPath()
	if !ok {
		return hook.Proceed()
	}

	targets := e.targets()
	status, _ := fanout.Fold(ctx, targets,
		func(ctx context.Context, client editor.Client) (editor.BufferStatus, error) {
			return client.Status(ctx, path)
		},
		editor.BufferStatus{},
		func(acc, status editor.BufferStatus) (editor.BufferStatus, bool) {
			merged := acc.Merge(status)
			return merged, !merged.HasUnsavedChanges
		},
	)

	if status.IsCurrent && status.HasUnsavedChanges {
		e.logger.Info("denying edit to file open in editor",
			"path", path,
			"tool", event.ToolName,
		)
		notified := fanout.AnySuccess(ctx, targets, func(ctx context.Context, client editor.Client) error {
			return client.Notify(ctx, notifyMessage)
		})
		if !notified && len(targets) > 0 {
			e.logger.Warn("failed to notify any editor instance", "path", path)
		}
		return hook.Deny(denyReason)
	}
	return hook.Proceed()
}

// postToolUse tells every instance to re-read the edited file from
// disk. Always proceeds: the edit already happened.
func (e *Engine) postToolUse(ctx context.Context, event *hook.Event) *hook.Output {
	path, ok := event.TargetPath()
	if !ok {
		return hook.Proceed()
	}

	targets := e.targets()
	refreshed := fanout.AnySuccess(ctx, targets, func(ctx context.Context, client editor.Client) error {
		return client.Refresh(ctx, path)
	})
	if !refreshed && len(targets) > 0 {
		e.logger.Warn("failed to refresh any editor instance", "path", path)
	}
	return hook.Proceed()
}

// promptSubmitted gathers visual selections from every instance and
// injects them as context for the prompt.
func (e *Engine) promptSubmitted(ctx context.Context) *hook.Output {
	selections := fanout.CollectAll(ctx, e.targets(), func(ctx context.Context, client editor.Client) (*editor.Context, error) {
		return client.Selection(ctx)
	})
	if len(selections) == 0 {
		return hook.Proceed()
	}
	e.logger.Debug("forwarding editor selections", "count", len(selections))
	return hook.AdditionalContext(renderSelections(selections))
}

// renderSelections formats selections the way the agent sees them:
// one fenced block per selection, separated by blank lines.
func renderSelections(selections []editor.Context) string {
	blocks := make([]string, len(selections))
	for i, sel := range selections {
		blocks[i] = fmt.Sprintf("[Selected from %s:%d-%d]\n```\n%s\n```",
			sel.FilePath, sel.StartLine, sel.EndLine, sel.Content)
	}
	return strings.Join(blocks, "\n\n")
}
