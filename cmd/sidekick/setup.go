// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
)

// editingToolsMatcher selects the Claude Code tools that modify files.
// PreToolUse and PostToolUse registrations carry it; UserPromptSubmit
// has no tool and therefore no matcher.
const editingToolsMatcher = "Edit|Write|MultiEdit|NotebookEdit"

// runSetup registers the sidekick hook commands in Claude Code's
// settings file. By default it targets .claude/settings.json under
// the current directory; --global targets ~/.claude/settings.json.
// Existing settings survive the merge: entries for other hooks and
// unrelated keys are preserved, and rerunning setup updates the
// command paths in place instead of appending duplicates.
func runSetup(args []string) error {
	flagSet := pflag.NewFlagSet("sidekick setup", pflag.ContinueOnError)
	global := flagSet.Bool("global", false, "register in ~/.claude/settings.json instead of the project's")
	printOnly := flagSet.Bool("print", false, "write the merged settings to stdout instead of the file")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	binary, err := hookBinaryPath()
	if err != nil {
		return err
	}

	settingsPath, err := resolveSettingsPath(*global)
	if err != nil {
		return err
	}

	existing, err := os.ReadFile(settingsPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", settingsPath, err)
	}

	merged, err := mergeHookSettings(existing, binary)
	if err != nil {
		return fmt.Errorf("merging %s: %w", settingsPath, err)
	}

	if *printOnly {
		fmt.Println(string(merged))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(settingsPath), err)
	}
	if err := os.WriteFile(settingsPath, merged, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", settingsPath, err)
	}
	fmt.Printf("registered sidekick hooks in %s\n", settingsPath)
	return nil
}

// hookBinaryPath resolves the absolute path of the running binary for
// use in hook commands. Symlinks are resolved so the written settings
// keep working if the symlink that launched setup is later removed.
func hookBinaryPath() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating sidekick binary: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return "", fmt.Errorf("resolving sidekick binary path: %w", err)
	}
	return resolved, nil
}

// resolveSettingsPath returns the Claude Code settings file to edit:
// ~/.claude/settings.json when global is set, .claude/settings.json
// under the current directory otherwise.
func resolveSettingsPath(global bool) (string, error) {
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		return filepath.Join(home, ".claude", "settings.json"), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining working directory: %w", err)
	}
	return filepath.Join(cwd, ".claude", "settings.json"), nil
}

// mergeHookSettings merges sidekick's hook registrations into an
// existing Claude Code settings document. A nil or empty document
// starts from scratch. The input may contain comments and trailing
// commas (Claude Code tolerates JSONC); the output is plain JSON,
// pretty-printed the way Claude Code writes its own settings.
func mergeHookSettings(existing []byte, binaryPath string) ([]byte, error) {
	settings := map[string]any{}
	if len(existing) > 0 {
		if err := json.Unmarshal(jsonc.ToJSON(existing), &settings); err != nil {
			return nil, fmt.Errorf("parsing existing settings: %w", err)
		}
	}

	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		hooks = map[string]any{}
	}
	settings["hooks"] = hooks

	command := binaryPath + " hook"

	registrations := []struct {
		event   string
		matcher string
	}{
		{"PreToolUse", editingToolsMatcher},
		{"PostToolUse", editingToolsMatcher},
		{"UserPromptSubmit", ""},
	}
	for _, registration := range registrations {
		entries, _ := hooks[registration.event].([]any)
		hooks[registration.event] = ensureHookEntry(entries, registration.matcher, command)
	}

	return json.MarshalIndent(settings, "", "    ")
}

// ensureHookEntry returns entries with a hook entry for command
// present. An existing sidekick entry, recognized by its command
// ending in "sidekick hook", is updated in place so that rerunning
// setup after the binary moves fixes the path instead of stacking a
// duplicate. Entries belonging to other tools are left alone.
func ensureHookEntry(entries []any, matcher, command string) []any {
	for _, entry := range entries {
		entryMap, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		hooksList, ok := entryMap["hooks"].([]any)
		if !ok {
			continue
		}
		for _, registered := range hooksList {
			hookMap, ok := registered.(map[string]any)
			if !ok {
				continue
			}
			existingCommand, _ := hookMap["command"].(string)
			if existingCommand == command || strings.HasSuffix(existingCommand, "sidekick hook") {
				hookMap["command"] = command
				if matcher != "" {
					entryMap["matcher"] = matcher
				}
				return entries
			}
		}
	}

	entry := map[string]any{
		"hooks": []any{
			map[string]any{
				"type":    "command",
				"command": command,
			},
		},
	}
	if matcher != "" {
		entry["matcher"] = matcher
	}
	return append(entries, entry)
}
