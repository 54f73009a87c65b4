package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/cache"
)

func TestCommandsRegistered(t *testing.T) {
	cmd := New()
	want := []string{
		"tasks", "task", "subtasks", "appointments", "appointment", "agenda",
		"settings", "failures", "sync", "info", "mcp", "version", "upgrade", "completion",
	}
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AGENDA_CONFIG_PATH", home)
	cmd := New()
	cmd.SetArgs(append([]string{"--demo", "--yes"}, args...))
	return cmd.Execute()
}

func TestDemoCommands(t *testing.T) {
	tests := map[string][]string{
		"tasks":            {"tasks", "--json"},
		"tasks summary":    {"tasks", "--summary"},
		"overdue page":     {"tasks", "--view", "overdue", "--page", "1"},
		"page per view":    {"tasks", "--page", "active=2,completed=1"},
		"show":             {"task", "show", "1", "-k"},
		"add":              {"task", "add", "Call", "the", "bank", "--due", "tomorrow", "-p", "high"},
		"edit":             {"task", "edit", "5", "--no-due", "--json"},
		"complete cascade": {"task", "complete", "1"},
		"reopen":           {"task", "reopen", "8"},
		"subtasks":         {"subtasks", "1", "--json"},
		"subtask add":      {"subtasks", "add", "1", "Proofread"},
		"subtask move":     {"subtasks", "move", "1", "3", "1"},
		"generate":         {"subtasks", "generate", "1", "--count", "3"},
		"appointments":     {"appointments", "--search", "dent"},
		"book over":        {"appointment", "add", "Call", "--start", "tomorrow 9:30", "--end", "tomorrow 10:30"},
		"book weekly":      {"appointment", "add", "Gym", "--start", "tomorrow 7:00", "--repeat", "weekly", "--every", "2"},
		"agenda":           {"agenda", "--days", "3", "--json"},
		"month":            {"agenda", "--month"},
		"settings":         {"settings", "--json"},
		"work hours":       {"settings", "work-hours", "8:30", "17:00"},
		"sync":             {"sync", "--json"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, run(t, args...))
		})
	}
}

func TestDemoCommandErrors(t *testing.T) {
	tests := map[string][]string{
		"unknown task":     {"task", "show", "99"},
		"bad id":           {"task", "show", "abc"},
		"nothing to edit":  {"task", "edit", "1"},
		"move out of list": {"subtasks", "move", "1", "1", "9"},
		"no start":         {"appointment", "add", "Lunch"},
		"inverted hours":   {"settings", "work-hours", "17:00", "9:00"},
		"bad toggle":       {"settings", "set", "--email", "maybe"},
		"no journal":       {"failures"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(t, args...))
		})
	}
}

func TestSyncReportCarriesCacheState(t *testing.T) {
	c := cache.New()
	c.Set(cache.KeyTasks, []int{1})
	c.Set(cache.KeyMeetings, []int{2})
	c.Invalidate(cache.KeyMeetings)

	report := syncReport(c, []app.RefreshResult{
		{Key: cache.KeyTasks},
		{Key: cache.KeyMeetings, Err: errors.New("calendar offline")},
		{Key: cache.KeySettings, Err: errors.New("timeout")},
	})
	require.Len(t, report, 3)

	assert.Equal(t, c.Version(cache.KeyTasks), report[0].Version)
	assert.NotNil(t, report[0].UpdatedAt)
	assert.False(t, report[0].Stale)

	assert.True(t, report[1].Stale)
	assert.Equal(t, "calendar offline", report[1].Error)

	assert.Zero(t, report[2].Version)
	assert.Nil(t, report[2].UpdatedAt)
	assert.True(t, report[2].Stale)
}
