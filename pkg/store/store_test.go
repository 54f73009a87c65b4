package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tableflip.dev/agenda/pkg/cache"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func decodeStrings(_ cache.Key, data []byte) (any, error) {
	var v []string
	err := json.Unmarshal(data, &v)
	return v, err
}

func TestKeyTransformRoundTrip(t *testing.T) {
	for _, key := range []string{"tasks", "tasks/subtasks", "tasks/12/subtasks"} {
		pk := keyToPathTransform(key)
		if got := pathToKeyTransform(pk); got != key {
			t.Fatalf("round trip %q: got %q", key, got)
		}
	}
	pk := keyToPathTransform("tasks/12/subtasks")
	if len(pk.Path) != 2 || pk.FileName != "subtasks.json" {
		t.Fatalf("unexpected path key %+v", pk)
	}
}

func TestMirrorPersistAndRestore(t *testing.T) {
	base := t.TempDir()
	p, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	src := cache.New()
	src.Set("tasks/7/subtasks", []string{"a", "b"})
	if err := NewMirror(src, p, decodeStrings).Persist("tasks/7/subtasks"); err != nil {
		t.Fatalf("persist: %v", err)
	}

	dst := cache.New()
	n, err := NewMirror(dst, p, decodeStrings).Restore(context.Background())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 restored key, got %d", n)
	}
	v, ok := dst.Get("tasks/7/subtasks")
	if !ok {
		t.Fatal("expected restored key")
	}
	if got := v.([]string); len(got) != 2 || got[1] != "b" {
		t.Fatalf("unexpected value %v", got)
	}
	if !dst.IsStale("tasks/7/subtasks") {
		t.Fatal("restored values must be stale")
	}
}

func TestMirrorPersistErasesRemovedKeys(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	c := cache.New()
	m := NewMirror(c, p, decodeStrings)
	c.Set("tasks", []string{"x"})
	if err := m.Persist("tasks"); err != nil {
		t.Fatalf("persist: %v", err)
	}
	c.Remove("tasks")
	if err := m.Persist("tasks"); err != nil {
		t.Fatalf("persist removed: %v", err)
	}
	if keys := p.Keys(context.Background()); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestPersistenceWatchEmitsKeyChanges(t *testing.T) {
	base := t.TempDir()
	p, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Write("settings", []byte(`{}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Key == "" {
				return
			}
			if evt.Key != "settings" {
				t.Fatalf("expected key 'settings', got %q", evt.Key)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for change event")
		}
	}
}
