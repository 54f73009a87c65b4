// Package store mirrors cache entries to disk so a fresh process can show
// the last known data before the server answers.
package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/agenda/pkg/cache"
)

const ext = ".json"

// Persistence stores one JSON document per cache key.
type Persistence interface {
	Keys(ctx context.Context) []cache.Key
	Read(key cache.Key) ([]byte, error)
	Write(key cache.Key, data []byte) error
	Erase(key cache.Key) error
	Watch(ctx context.Context) (<-chan Event, error)
	BasePath() string
}

// Config provides the mirror location.
type Config interface {
	BasePath() string
}

// Load creates a Persistence backed by diskv rooted at cfg.BasePath().
func Load(cfg Config) (Persistence, error) {
	if cfg == nil || cfg.BasePath() == "" {
		return nil, errors.New("store: base path required")
	}
	basePath := cfg.BasePath()
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) BasePath() string { return p.basePath }

func (p *persistence) Keys(ctx context.Context) []cache.Key {
	var keys []cache.Key
	for k := range p.d.Keys(ctx.Done()) {
		keys = append(keys, cache.Key(k))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (p *persistence) Read(key cache.Key) ([]byte, error) {
	return p.d.Read(string(key))
}

func (p *persistence) Write(key cache.Key, data []byte) error {
	return p.d.Write(string(key), data)
}

func (p *persistence) Erase(key cache.Key) error {
	if !p.d.Has(string(key)) {
		return nil
	}
	return p.d.Erase(string(key))
}

// keyToPathTransform maps "tasks/12/subtasks" to tasks/12/subtasks.json.
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1] + ext,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	name := strings.TrimSuffix(pathKey.FileName, ext)
	if len(pathKey.Path) == 0 {
		return name
	}
	return strings.Join(pathKey.Path, "/") + "/" + name
}

// keyForPath derives the cache key of a file under base.
func keyForPath(base, path string) (cache.Key, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, ext) {
		return "", false
	}
	return cache.Key(strings.TrimSuffix(rel, ext)), true
}
