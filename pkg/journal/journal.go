// Package journal keeps a local record of mutations the server rejected so
// they can be reviewed and retried later.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tableflip.dev/agenda/pkg/cache"
	"tableflip.dev/agenda/pkg/mutation"
)

// Entry is one rolled-back mutation.
type Entry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MutationID string     `gorm:"uniqueIndex" json:"mutation_id"`
	Name       string     `gorm:"index" json:"name"`
	Keys       string     `json:"keys"`
	Error      string     `json:"error"`
	Retryable  bool       `json:"retryable"`
	FailedAt   time.Time  `gorm:"index" json:"failed_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"-"`
}

// Resolved reports whether the failure was marked handled.
func (e Entry) Resolved() bool { return e.ResolvedAt != nil }

// Journal stores entries in SQLite.
type Journal struct {
	db  *gorm.DB
	now func() time.Time
}

var _ mutation.Recorder = (*Journal)(nil)

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("journal: entry not found")

// Open opens (and migrates) the journal database at dsn.
func Open(dsn string) (*Journal, error) {
	if dsn == "" {
		dsn = "journal.db"
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}
	dbLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	return New(db)
}

// New wraps an existing connection and runs migrations.
func New(db *gorm.DB) (*Journal, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("journal: migrate db: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Record implements mutation.Recorder.
func (j *Journal) Record(ctx context.Context, f mutation.Failure) error {
	keys := make([]string, len(f.Keys))
	for i, k := range f.Keys {
		keys[i] = string(k)
	}
	e := Entry{
		MutationID: f.MutationID,
		Name:       f.Name,
		Keys:       strings.Join(keys, ","),
		Retryable:  f.Retryable,
		FailedAt:   f.At,
	}
	if f.Err != nil {
		e.Error = f.Err.Error()
	}
	if e.FailedAt.IsZero() {
		e.FailedAt = j.now()
	}
	if err := j.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("journal: record %s: %w", f.Name, err)
	}
	return nil
}

// List returns entries newest first. Resolved entries are skipped unless
// includeResolved is set.
func (j *Journal) List(ctx context.Context, includeResolved bool) ([]Entry, error) {
	var out []Entry
	q := j.db.WithContext(ctx).Order("failed_at DESC, id DESC")
	if !includeResolved {
		q = q.Where("resolved_at IS NULL")
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	return out, nil
}

// Resolve marks an entry handled.
func (j *Journal) Resolve(ctx context.Context, id uint) (Entry, error) {
	var e Entry
	if err := j.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("journal: find %d: %w", id, err)
	}
	if e.ResolvedAt != nil {
		return e, nil
	}
	at := j.now()
	e.ResolvedAt = &at
	if err := j.db.WithContext(ctx).Save(&e).Error; err != nil {
		return Entry{}, fmt.Errorf("journal: resolve %d: %w", id, err)
	}
	return e, nil
}

// Prune deletes resolved entries older than before.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := j.db.WithContext(ctx).Where("resolved_at IS NOT NULL AND resolved_at < ?", before).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("journal: prune: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CacheKeys splits the stored cache keys.
func (e Entry) CacheKeys() []cache.Key {
	if e.Keys == "" {
		return nil
	}
	parts := strings.Split(e.Keys, ",")
	out := make([]cache.Key, len(parts))
	for i, p := range parts {
		out[i] = cache.Key(p)
	}
	return out
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDirForSQLite creates the parent directory of a file DSN.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("journal: create db dir %q: %w", dir, err)
	}
	return nil
}
