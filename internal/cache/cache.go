// Package cache remembers which modules were generated from which inputs so
// unchanged modules can be skipped.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/funvibe/luabind/internal/binding"
	"github.com/funvibe/luabind/internal/records"
)

var log = commonlog.GetLogger("luabind.cache")

// codegenVersion is bumped when the generated code format changes.
// This ensures stale outputs are regenerated.
const codegenVersion = "v1"

const indexFile = "index.db"

// Entry is one generated module in the index.
type Entry struct {
	Module      string
	Fingerprint string
	OutputPath  string
	Bindings    int
	RunID       string
	GeneratedAt time.Time
}

// Cache is the generation index stored in <dir>/index.db.
type Cache struct {
	dir string
	db  *sql.DB
}

// Open opens (creating if needed) the index in dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("opening cache index: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		module TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		output_path TEXT NOT NULL,
		bindings INTEGER NOT NULL,
		run_id TEXT NOT NULL,
		generated_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Cache{dir: dir, db: db}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Close closes the index.
func (c *Cache) Close() error { return c.db.Close() }

// Fingerprint generates a deterministic key from a record file and the
// generator options.
func Fingerprint(f *records.File, opts binding.Options) (string, error) {
	data, err := records.CanonicalCBOR(struct {
		File    *records.File
		Options binding.Options
	}{f, opts})
	if err != nil {
		return "", fmt.Errorf("encoding fingerprint input: %w", err)
	}

	h := sha256.New()
	h.Write(data)
	h.Write([]byte("\x00"))
	h.Write([]byte(codegenVersion))

	return hex.EncodeToString(h.Sum(nil))[:16], nil // First 16 hex chars = 64 bits
}

// Lookup returns the entry for module if it was generated from the same
// fingerprint into outputPath and that file still exists.
func (c *Cache) Lookup(module, fingerprint, outputPath string) (*Entry, bool, error) {
	e, err := c.get(module)
	if err != nil || e == nil {
		return nil, false, err
	}
	if e.Fingerprint != fingerprint {
		log.Debugf("%s: fingerprint changed (%s -> %s)", module, e.Fingerprint, fingerprint)
		return nil, false, nil
	}
	if filepath.Clean(e.OutputPath) != filepath.Clean(outputPath) {
		log.Debugf("%s: output moved (%s -> %s)", module, e.OutputPath, outputPath)
		return nil, false, nil
	}
	info, err := os.Stat(e.OutputPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		log.Debugf("%s: cached output %s is gone", module, e.OutputPath)
		return nil, false, nil
	}
	return e, true, nil
}

func (c *Cache) get(module string) (*Entry, error) {
	var (
		e     Entry
		stamp int64
	)
	err := c.db.QueryRow(
		"SELECT module, fingerprint, output_path, bindings, run_id, generated_at FROM generations WHERE module = ?",
		module,
	).Scan(&e.Module, &e.Fingerprint, &e.OutputPath, &e.Bindings, &e.RunID, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	e.GeneratedAt = time.UnixMilli(stamp)
	return &e, nil
}

// Store records a generation, replacing any previous entry for the module.
// A missing RunID or GeneratedAt is filled in.
func (c *Cache) Store(e Entry) (*Entry, error) {
	if e.RunID == "" {
		e.RunID = uuid.NewString()
	}
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = time.Now()
	}
	_, err := c.db.Exec(
		`INSERT INTO generations (module, fingerprint, output_path, bindings, run_id, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(module) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			output_path = excluded.output_path,
			bindings = excluded.bindings,
			run_id = excluded.run_id,
			generated_at = excluded.generated_at`,
		e.Module, e.Fingerprint, e.OutputPath, e.Bindings, e.RunID, e.GeneratedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("writing cache: %w", err)
	}
	return &e, nil
}

// Entries lists all indexed modules by name.
func (c *Cache) Entries() ([]Entry, error) {
	rows, err := c.db.Query("SELECT module, fingerprint, output_path, bindings, run_id, generated_at FROM generations ORDER BY module")
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			stamp int64
		)
		if err := rows.Scan(&e.Module, &e.Fingerprint, &e.OutputPath, &e.Bindings, &e.RunID, &stamp); err != nil {
			return nil, fmt.Errorf("reading cache: %w", err)
		}
		e.GeneratedAt = time.UnixMilli(stamp)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clean closes the index and removes the cache directory.
func (c *Cache) Clean() error {
	c.db.Close()
	return os.RemoveAll(c.dir)
}
