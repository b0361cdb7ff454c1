// Package store is the embedded relational backing for an ingested
// annotation set (spec.md §4.10, §6.2): one SQLite file holding the
// features, relations, meta, directives, autoincrements, and
// duplicates tables, managed through goose migrations.
//
// The connection/migration shape is grounded on
// leapstack-labs-leapsql/internal/state/sqlite.go and migrate.go: the
// pure-Go modernc.org/sqlite driver, a WAL-mode/foreign-keys-on DSN,
// and goose.Up against an embedded migrations directory. Bulk writes
// follow the same package's single-transaction pattern, generalized
// from run-tracking rows to features/relations/meta.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"gffdb/attr"
	"gffdb/dialect"
	"gffdb/feature"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps an opened, migrated gffdb store.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the SQLite file at path and
// brings its schema up to date via goose migrations. Use ":memory:"
// for a scratch in-process store.
func Open(path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := path + "?_foreign_keys=on&_journal_mode=WAL"
	if path == ":memory:" {
		dsn = ":memory:?_foreign_keys=on"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	if err := conn.PingContext(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: pinging %s: %w", path, err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: setting goose dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: running migrations: %w", err)
	}

	return &DB{conn: conn, logger: logger}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn exposes the underlying *sql.DB for callers that need a query
// shape this package doesn't provide.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Writer accumulates one ingest's worth of rows inside a single
// transaction; callers call Put* repeatedly, then Commit once, which
// builds the indexes and runs ANALYZE before committing the
// transaction (spec.md §4.10).
type Writer struct {
	db *DB
	tx *sql.Tx
}

// BeginWrite opens a new write transaction.
func (d *DB) BeginWrite(ctx context.Context) (*Writer, error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: beginning transaction: %w", err)
	}
	return &Writer{db: d, tx: tx}, nil
}

// PutFeature inserts or replaces f under key, serializing its
// attributes/extra columns as JSON.
func (w *Writer) PutFeature(ctx context.Context, key string, f *feature.Feature) error {
	attrsJSON, err := marshalAttributes(f.Attributes)
	if err != nil {
		return fmt.Errorf("store: marshaling attributes for %s: %w", key, err)
	}
	extraJSON, err := json.Marshal(f.Extra)
	if err != nil {
		return fmt.Errorf("store: marshaling extra for %s: %w", key, err)
	}

	var bin interface{}
	if b := f.Bin(); b != nil {
		bin = *b
	}

	_, err = w.tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO features
			(id, seqid, source, featuretype, start, end, score, strand, frame, attributes, extra, bin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key, f.Seqid, f.Source, f.Featuretype,
		nullableInt(f.Start), nullableInt(f.End),
		f.Score, f.Strand, f.Frame, string(attrsJSON), string(extraJSON), bin,
	)
	if err != nil {
		return fmt.Errorf("store: inserting feature %s: %w", key, err)
	}
	return nil
}

// DeleteFeature removes a previously-inserted row. The ingest pipeline
// does not call it; create_unique stores the new row under its new key
// alongside the original.
func (w *Writer) DeleteFeature(ctx context.Context, key string) error {
	_, err := w.tx.ExecContext(ctx, `DELETE FROM features WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("store: deleting feature %s: %w", key, err)
	}
	return nil
}

// PutRelation inserts one (parent, child, level) edge.
func (w *Writer) PutRelation(ctx context.Context, parent, child string, level int) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO relations (parent, child, level) VALUES (?, ?, ?)`,
		parent, child, level,
	)
	if err != nil {
		return fmt.Errorf("store: inserting relation (%s,%s,%d): %w", parent, child, level, err)
	}
	return nil
}

// PutMeta records the database-level dialect and a format version
// string, overwriting any prior row (there is only ever one).
func (w *Writer) PutMeta(ctx context.Context, d *dialect.Dialect, version string) error {
	dialectJSON, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("store: marshaling dialect: %w", err)
	}
	_, err = w.tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO meta (id, dialect, version) VALUES (0, ?, ?)`,
		string(dialectJSON), version,
	)
	if err != nil {
		return fmt.Errorf("store: inserting meta: %w", err)
	}
	return nil
}

// PutDirective records one "##"-prefixed directive line verbatim.
func (w *Writer) PutDirective(ctx context.Context, directive string) error {
	_, err := w.tx.ExecContext(ctx, `INSERT INTO directives (directive) VALUES (?)`, directive)
	if err != nil {
		return fmt.Errorf("store: inserting directive: %w", err)
	}
	return nil
}

// PutAutoincrement persists one counter's current value, so a later
// incremental ingest against the same store can resume numbering.
func (w *Writer) PutAutoincrement(ctx context.Context, base string, n int64) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO autoincrements (base, n) VALUES (?, ?)`,
		base, n,
	)
	if err != nil {
		return fmt.Errorf("store: inserting autoincrement %s: %w", base, err)
	}
	return nil
}

// PutDuplicate records an original-key -> new-key remapping produced
// by merge_strategy=create_unique.
func (w *Writer) PutDuplicate(ctx context.Context, originalKey, newKey string) error {
	_, err := w.tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO duplicates (idspecid, newid) VALUES (?, ?)`,
		originalKey, newKey,
	)
	if err != nil {
		return fmt.Errorf("store: inserting duplicate %s->%s: %w", originalKey, newKey, err)
	}
	return nil
}

// Commit builds the query indexes, runs ANALYZE, and commits the
// transaction, matching spec.md §4.10's "builds indexes ... runs
// table statistics so the query planner uses them."
func (w *Writer) Commit(ctx context.Context) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_features_featuretype ON features(featuretype)`,
		`CREATE INDEX IF NOT EXISTS idx_features_bin ON features(seqid, bin, start, end)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_parent ON relations(parent)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_child ON relations(child)`,
	}
	for _, stmt := range stmts {
		if _, err := w.tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: building index: %w", err)
		}
	}
	if _, err := w.tx.ExecContext(ctx, `ANALYZE`); err != nil {
		return fmt.Errorf("store: running ANALYZE: %w", err)
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("store: committing transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction; safe to call after a successful
// Commit (it is then a no-op error from the driver, ignored).
func (w *Writer) Rollback() {
	_ = w.tx.Rollback()
}

func nullableInt(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func marshalAttributes(a *attr.Attributes) ([]byte, error) {
	if a == nil {
		return json.Marshal(map[string][]string{})
	}
	m := make(map[string][]string, len(a.Keys()))
	for _, k := range a.Keys() {
		m[k] = a.Get(k)
	}
	return json.Marshal(m)
}
