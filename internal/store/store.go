// Package store persists OCA documents in SQLite. Each document is kept in
// its wire form next to a per-command table and a reference table, so
// commands can be found by object-kind code or by what they reference
// without decoding every document.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/ocaast/ast"
	"github.com/agentic-research/ocaast/internal/index"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("document not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	version TEXT NOT NULL,
	hash TEXT NOT NULL,
	command_count INTEGER NOT NULL,
	updated INTEGER NOT NULL,
	body JSON NOT NULL
);

CREATE TABLE IF NOT EXISTS commands (
	doc_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	verb TEXT NOT NULL,
	object_code INTEGER NOT NULL,
	kind TEXT NOT NULL,
	payload JSON NOT NULL,
	PRIMARY KEY (doc_id, idx)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_commands_code ON commands(object_code);

CREATE TABLE IF NOT EXISTS command_refs (
	token TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	PRIMARY KEY (token, doc_id, idx)
) WITHOUT ROWID;
`

// Store is a SQLite-backed document store. Writes are serialized; reads may
// run concurrently.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
	log *zap.Logger
}

// Summary describes a stored document without decoding it.
type Summary struct {
	ID       string
	Version  string
	Hash     string
	Commands int
	Updated  time.Time
}

// Location identifies one command of one stored document.
type Location struct {
	DocID    string
	Position int // 0-based
	Verb     string
	Kind     string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the clock used for the updated column.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint returns the hex xxhash of a document's JSON encoding.
func Fingerprint(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}

// Put stores doc under id, replacing any previous document with that id.
func (s *Store) Put(ctx context.Context, id string, doc *ast.OCAAst) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	for _, q := range []string{
		`DELETE FROM commands WHERE doc_id = ?`,
		`DELETE FROM command_refs WHERE doc_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("clear %s: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (id, version, hash, command_count, updated, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, doc.Version(), Fingerprint(body), doc.Len(), s.now().UnixNano(), string(body),
	); err != nil {
		return fmt.Errorf("insert %s: %w", id, err)
	}

	stmtCmd, err := tx.PrepareContext(ctx, `
		INSERT INTO commands (doc_id, idx, verb, object_code, kind, payload)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmtCmd.Close() }()

	stmtRef, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO command_refs (token, doc_id, idx) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmtRef.Close() }()

	for i, cmd := range doc.All() {
		code, err := ast.ToInt(cmd.ObjectKind)
		if err != nil {
			return fmt.Errorf("commands[%d]: %w", i, err)
		}
		payload, err := json.Marshal(cmd)
		if err != nil {
			return fmt.Errorf("commands[%d]: %w", i, err)
		}
		if _, err := stmtCmd.ExecContext(ctx, id, i, cmd.Kind.String(), code,
			ast.KindName(cmd.ObjectKind), string(payload)); err != nil {
			return fmt.Errorf("insert command %s[%d]: %w", id, i, err)
		}
		for _, f := range index.CommandFeatures(cmd) {
			if f.Kind != index.Reference {
				continue
			}
			if _, err := stmtRef.ExecContext(ctx, f.Value, id, i); err != nil {
				return fmt.Errorf("insert ref %s[%d]: %w", id, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		s.log.Warn("commit failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("commit %s: %w", id, err)
	}
	s.log.Debug("stored document", zap.String("id", id), zap.Int("commands", doc.Len()))
	return nil
}

// Get loads and decodes the document stored under id.
func (s *Store) Get(ctx context.Context, id string) (*ast.OCAAst, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	doc, err := ast.ParseJSON([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("decode stored %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes the document stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	for _, q := range []string{
		`DELETE FROM commands WHERE doc_id = ?`,
		`DELETE FROM command_refs WHERE doc_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns a summary of every stored document ordered by id.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, version, hash, command_count, updated FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated int64
		if err := rows.Scan(&sum.ID, &sum.Version, &sum.Hash, &sum.Commands, &updated); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.Updated = time.Unix(0, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// CommandsByCode finds the commands of every stored document that target
// the object-kind code, in document then script order.
func (s *Store) CommandsByCode(ctx context.Context, code int) ([]Location, error) {
	return s.locations(ctx, `
		SELECT doc_id, idx, verb, kind FROM commands
		WHERE object_code = ? ORDER BY doc_id, idx`, code)
}

// Referencing finds the commands that mention ref anywhere in their
// content.
func (s *Store) Referencing(ctx context.Context, ref ast.RefValue) ([]Location, error) {
	return s.locations(ctx, `
		SELECT c.doc_id, c.idx, c.verb, c.kind
		FROM command_refs r JOIN commands c ON c.doc_id = r.doc_id AND c.idx = r.idx
		WHERE r.token = ? ORDER BY c.doc_id, c.idx`, ref.String())
}

func (s *Store) locations(ctx context.Context, query string, arg any) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.DocID, &l.Position, &l.Verb, &l.Kind); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
