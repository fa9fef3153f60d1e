// Package sqlite provides the SQLite implementation of the TM
// metadata store.
//
// The database is opened in WAL mode with foreign keys enabled. Every
// query runs through a prepared statement compiled at open time; each
// store method is a single statement and therefore atomic on its own.
// The control plane is single-threaded, so no additional serialisation
// is layered on top of SQLite's own locking.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kmonendra/octeon-tm/store"
)

//go:embed schema.sql
var schemaSQL string

// msec formats a duration as milliseconds with 3 decimal places.
func msec(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d.Microseconds())/1000)
}

// sqliteStore implements store.Store.
type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger

	stmtSaveNode         *sql.Stmt
	stmtDeleteNode       *sql.Stmt
	stmtGetNode          *sql.Stmt
	stmtListNodes        *sql.Stmt
	stmtUpdateNodeShaper *sql.Stmt

	stmtSaveShaper   *sql.Stmt
	stmtDeleteShaper *sql.Stmt
	stmtGetShaper    *sql.Stmt
	stmtListShapers  *sql.Stmt

	stmtSetHierarchyState *sql.Stmt
	stmtGetHierarchyState *sql.Stmt
}

// New opens (or creates) the store at dbPath.
func New(ctx context.Context, dbPath string, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "db", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open(driverName, dsn(dbPath, [][2]string{{"journal_mode", "WAL"}, {"foreign_keys", "1"}}))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return open(ctx, db, logger)
}

// NewInMemory opens an in-memory store, used by tests and the CLI's
// ephemeral validate mode.
func NewInMemory(ctx context.Context, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "db", ":memory:")

	db, err := sql.Open(driverName, dsn(":memory:", [][2]string{{"foreign_keys", "1"}}))
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	// Each pool connection would otherwise get its own empty
	// in-memory database.
	db.SetMaxOpenConns(1)
	return open(ctx, db, logger)
}

func open(ctx context.Context, db *sql.DB, logger *slog.Logger) (store.Store, error) {
	s := &sqliteStore{db: db, logger: logger}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := s.prepareStatements(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	logger.Info("opened database")
	return s, nil
}

func (s *sqliteStore) prepareStatements(ctx context.Context) error {
	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.stmtSaveNode, `INSERT INTO tm_nodes
			(hw_if, node_id, parent_id, lvl, priority, weight, shaper_profile_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`},
		{&s.stmtDeleteNode, `DELETE FROM tm_nodes WHERE hw_if = ? AND node_id = ?`},
		{&s.stmtGetNode, `SELECT hw_if, node_id, parent_id, lvl, priority, weight, shaper_profile_id, created_at
			FROM tm_nodes WHERE hw_if = ? AND node_id = ?`},
		{&s.stmtListNodes, `SELECT hw_if, node_id, parent_id, lvl, priority, weight, shaper_profile_id, created_at
			FROM tm_nodes WHERE hw_if = ? ORDER BY lvl, node_id`},
		{&s.stmtUpdateNodeShaper, `UPDATE tm_nodes SET shaper_profile_id = ? WHERE hw_if = ? AND node_id = ?`},
		{&s.stmtSaveShaper, `INSERT INTO shaper_profiles
			(hw_if, shaper_id, commit_rate, commit_sz, peak_rate, peak_sz, pkt_len_adj, pkt_mode, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{&s.stmtDeleteShaper, `DELETE FROM shaper_profiles WHERE hw_if = ? AND shaper_id = ?`},
		{&s.stmtGetShaper, `SELECT hw_if, shaper_id, commit_rate, commit_sz, peak_rate, peak_sz, pkt_len_adj, pkt_mode, created_at
			FROM shaper_profiles WHERE hw_if = ? AND shaper_id = ?`},
		{&s.stmtListShapers, `SELECT hw_if, shaper_id, commit_rate, commit_sz, peak_rate, peak_sz, pkt_len_adj, pkt_mode, created_at
			FROM shaper_profiles WHERE hw_if = ? ORDER BY shaper_id`},
		{&s.stmtSetHierarchyState, `INSERT INTO hierarchies (hw_if, state, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (hw_if) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`},
		{&s.stmtGetHierarchyState, `SELECT state FROM hierarchies WHERE hw_if = ?`},
	}
	for _, st := range stmts {
		prepared, err := s.db.PrepareContext(ctx, st.query)
		if err != nil {
			return fmt.Errorf("prepare %q: %w", st.query, err)
		}
		*st.dst = prepared
	}
	return nil
}

// Close closes all prepared statements and the database connection.
// Statement close errors are ignored; the connection is going away.
func (s *sqliteStore) Close() error {
	for _, stmt := range []*sql.Stmt{
		s.stmtSaveNode, s.stmtDeleteNode, s.stmtGetNode, s.stmtListNodes, s.stmtUpdateNodeShaper,
		s.stmtSaveShaper, s.stmtDeleteShaper, s.stmtGetShaper, s.stmtListShapers,
		s.stmtSetHierarchyState, s.stmtGetHierarchyState,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}
