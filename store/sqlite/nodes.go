package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kmonendra/octeon-tm/store"
)

func (s *sqliteStore) SaveNode(ctx context.Context, rec store.NodeRecord) error {
	start := time.Now()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.stmtSaveNode.ExecContext(ctx,
		rec.HwIf, rec.NodeID, rec.ParentID, rec.Lvl, rec.Priority, rec.Weight,
		rec.ShaperProfileID, createdAt.UTC().Format(time.RFC3339Nano))
	s.logger.Debug("sql", "stmt", "SaveNode", "args", []any{rec.HwIf, rec.NodeID}, "duration_ms", msec(time.Since(start)), "error", err)
	if err != nil {
		return fmt.Errorf("save node %d on hw_if %d: %w", rec.NodeID, rec.HwIf, err)
	}
	return nil
}

func (s *sqliteStore) DeleteNode(ctx context.Context, hwIf, nodeID uint32) error {
	start := time.Now()
	res, err := s.stmtDeleteNode.ExecContext(ctx, hwIf, nodeID)
	s.logger.Debug("sql", "stmt", "DeleteNode", "args", []any{hwIf, nodeID}, "duration_ms", msec(time.Since(start)), "error", err)
	if err != nil {
		return fmt.Errorf("delete node %d on hw_if %d: %w", nodeID, hwIf, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("node %d on hw_if %d: %w", nodeID, hwIf, store.ErrNotFound)
	}
	return nil
}

func (s *sqliteStore) GetNode(ctx context.Context, hwIf, nodeID uint32) (store.NodeRecord, error) {
	start := time.Now()
	rec, err := scanNode(s.stmtGetNode.QueryRowContext(ctx, hwIf, nodeID))
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("sql", "stmt", "GetNode", "args", []any{hwIf, nodeID}, "duration_ms", msec(time.Since(start)), "rows", 0)
		return store.NodeRecord{}, fmt.Errorf("node %d on hw_if %d: %w", nodeID, hwIf, store.ErrNotFound)
	}
	if err != nil {
		return store.NodeRecord{}, err
	}
	s.logger.Debug("sql", "stmt", "GetNode", "args", []any{hwIf, nodeID}, "duration_ms", msec(time.Since(start)), "rows", 1)
	return rec, nil
}

func (s *sqliteStore) ListNodes(ctx context.Context, hwIf uint32) ([]store.NodeRecord, error) {
	start := time.Now()
	rows, err := s.stmtListNodes.QueryContext(ctx, hwIf)
	if err != nil {
		return nil, fmt.Errorf("list nodes on hw_if %d: %w", hwIf, err)
	}
	defer rows.Close()

	var recs []store.NodeRecord
	for rows.Next() {
		rec, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	s.logger.Debug("sql", "stmt", "ListNodes", "args", []any{hwIf}, "duration_ms", msec(time.Since(start)), "rows", len(recs))
	return recs, rows.Err()
}

func (s *sqliteStore) UpdateNodeShaper(ctx context.Context, hwIf, nodeID, shaperID uint32) error {
	start := time.Now()
	res, err := s.stmtUpdateNodeShaper.ExecContext(ctx, shaperID, hwIf, nodeID)
	s.logger.Debug("sql", "stmt", "UpdateNodeShaper", "args", []any{hwIf, nodeID, shaperID}, "duration_ms", msec(time.Since(start)), "error", err)
	if err != nil {
		return fmt.Errorf("update node %d shaper on hw_if %d: %w", nodeID, hwIf, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("node %d on hw_if %d: %w", nodeID, hwIf, store.ErrNotFound)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (store.NodeRecord, error) {
	var rec store.NodeRecord
	var createdAt string
	if err := row.Scan(&rec.HwIf, &rec.NodeID, &rec.ParentID, &rec.Lvl,
		&rec.Priority, &rec.Weight, &rec.ShaperProfileID, &createdAt); err != nil {
		return store.NodeRecord{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.NodeRecord{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts
	return rec, nil
}
