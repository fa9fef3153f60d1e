package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kmonendra/octeon-tm/store"
)

func (s *sqliteStore) SaveShaper(ctx context.Context, rec store.ShaperRecord) error {
	start := time.Now()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	pktMode := 0
	if rec.PktMode {
		pktMode = 1
	}
	_, err := s.stmtSaveShaper.ExecContext(ctx,
		rec.HwIf, rec.ShaperID, rec.CommitRate, rec.CommitSz, rec.PeakRate, rec.PeakSz,
		rec.PktLenAdj, pktMode, createdAt.UTC().Format(time.RFC3339Nano))
	s.logger.Debug("sql", "stmt", "SaveShaper", "args", []any{rec.HwIf, rec.ShaperID}, "duration_ms", msec(time.Since(start)), "error", err)
	if err != nil {
		return fmt.Errorf("save shaper %d on hw_if %d: %w", rec.ShaperID, rec.HwIf, err)
	}
	return nil
}

func (s *sqliteStore) DeleteShaper(ctx context.Context, hwIf, shaperID uint32) error {
	start := time.Now()
	res, err := s.stmtDeleteShaper.ExecContext(ctx, hwIf, shaperID)
	s.logger.Debug("sql", "stmt", "DeleteShaper", "args", []any{hwIf, shaperID}, "duration_ms", msec(time.Since(start)), "error", err)
	if err != nil {
		return fmt.Errorf("delete shaper %d on hw_if %d: %w", shaperID, hwIf, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shaper %d on hw_if %d: %w", shaperID, hwIf, store.ErrNotFound)
	}
	return nil
}

func (s *sqliteStore) GetShaper(ctx context.Context, hwIf, shaperID uint32) (store.ShaperRecord, error) {
	start := time.Now()
	rec, err := scanShaper(s.stmtGetShaper.QueryRowContext(ctx, hwIf, shaperID))
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("sql", "stmt", "GetShaper", "args", []any{hwIf, shaperID}, "duration_ms", msec(time.Since(start)), "rows", 0)
		return store.ShaperRecord{}, fmt.Errorf("shaper %d on hw_if %d: %w", shaperID, hwIf, store.ErrNotFound)
	}
	if err != nil {
		return store.ShaperRecord{}, err
	}
	s.logger.Debug("sql", "stmt", "GetShaper", "args", []any{hwIf, shaperID}, "duration_ms", msec(time.Since(start)), "rows", 1)
	return rec, nil
}

func (s *sqliteStore) ListShapers(ctx context.Context, hwIf uint32) ([]store.ShaperRecord, error) {
	start := time.Now()
	rows, err := s.stmtListShapers.QueryContext(ctx, hwIf)
	if err != nil {
		return nil, fmt.Errorf("list shapers on hw_if %d: %w", hwIf, err)
	}
	defer rows.Close()

	var recs []store.ShaperRecord
	for rows.Next() {
		rec, err := scanShaper(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	s.logger.Debug("sql", "stmt", "ListShapers", "args", []any{hwIf}, "duration_ms", msec(time.Since(start)), "rows", len(recs))
	return recs, rows.Err()
}

func (s *sqliteStore) SetHierarchyState(ctx context.Context, hwIf uint32, state store.HierarchyState) error {
	start := time.Now()
	_, err := s.stmtSetHierarchyState.ExecContext(ctx, hwIf, string(state), time.Now().UTC().Format(time.RFC3339Nano))
	s.logger.Debug("sql", "stmt", "SetHierarchyState", "args", []any{hwIf, state}, "duration_ms", msec(time.Since(start)), "error", err)
	if err != nil {
		return fmt.Errorf("set hierarchy state on hw_if %d: %w", hwIf, err)
	}
	return nil
}

func (s *sqliteStore) GetHierarchyState(ctx context.Context, hwIf uint32) (store.HierarchyState, error) {
	var state string
	err := s.stmtGetHierarchyState.QueryRowContext(ctx, hwIf).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return store.HierarchyUncommitted, nil
	}
	if err != nil {
		return "", fmt.Errorf("get hierarchy state on hw_if %d: %w", hwIf, err)
	}
	return store.HierarchyState(state), nil
}

func scanShaper(row scanner) (store.ShaperRecord, error) {
	var rec store.ShaperRecord
	var pktMode int
	var createdAt string
	if err := row.Scan(&rec.HwIf, &rec.ShaperID, &rec.CommitRate, &rec.CommitSz,
		&rec.PeakRate, &rec.PeakSz, &rec.PktLenAdj, &pktMode, &createdAt); err != nil {
		return store.ShaperRecord{}, err
	}
	rec.PktMode = pktMode != 0
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.ShaperRecord{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts
	return rec, nil
}
