package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TickerPulse/internal/domain/models"
	pkgch "TickerPulse/pkg/clickhouse"
	applogger "TickerPulse/pkg/logger"
)

const mentionsTable = "stock_mentions"

// CHSnapshotStore implements SnapshotStore backed by ClickHouse. One row per
// (run, symbol); snapshots are reassembled by grouping on run_id.
type CHSnapshotStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHSnapshotStore(ch *pkgch.Client) *CHSnapshotStore {
	return &CHSnapshotStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHSnapshotStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns idempotent DDL for pkg/clickhouse InitSchema.
func Schema() []string {
	return []string{
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id   String,
            taken_at DateTime,
            symbol   String,
            company  String,
            count    UInt32
        ) ENGINE = ReplacingMergeTree
        ORDER BY (run_id, symbol)
    `, mentionsTable),
	}
}

func (s *CHSnapshotStore) Record(ctx context.Context, snap *models.Snapshot) error {
	if len(snap.Counts) == 0 {
		return nil
	}
	start := time.Now()

	values := make([]string, 0, len(snap.Counts))
	args := make([]interface{}, 0, len(snap.Counts)*5)
	for symbol, c := range snap.Counts {
		values = append(values, "(?, ?, ?, ?, ?)")
		args = append(args, snap.RunID, snap.TakenAt, symbol, c.Company, uint32(c.Count))
	}

	q := fmt.Sprintf("INSERT INTO %s (run_id, taken_at, symbol, company, count) VALUES %s",
		mentionsTable, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse record snapshot error",
				applogger.String("run_id", snap.RunID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("record snapshot: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse snapshot recorded",
			applogger.String("run_id", snap.RunID),
			applogger.Int("symbols", len(snap.Counts)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHSnapshotStore) LatestN(ctx context.Context, n int) ([]*models.Snapshot, error) {
	const runQuery = `
        SELECT DISTINCT run_id
        FROM %s
        ORDER BY run_id DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(runQuery, mentionsTable), n)
	if err != nil {
		return nil, fmt.Errorf("latest run ids: %w", err)
	}
	var runIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		runIDs = append(runIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("run id rows: %w", err)
	}
	rows.Close()

	if len(runIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(runIDs)), ",")
	q := fmt.Sprintf(`
        SELECT run_id, taken_at, symbol, company, count
        FROM %s
        WHERE run_id IN (%s)
        ORDER BY run_id DESC
    `, mentionsTable, placeholders)
	args := make([]interface{}, len(runIDs))
	for i, id := range runIDs {
		args[i] = id
	}

	dataRows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer dataRows.Close()

	byRun := make(map[string]*models.Snapshot, len(runIDs))
	for dataRows.Next() {
		var (
			runID, symbol, company string
			takenAt                time.Time
			count                  uint32
		)
		if err := dataRows.Scan(&runID, &takenAt, &symbol, &company, &count); err != nil {
			return nil, fmt.Errorf("scan mention row: %w", err)
		}
		snap, ok := byRun[runID]
		if !ok {
			snap = &models.Snapshot{
				RunID:   runID,
				TakenAt: takenAt,
				Counts:  make(map[string]models.SymbolCount),
			}
			byRun[runID] = snap
		}
		snap.Counts[symbol] = models.SymbolCount{Company: company, Count: int(count)}
	}
	if err := dataRows.Err(); err != nil {
		return nil, fmt.Errorf("mention rows: %w", err)
	}

	out := make([]*models.Snapshot, 0, len(runIDs))
	for _, id := range runIDs {
		if snap, ok := byRun[id]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *CHSnapshotStore) Close() error { return nil }
