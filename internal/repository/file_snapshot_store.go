package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"TickerPulse/internal/domain/models"
	applogger "TickerPulse/pkg/logger"
	"TickerPulse/pkg/util"
)

const (
	snapshotSuffix = "_mentions.json"
	exportSuffix   = "_mentions.csv"
)

// FileSnapshotStore keeps one JSON snapshot per run in a flat directory,
// plus a CSV export of the same counts for spreadsheet use. Run ids sort
// lexically in time order, so LatestN is a directory listing away.
type FileSnapshotStore struct {
	dir    string
	logger *applogger.Logger
}

func NewFileSnapshotStore(dir string, logger *applogger.Logger) *FileSnapshotStore {
	return &FileSnapshotStore{dir: dir, logger: logger}
}

func (s *FileSnapshotStore) Record(ctx context.Context, snap *models.Snapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if _, err := util.ParseRunID(snap.RunID); err != nil {
		return fmt.Errorf("bad run id %q: %w", snap.RunID, err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	path := filepath.Join(s.dir, snap.RunID+snapshotSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := s.writeCSV(snap); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("snapshot recorded",
			applogger.String("run_id", snap.RunID),
			applogger.Int("symbols", len(snap.Counts)),
			applogger.String("path", path),
		)
	}
	return nil
}

func (s *FileSnapshotStore) writeCSV(snap *models.Snapshot) error {
	symbols := make([]string, 0, len(snap.Counts))
	for symbol := range snap.Counts {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		ci, cj := snap.Counts[symbols[i]].Count, snap.Counts[symbols[j]].Count
		if ci != cj {
			return ci > cj
		}
		return symbols[i] < symbols[j]
	})

	f, err := os.Create(filepath.Join(s.dir, snap.RunID+exportSuffix))
	if err != nil {
		return fmt.Errorf("create csv export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"symbol", "company", "count"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, symbol := range symbols {
		c := snap.Counts[symbol]
		if err := w.Write([]string{symbol, c.Company, strconv.Itoa(c.Count)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (s *FileSnapshotStore) LatestN(ctx context.Context, n int) ([]*models.Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var runIDs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		runID := strings.TrimSuffix(e.Name(), snapshotSuffix)
		if _, err := util.ParseRunID(runID); err != nil {
			continue
		}
		runIDs = append(runIDs, runID)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(runIDs)))
	if len(runIDs) > n {
		runIDs = runIDs[:n]
	}

	out := make([]*models.Snapshot, 0, len(runIDs))
	for _, runID := range runIDs {
		data, err := os.ReadFile(filepath.Join(s.dir, runID+snapshotSuffix))
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", runID, err)
		}
		var snap models.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", runID, err)
		}
		out = append(out, &snap)
	}
	return out, nil
}

func (s *FileSnapshotStore) Close() error { return nil }
