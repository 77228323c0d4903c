package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"TickerPulse/internal/domain/models"
	"TickerPulse/pkg/util"
)

const postsSuffix = "_posts.json"

// FilePostArchive stores the collected posts of each run as one JSON file,
// keyed by run id. The hot-stock stage reads them back when assembling
// per-symbol bundles.
type FilePostArchive struct {
	dir string
}

func NewFilePostArchive(dir string) *FilePostArchive {
	return &FilePostArchive{dir: dir}
}

func (a *FilePostArchive) SaveRun(ctx context.Context, runID string, posts []models.Post) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create posts dir: %w", err)
	}
	if _, err := util.ParseRunID(runID); err != nil {
		return fmt.Errorf("bad run id %q: %w", runID, err)
	}

	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("marshal posts: %w", err)
	}
	path := filepath.Join(a.dir, runID+postsSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write posts: %w", err)
	}
	return nil
}

func (a *FilePostArchive) LoadRun(ctx context.Context, runID string) ([]models.Post, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, runID+postsSuffix))
	if err != nil {
		return nil, fmt.Errorf("read posts for run %s: %w", runID, err)
	}
	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("decode posts for run %s: %w", runID, err)
	}
	return posts, nil
}
