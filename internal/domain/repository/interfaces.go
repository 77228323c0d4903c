package repository

import (
	"context"

	"TickerPulse/internal/domain/models"
)

// SnapshotStore persists per-run mention snapshots and serves them back
// newest first. Implementations never synthesize missing history: LatestN
// returns fewer than n snapshots when the history is short.
type SnapshotStore interface {
	Record(ctx context.Context, s *models.Snapshot) error
	LatestN(ctx context.Context, n int) ([]*models.Snapshot, error)
	Close() error
}

// PostArchive persists the posts (with comments) collected during a run, so
// the hot-stock stage can re-read them when building per-symbol bundles.
type PostArchive interface {
	SaveRun(ctx context.Context, runID string, posts []models.Post) error
	LoadRun(ctx context.Context, runID string) ([]models.Post, error)
}

// PostSource delivers the posts for one run, already filtered to the recency
// window and minimum upvote threshold, with comments in hierarchical order.
type PostSource interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
}

// Publisher emits run-completed events to an external broker.
type Publisher interface {
	PublishRun(ctx context.Context, ev *models.RunEvent) error
	Close() error
}

// Analyst produces a sentiment narrative for one hot symbol's posts.
type Analyst interface {
	Analyze(ctx context.Context, bundle *models.SymbolPosts) (*models.SentimentReport, error)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordPostScanned()
	RecordCommentScanned()
	RecordMentions(symbol string, n int)
	RecordSkip(kind string)
	RecordStageDuration(stage string, seconds float64)
	RecordHotSymbols(n int)
}
