package usecase

import (
	"context"
	"fmt"
	"time"

	"TickerPulse/internal/domain/models"
	"TickerPulse/internal/domain/repository"
	"TickerPulse/internal/service/match"
	"TickerPulse/pkg/config"
	applogger "TickerPulse/pkg/logger"
	"TickerPulse/pkg/util"
)

// LexiconSource yields the cleaned symbol lexicon for a run.
type LexiconSource interface {
	Load(ctx context.Context) ([]models.SymbolEntry, error)
}

// ScanResult carries the snapshot plus the volume the scan chewed through,
// for the run event and logs.
type ScanResult struct {
	Snapshot *models.Snapshot
	Posts    int
	Comments int
}

// ScanRunner performs one mention scan: load lexicon, compile the matcher,
// fetch posts, count mentions per unit, cut the snapshot at the mention
// threshold, and persist snapshot plus raw posts.
type ScanRunner struct {
	lexicon     LexiconSource
	source      repository.PostSource
	store       repository.SnapshotStore
	archive     repository.PostArchive
	metrics     repository.Metrics
	logger      *applogger.Logger
	minMentions int
	now         func() time.Time
}

func NewScanRunner(
	cfg *config.Config,
	lex LexiconSource,
	source repository.PostSource,
	store repository.SnapshotStore,
	archive repository.PostArchive,
	m repository.Metrics,
	logger *applogger.Logger,
) *ScanRunner {
	return &ScanRunner{
		lexicon:     lex,
		source:      source,
		store:       store,
		archive:     archive,
		metrics:     m,
		logger:      logger,
		minMentions: cfg.Scan.MinMentions,
		now:         time.Now,
	}
}

// Run executes one scan and returns the recorded snapshot.
func (r *ScanRunner) Run(ctx context.Context) (*ScanResult, error) {
	start := r.now().UTC()
	runID := util.FormatRunID(start)

	entries, err := r.lexicon.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	matcher, err := match.NewMatcher(entries)
	if err != nil {
		return nil, fmt.Errorf("compile matcher: %w", err)
	}
	companies := make(map[string]string, len(entries))
	for _, e := range entries {
		companies[e.Symbol] = e.Company
	}

	posts, err := r.source.FetchPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	acc := match.NewAccumulator()
	comments := 0
	for i := range posts {
		p := &posts[i]
		p.Mentions = mergeMentions(matcher.Extract(p.Title), matcher.Extract(p.Content))
		acc.Add(p.Mentions)
		r.recordMentions(p.Mentions)
		if r.metrics != nil {
			r.metrics.RecordPostScanned()
		}

		for j := range p.Comments {
			c := &p.Comments[j]
			c.Mentions = matcher.Extract(c.Body)
			acc.Add(c.Mentions)
			r.recordMentions(c.Mentions)
			if r.metrics != nil {
				r.metrics.RecordCommentScanned()
			}
			comments++
		}
	}

	counts := make(map[string]models.SymbolCount)
	for symbol, n := range acc.AtLeast(r.minMentions) {
		counts[symbol] = models.SymbolCount{Company: companies[symbol], Count: n}
	}
	snap := &models.Snapshot{RunID: runID, TakenAt: start, Counts: counts}

	if err := r.store.Record(ctx, snap); err != nil {
		return nil, fmt.Errorf("record snapshot: %w", err)
	}
	if err := r.archive.SaveRun(ctx, runID, posts); err != nil {
		return nil, fmt.Errorf("archive posts: %w", err)
	}

	if r.metrics != nil {
		r.metrics.RecordStageDuration("scan", time.Since(start).Seconds())
	}
	if r.logger != nil {
		r.logger.Info("scan complete",
			applogger.String("run_id", runID),
			applogger.Int("posts", len(posts)),
			applogger.Int("comments", comments),
			applogger.Int("symbols", len(counts)),
			applogger.Int("lexicon", matcher.Size()),
		)
	}

	return &ScanResult{Snapshot: snap, Posts: len(posts), Comments: comments}, nil
}

func (r *ScanRunner) recordMentions(mentions map[string]int) {
	if r.metrics == nil {
		return
	}
	for symbol, n := range mentions {
		r.metrics.RecordMentions(symbol, n)
	}
}

func mergeMentions(a, b map[string]int) map[string]int {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	for symbol, n := range b {
		a[symbol] += n
	}
	return a
}
