package usecase

import (
	"context"
	"testing"
	"time"

	"TickerPulse/internal/domain/models"
	"TickerPulse/internal/repository"
	"TickerPulse/pkg/config"
	"TickerPulse/pkg/metrics"
)

type fakeLexicon struct {
	entries []models.SymbolEntry
	err     error
}

func (f *fakeLexicon) Load(ctx context.Context) ([]models.SymbolEntry, error) {
	return f.entries, f.err
}

type fakeSource struct {
	posts []models.Post
	err   error
}

func (f *fakeSource) FetchPosts(ctx context.Context) ([]models.Post, error) {
	return f.posts, f.err
}

func scanConfig(minMentions int) *config.Config {
	cfg := &config.Config{}
	cfg.Scan.MinMentions = minMentions
	return cfg
}

func testLexicon() *fakeLexicon {
	return &fakeLexicon{entries: []models.SymbolEntry{
		{Symbol: "GME", Company: "GameStop Corp."},
		{Symbol: "TSLA", Company: "Tesla Inc."},
		{Symbol: "GO", Company: "Grocery Outlet", RequiresDollar: true},
	}}
}

func fixedTime() time.Time {
	return time.Date(2025, 8, 15, 6, 0, 0, 0, time.UTC)
}

func TestScanRunCountsAndCuts(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewFileSnapshotStore(dir, nil)
	archive := repository.NewFilePostArchive(dir)

	source := &fakeSource{posts: []models.Post{
		{
			ID:    "p1",
			Title: "GME and TSLA discussion",
			// "GO" without "$" must not count; "$GO" must.
			Content: "GME going up, GO nowhere, $GO listed",
			Comments: []models.Comment{
				{ID: "c1", Body: "buying GME"},
				{ID: "c2", Body: "TSLA overvalued"},
			},
		},
		{
			ID:    "p2",
			Title: "GME again",
		},
	}}

	r := NewScanRunner(scanConfig(2), testLexicon(), source, store, archive, metrics.Nop{}, nil)
	r.now = fixedTime

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap := result.Snapshot
	if snap.RunID != "20250815-0600" {
		t.Fatalf("run id wrong: %s", snap.RunID)
	}
	// GME: title p1 + content p1 + c1 + title p2 = 4. TSLA: 2. $GO: 1 (below cut).
	if snap.Get("GME") != 4 {
		t.Fatalf("GME count wrong: %d", snap.Get("GME"))
	}
	if snap.Get("TSLA") != 2 {
		t.Fatalf("TSLA count wrong: %d", snap.Get("TSLA"))
	}
	if _, ok := snap.Counts["GO"]; ok {
		t.Fatalf("GO is below the mention threshold, must be cut: %v", snap.Counts)
	}
	if company, _ := snap.Company("GME"); company != "GameStop Corp." {
		t.Fatalf("company wrong: %s", company)
	}
	if result.Posts != 2 || result.Comments != 2 {
		t.Fatalf("volume wrong: %+v", result)
	}
}

func TestScanRunPersistsSnapshotAndPosts(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewFileSnapshotStore(dir, nil)
	archive := repository.NewFilePostArchive(dir)

	source := &fakeSource{posts: []models.Post{
		{ID: "p1", Title: "GME", Comments: []models.Comment{{ID: "c1", Body: "GME yes"}}},
	}}
	r := NewScanRunner(scanConfig(1), testLexicon(), source, store, archive, metrics.Nop{}, nil)
	r.now = fixedTime

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	latest, err := store.LatestN(context.Background(), 1)
	if err != nil || len(latest) != 1 {
		t.Fatalf("snapshot not stored: %v %v", latest, err)
	}

	posts, err := archive.LoadRun(context.Background(), "20250815-0600")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	// Archived posts carry the extracted mention maps.
	if posts[0].Mentions["GME"] != 1 {
		t.Fatalf("post mentions not archived: %+v", posts[0].Mentions)
	}
	if posts[0].Comments[0].Mentions["GME"] != 1 {
		t.Fatalf("comment mentions not archived: %+v", posts[0].Comments[0])
	}
}

func TestScanRunEmptyLexiconFails(t *testing.T) {
	dir := t.TempDir()
	r := NewScanRunner(scanConfig(1), &fakeLexicon{}, &fakeSource{},
		repository.NewFileSnapshotStore(dir, nil), repository.NewFilePostArchive(dir), metrics.Nop{}, nil)
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected error for empty lexicon")
	}
}
