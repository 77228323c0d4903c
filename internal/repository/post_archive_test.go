package repository

import (
	"context"
	"testing"
	"time"

	"TickerPulse/internal/domain/models"
)

func TestFilePostArchiveRoundTrip(t *testing.T) {
	archive := NewFilePostArchive(t.TempDir())
	ctx := context.Background()

	posts := []models.Post{
		{
			ID:        "p1",
			Title:     "GME thread",
			Content:   "body",
			Upvotes:   42,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			URL:       "https://example.com/p1",
			Mentions:  map[string]int{"GME": 3},
			Comments: []models.Comment{
				{ID: "c1", Body: "first", Upvotes: 7, Depth: 0},
				{ID: "c2", ParentID: "c1", Body: "reply", Upvotes: 2, Depth: 1},
			},
		},
	}

	if err := archive.SaveRun(ctx, "20250815-0600", posts); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	got, err := archive.LoadRun(ctx, "20250815-0600")
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" || len(got[0].Comments) != 2 {
		t.Fatalf("round trip wrong: %+v", got)
	}
	if got[0].Comments[1].ParentID != "c1" || got[0].Comments[1].Depth != 1 {
		t.Fatalf("comment hierarchy lost: %+v", got[0].Comments)
	}
	if got[0].Mentions["GME"] != 3 {
		t.Fatalf("mentions lost: %+v", got[0].Mentions)
	}
}

func TestFilePostArchiveMissingRun(t *testing.T) {
	archive := NewFilePostArchive(t.TempDir())
	if _, err := archive.LoadRun(context.Background(), "20250815-0600"); err == nil {
		t.Fatalf("expected error for missing run")
	}
}

func TestFilePostArchiveRejectsBadRunID(t *testing.T) {
	archive := NewFilePostArchive(t.TempDir())
	if err := archive.SaveRun(context.Background(), "bad", nil); err == nil {
		t.Fatalf("expected error for bad run id")
	}
}
