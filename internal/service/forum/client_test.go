package forum

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"TickerPulse/internal/service/ratelimit"
	"TickerPulse/pkg/config"
)

// skipRecorder counts RecordSkip calls per kind. Comment fetches run on
// worker goroutines, so the map is guarded.
type skipRecorder struct {
	mu    sync.Mutex
	skips map[string]int
}

func (r *skipRecorder) RecordPostScanned()                  {}
func (r *skipRecorder) RecordCommentScanned()               {}
func (r *skipRecorder) RecordMentions(string, int)          {}
func (r *skipRecorder) RecordStageDuration(string, float64) {}
func (r *skipRecorder) RecordHotSymbols(int)                {}

func (r *skipRecorder) RecordSkip(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skips == nil {
		r.skips = make(map[string]int)
	}
	r.skips[kind]++
}

func (r *skipRecorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skips[kind]
}

const commentsPayload = `[
  {"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "p1"}}]}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {
      "id": "c1", "parent_id": "t3_p1", "body": "top level", "ups": 5, "created_utc": 1700000000,
      "replies": {"kind": "Listing", "data": {"children": [
        {"kind": "t1", "data": {
          "id": "c2", "parent_id": "t1_c1", "body": "reply", "ups": 2, "created_utc": 1700000100,
          "replies": ""
        }},
        {"kind": "more", "data": {"count": 10}}
      ]}}
    }},
    {"kind": "t1", "data": {
      "id": "c3", "parent_id": "t3_p1", "body": "second top", "ups": 1, "created_utc": 1700000200,
      "replies": ""
    }}
  ]}}
]`

func TestParseCommentsFlattensDepthFirst(t *testing.T) {
	comments, err := parseComments([]byte(commentsPayload))
	if err != nil {
		t.Fatalf("parseComments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("want 3 comments, got %d: %v", len(comments), comments)
	}
	// Replies follow their parent, before the next sibling.
	if comments[0].ID != "c1" || comments[1].ID != "c2" || comments[2].ID != "c3" {
		t.Fatalf("order wrong: %v", comments)
	}
	if comments[0].Depth != 0 || comments[1].Depth != 1 || comments[2].Depth != 0 {
		t.Fatalf("depths wrong: %v", comments)
	}
}

func TestParseCommentsParentStripping(t *testing.T) {
	comments, err := parseComments([]byte(commentsPayload))
	if err != nil {
		t.Fatalf("parseComments: %v", err)
	}
	// Top-level comments point at the post; that maps to an empty parent.
	if comments[0].ParentID != "" {
		t.Fatalf("top-level parent must be empty, got %q", comments[0].ParentID)
	}
	if comments[1].ParentID != "c1" {
		t.Fatalf("reply parent must be c1, got %q", comments[1].ParentID)
	}
}

func TestParseCommentsRejectsShortPayload(t *testing.T) {
	if _, err := parseComments([]byte(`[{"kind": "Listing", "data": {"children": []}}]`)); err == nil {
		t.Fatalf("expected error for single-listing payload")
	}
}

func TestStripThingPrefix(t *testing.T) {
	if got := stripThingPrefix("t1_abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := stripThingPrefix("t3_post"); got != "" {
		t.Fatalf("post parent must strip to empty, got %q", got)
	}
	if got := stripThingPrefix("bare"); got != "bare" {
		t.Fatalf("got %q", got)
	}
}

func TestFetchPostsFiltersAndAttachesComments(t *testing.T) {
	now := time.Now().UTC()
	fresh := now.Add(-1 * time.Hour).Unix()
	stale := now.Add(-48 * time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc("/r/teststocks/new.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"kind": "Listing", "data": {"children": [
			{"kind": "t3", "data": {"id": "p1", "title": "GME to the moon", "selftext": "body", "ups": 50, "created_utc": %d, "permalink": "/r/teststocks/p1"}},
			{"kind": "t3", "data": {"id": "p2", "title": "old post", "ups": 50, "created_utc": %d, "permalink": "/r/teststocks/p2"}},
			{"kind": "t3", "data": {"id": "p3", "title": "low votes", "ups": 1, "created_utc": %d, "permalink": "/r/teststocks/p3"}}
		]}}`, fresh, stale, fresh)
	})
	mux.HandleFunc("/r/teststocks/comments/p1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commentsPayload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Forum.BaseURL = srv.URL
	cfg.Forum.Subreddit = "teststocks"
	cfg.Forum.PostLimit = 100
	cfg.Forum.MinUpvotes = 3
	cfg.Forum.Window = 24 * time.Hour
	cfg.Forum.CommentWorkers = 2
	cfg.Forum.MaxRPS = 1000
	cfg.Forum.Timeout = 5 * time.Second

	c := NewClient(cfg, nil)
	posts, err := c.FetchPosts(context.Background())
	if err != nil {
		t.Fatalf("FetchPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("want 1 post after filters, got %d: %v", len(posts), posts)
	}
	p := posts[0]
	if p.ID != "p1" || p.Title != "GME to the moon" {
		t.Fatalf("wrong post: %+v", p)
	}
	if len(p.Comments) != 3 {
		t.Fatalf("want 3 comments, got %d", len(p.Comments))
	}
	if p.URL != srv.URL+"/r/teststocks/p1" {
		t.Fatalf("url wrong: %s", p.URL)
	}
}

func TestFetchPostsCommentFailureKeepsPost(t *testing.T) {
	now := time.Now().UTC()
	fresh := now.Add(-1 * time.Hour).Unix()

	mux := http.NewServeMux()
	mux.HandleFunc("/r/teststocks/new.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"kind": "Listing", "data": {"children": [
			{"kind": "t3", "data": {"id": "p1", "title": "title", "ups": 10, "created_utc": %d, "permalink": "/p1"}}
		]}}`, fresh)
	})
	mux.HandleFunc("/r/teststocks/comments/p1.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Forum.BaseURL = srv.URL
	cfg.Forum.Subreddit = "teststocks"
	cfg.Forum.PostLimit = 100
	cfg.Forum.MinUpvotes = 3
	cfg.Forum.Window = 24 * time.Hour
	cfg.Forum.CommentWorkers = 1
	cfg.Forum.MaxRPS = 1000
	cfg.Forum.Timeout = 5 * time.Second

	c := NewClient(cfg, nil)
	rec := &skipRecorder{}
	c.SetMetrics(rec)

	posts, err := c.FetchPosts(context.Background())
	if err != nil {
		t.Fatalf("FetchPosts: %v", err)
	}
	if len(posts) != 1 || len(posts[0].Comments) != 0 {
		t.Fatalf("post must survive with no comments: %v", posts)
	}
	if got := rec.count(SkipCommentFetch); got != 1 {
		t.Fatalf("comment fetch skip count = %d, want 1", got)
	}
}

func TestLimiterPacesRequests(t *testing.T) {
	l := ratelimit.New()
	if !l.Allow("k", 1, 1) {
		t.Fatalf("first request must pass")
	}
	if l.Allow("k", 1, 1) {
		t.Fatalf("second immediate request must be throttled")
	}
}
