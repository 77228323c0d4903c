package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"TickerPulse/internal/domain/models"
	"TickerPulse/pkg/config"
)

func testBundle() *models.SymbolPosts {
	return &models.SymbolPosts{
		Symbol:  "GME",
		Company: "GameStop Corp.",
		Posts: []models.Post{
			{
				Title:   "GME earnings thread",
				Content: "discussion body",
				Upvotes: 120,
				Comments: []models.Comment{
					{ID: "c1", Body: "to the moon", Upvotes: 44},
				},
			},
		},
		PostCount: 1,
	}
}

func testConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Sentiment.ServiceURL = url
	cfg.Sentiment.APIKey = "secret"
	cfg.Sentiment.Model = "test-model"
	cfg.Sentiment.Timeout = 5 * time.Second
	return cfg
}

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("auth header wrong: %q", got)
		}
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Symbol != "GME" || req.Model != "test-model" {
			t.Errorf("request wrong: %+v", req)
		}
		if !strings.Contains(req.Digest, "to the moon") {
			t.Errorf("digest missing comment: %q", req.Digest)
		}
		fmt.Fprint(w, `{"narrative": "bullish on squeeze", "score": 8}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	report, err := c.Analyze(context.Background(), testBundle())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Narrative != "bullish on squeeze" || report.Score != 8 {
		t.Fatalf("report wrong: %+v", report)
	}
	if report.Symbol != "GME" || report.Company != "GameStop Corp." {
		t.Fatalf("identity wrong: %+v", report)
	}
}

func TestAnalyzeRetriesTransientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"narrative": "ok", "score": 1}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	report, err := c.Analyze(context.Background(), testBundle())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Narrative != "ok" {
		t.Fatalf("report wrong: %+v", report)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("want 3 attempts, got %d", got)
	}
}

func TestAnalyzeRequiresURL(t *testing.T) {
	c := NewClient(&config.Config{})
	if _, err := c.Analyze(context.Background(), testBundle()); err == nil {
		t.Fatalf("expected error without service url")
	}
}

func TestDigestCapsComments(t *testing.T) {
	bundle := testBundle()
	for i := 0; i < 100; i++ {
		bundle.Posts[0].Comments = append(bundle.Posts[0].Comments, models.Comment{
			ID:   fmt.Sprintf("c%d", i+2),
			Body: "filler",
		})
	}
	digest := buildDigest(bundle)
	if got := strings.Count(digest, "COMMENT"); got != maxDigestComments {
		t.Fatalf("want %d comments in digest, got %d", maxDigestComments, got)
	}
}
