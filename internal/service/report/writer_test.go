package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TickerPulse/internal/domain/models"
)

func testBundle() *models.SymbolPosts {
	return &models.SymbolPosts{
		Symbol:  "GME",
		Company: "GameStop Corp.",
		Posts: []models.Post{
			{Title: "small post", Upvotes: 3, URL: "https://example.com/a"},
			{Title: "big <script> post", Upvotes: 99, URL: "https://example.com/b",
				Comments: []models.Comment{{ID: "c1"}, {ID: "c2"}}},
		},
		PostCount: 2,
	}
}

func TestWriteSymbolReport(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	sr := &models.SentimentReport{
		Symbol:    "GME",
		Company:   "GameStop Corp.",
		Narrative: "Overall bullish.",
		Score:     5,
	}
	path, err := w.WriteSymbolReport("20250815-0600", testBundle(), sr)
	if err != nil {
		t.Fatalf("WriteSymbolReport: %v", err)
	}
	if filepath.Base(path) != "20250815-0600_GME-report.html" {
		t.Fatalf("file name wrong: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	html := string(b)
	if !strings.Contains(html, "GameStop Corp.") || !strings.Contains(html, "Overall bullish.") {
		t.Fatalf("report content missing: %s", html)
	}
	// Posts sorted by upvotes: the 99-upvote post row comes first.
	if strings.Index(html, "big") > strings.Index(html, "small") {
		t.Fatalf("posts not sorted by upvotes")
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("post title must be escaped")
	}
	if !strings.Contains(html, "#4caf50") {
		t.Fatalf("positive score must render green bar")
	}
}

func TestWriteSymbolReportWithoutSentiment(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	path, err := w.WriteSymbolReport("20250815-0600", testBundle(), nil)
	if err != nil {
		t.Fatalf("WriteSymbolReport: %v", err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "#ffc107") {
		t.Fatalf("missing sentiment must render neutral bar")
	}
}

func TestWriteIndexGroupsByRun(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)

	for _, name := range []string{
		"20250814-0600_GME-report.html",
		"20250815-0600_GME-report.html",
		"20250815-0600_AMC-report.html",
		"not-a-report.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	if err := w.WriteIndex(); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	html := string(b)
	// Newest run group first.
	if strings.Index(html, "2025-08-15 06:00") > strings.Index(html, "2025-08-14 06:00") {
		t.Fatalf("groups not newest first: %s", html)
	}
	if !strings.Contains(html, "20250815-0600_AMC-report.html") {
		t.Fatalf("index missing AMC link")
	}
	if strings.Contains(html, "not-a-report") {
		t.Fatalf("stray file must not be indexed")
	}
}

func TestSplitReportName(t *testing.T) {
	prefix, symbol, ok := splitReportName("20250815-0600_BRK.A-report.html")
	if !ok || prefix != "20250815-0600" || symbol != "BRK.A" {
		t.Fatalf("got %q %q %v", prefix, symbol, ok)
	}
	if _, _, ok := splitReportName("garbage.html"); ok {
		t.Fatalf("garbage must not parse")
	}
}
