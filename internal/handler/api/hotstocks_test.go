package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "TickerPulse/internal/domain/models"
	"TickerPulse/internal/repository"
	"TickerPulse/internal/service/relevance"
	"TickerPulse/internal/usecase"
	"TickerPulse/pkg/cache"
	"TickerPulse/pkg/config"
	xlogger "TickerPulse/pkg/logger"
	"TickerPulse/pkg/metrics"

	"github.com/labstack/echo/v4"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func seedStore(t *testing.T, store *repository.FileSnapshotStore, counts ...map[string]int) {
	t.Helper()
	runIDs := []string{"20250815-0000", "20250815-0600", "20250815-1200"}
	for i, c := range counts {
		m := make(map[string]models.SymbolCount, len(c))
		for symbol, n := range c {
			m[symbol] = models.SymbolCount{Company: symbol + " Corp", Count: n}
		}
		err := store.Record(context.Background(), &models.Snapshot{
			RunID:   runIDs[i],
			TakenAt: time.Now().UTC(),
			Counts:  m,
		})
		if err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}
}

func serve(h *HotStocksHandler, method, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHotStocksServedFromCache(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	hot := []models.HotStock{{Symbol: "GME", Company: "GameStop Corp.", Latest: 12, Prev: 10, Prev2: 8}}
	if err := mem.Set(context.Background(), usecase.HotStocksCacheKey, hot, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	h := NewHotStocksHandler(testLogger(t), repository.NewFileSnapshotStore(t.TempDir(), nil), mem, time.Minute, nil)
	rec := serve(h, http.MethodGet, "/api/hotstocks")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"symbol":"GME"`) {
		t.Fatalf("cached hot stock missing: %s", rec.Body.String())
	}
}

func TestHotStocksRecomputedOnCacheMiss(t *testing.T) {
	store := repository.NewFileSnapshotStore(t.TempDir(), nil)
	seedStore(t, store,
		map[string]int{"GME": 8},
		map[string]int{"GME": 10},
		map[string]int{"GME": 12},
	)
	mem := cache.NewMemoryCache()
	defer mem.Close()

	h := NewHotStocksHandler(testLogger(t), store, mem, time.Minute, nil)
	rec := serve(h, http.MethodGet, "/api/hotstocks")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"symbol":"GME"`) {
		t.Fatalf("recomputed hot stock missing: %s", rec.Body.String())
	}

	// The recomputed list is written back, so the next request hits the cache.
	var cached []models.HotStock
	if err := mem.Get(context.Background(), usecase.HotStocksCacheKey, &cached); err != nil {
		t.Fatalf("recomputed list not cached: %v", err)
	}
	if len(cached) != 1 || cached[0].Symbol != "GME" {
		t.Fatalf("cached list wrong: %v", cached)
	}
}

func TestHotStocksShortHistoryIsEmptyList(t *testing.T) {
	h := NewHotStocksHandler(testLogger(t), repository.NewFileSnapshotStore(t.TempDir(), nil), nil, 0, nil)
	rec := serve(h, http.MethodGet, "/api/hotstocks")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total":0`) {
		t.Fatalf("want empty list: %s", rec.Body.String())
	}
}

func TestSnapshotsValidation(t *testing.T) {
	store := repository.NewFileSnapshotStore(t.TempDir(), nil)
	seedStore(t, store, map[string]int{"GME": 8}, map[string]int{"GME": 10})
	h := NewHotStocksHandler(testLogger(t), store, nil, 0, nil)

	rec := serve(h, http.MethodGet, "/api/snapshots?n=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	// Newest first.
	body := rec.Body.String()
	if !strings.Contains(body, "20250815-0600") || !strings.Contains(body, "20250815-0000") {
		t.Fatalf("snapshots missing: %s", body)
	}

	rec = serve(h, http.MethodGet, "/api/snapshots?n=99")
	if !strings.Contains(rec.Body.String(), `"status":400`) {
		t.Fatalf("n above the limit must fail validation: %s", rec.Body.String())
	}
}

func TestSymbolHistory(t *testing.T) {
	store := repository.NewFileSnapshotStore(t.TempDir(), nil)
	seedStore(t, store,
		map[string]int{"GME": 8},
		map[string]int{"TSLA": 5},
		map[string]int{"GME": 12},
	)
	h := NewHotStocksHandler(testLogger(t), store, nil, 0, nil)

	rec := serve(h, http.MethodGet, "/api/symbols/GME?n=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	// Runs where the symbol fell under the cut report zero.
	if !strings.Contains(body, `{"run_id":"20250815-1200","count":12}`) ||
		!strings.Contains(body, `{"run_id":"20250815-0600","count":0}`) {
		t.Fatalf("history wrong: %s", body)
	}
}

func scanConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scan.MinMentions = 1
	return cfg
}

type blockingSource struct {
	release chan struct{}
}

func (s *blockingSource) FetchPosts(ctx context.Context) ([]models.Post, error) {
	<-s.release
	return nil, nil
}

type staticLexicon struct{}

func (staticLexicon) Load(ctx context.Context) ([]models.SymbolEntry, error) {
	return []models.SymbolEntry{{Symbol: "GME", Company: "GameStop Corp."}}, nil
}

func TestTriggerScanConflictWhileRunning(t *testing.T) {
	dir := t.TempDir()
	store := repository.NewFileSnapshotStore(dir, nil)
	archive := repository.NewFilePostArchive(dir)
	source := &blockingSource{release: make(chan struct{})}

	cfg := scanConfig()
	scan := usecase.NewScanRunner(cfg, staticLexicon{}, source, store, archive, metrics.Nop{}, nil)
	hot := usecase.NewHotStockRunner(store, archive,
		relevance.NewFilter(relevance.ModeOrdered, 3, nil),
		nil, nil, nil, 0, metrics.Nop{}, nil)
	p := usecase.NewPipeline(scan, hot, nil, nil, nil, nil)
	done := make(chan struct{})
	p.OnRunComplete(func(*models.RunEvent) { close(done) })

	h := NewHotStocksHandler(testLogger(t), store, nil, 0, p)

	rec := serve(h, http.MethodPost, "/api/scan")
	if !strings.Contains(rec.Body.String(), `"status":202`) {
		t.Fatalf("first trigger must be accepted: %s", rec.Body.String())
	}
	rec = serve(h, http.MethodPost, "/api/scan")
	if !strings.Contains(rec.Body.String(), `"status":409`) {
		t.Fatalf("second trigger must conflict: %s", rec.Body.String())
	}

	close(source.release)
	<-done
}

func TestHealth(t *testing.T) {
	h := NewHotStocksHandler(testLogger(t), nil, nil, 0, nil)
	rec := serve(h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
