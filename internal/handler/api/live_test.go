package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "TickerPulse/internal/domain/models"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func waitForSubscribers(t *testing.T, h *LiveHandler, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.Lock()
		got := len(h.conns)
		h.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscriber never registered")
}

func TestLivePushesRunEvents(t *testing.T) {
	h := NewLiveHandler(testLogger(t))
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()
	defer h.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForSubscribers(t, h, 1)
	h.Broadcast(&models.RunEvent{RunID: "20250815-1200", Posts: 7, HotSymbols: []string{"GME"}})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev models.RunEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.RunID != "20250815-1200" || ev.Posts != 7 || len(ev.HotSymbols) != 1 {
		t.Fatalf("event wrong: %+v", ev)
	}
}

func TestLiveDropsClosedSubscribers(t *testing.T) {
	h := NewLiveHandler(testLogger(t))
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()
	defer h.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	// Both broadcasts must survive the dead connection.
	h.Broadcast(&models.RunEvent{RunID: "20250815-1200"})
	h.Broadcast(&models.RunEvent{RunID: "20250815-1800"})
}
