package models

import "time"

// SymbolCount is one snapshot row.
type SymbolCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Snapshot is the immutable per-run mapping of symbol to mention count,
// keyed by the sortable run id (YYYYMMDD-HHMM).
type Snapshot struct {
	RunID   string                 `json:"run_id"`
	TakenAt time.Time              `json:"taken_at"`
	Counts  map[string]SymbolCount `json:"counts"`
}

// Get returns the count for symbol, 0 if absent.
func (s *Snapshot) Get(symbol string) int {
	if s == nil {
		return 0
	}
	if c, ok := s.Counts[symbol]; ok {
		return c.Count
	}
	return 0
}

// Company returns the company name for symbol and whether it is present.
func (s *Snapshot) Company(symbol string) (string, bool) {
	if s == nil {
		return "", false
	}
	c, ok := s.Counts[symbol]
	return c.Company, ok
}

// HotStock is a symbol whose mention rate is currently rising, with the
// three counts the classification was derived from. Derived data; the
// snapshots stay the source of truth.
type HotStock struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
	Latest  int    `json:"latest"`
	Prev    int    `json:"prev"`
	Prev2   int    `json:"prev2"`
}

// RunEvent summarizes a completed scan run, published to Kafka and pushed to
// live websocket subscribers.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	TakenAt    time.Time `json:"taken_at"`
	Posts      int       `json:"posts"`
	Comments   int       `json:"comments"`
	Symbols    int       `json:"symbols"`
	HotSymbols []string  `json:"hot_symbols,omitempty"`
	Skipped    int       `json:"skipped,omitempty"`
}

// SentimentReport is the narrative produced by the external analysis model
// for one hot symbol.
type SentimentReport struct {
	Symbol    string `json:"symbol"`
	Company   string `json:"company"`
	Narrative string `json:"narrative"` // markdown
	Score     int    `json:"score"`     // -10 (bearish) .. +10 (bullish)
}
