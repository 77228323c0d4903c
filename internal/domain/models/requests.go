package models

// SnapshotsRequest is the query for recent snapshots.
type SnapshotsRequest struct {
	N int `query:"n" default:"3" validate:"gte=1,lte=30"`
}

// SymbolHistoryRequest asks for the count history of one symbol.
type SymbolHistoryRequest struct {
	Symbol string `param:"symbol" validate:"required,min=1,max=6"`
	N      int    `query:"n" default:"10" validate:"gte=1,lte=30"`
}

// SymbolHistoryPoint is one (run, count) pair in a symbol's history.
type SymbolHistoryPoint struct {
	RunID string `json:"run_id"`
	Count int    `json:"count"`
}
