package models

// SymbolEntry is one lexicon row: a ticker symbol paired with the company it
// identifies. RequiresDollar marks symbols that collide with common English
// words (and all single-character symbols); bare occurrences of those are
// ignored by the matcher and only "$SYM" counts.
type SymbolEntry struct {
	Symbol         string `json:"symbol"`
	Company        string `json:"company"`
	RequiresDollar bool   `json:"requires_dollar,omitempty"`
}

// DollarSymbols is the fixed set of tickers that read as ordinary words in
// forum text and therefore only count with an explicit "$" prefix.
var DollarSymbols = []string{
	"BE", "GO", "IT", "OR", "SO", "NO", "UP", "FOR", "ON", "BY",
	"AS", "HE", "AM", "AN", "AI", "DD", "OP", "ALL", "YOU", "TV",
	"PM", "HAS", "ARM", "ARE", "PUMP", "EOD", "DAY", "WTF", "HIT", "NOW",
}
