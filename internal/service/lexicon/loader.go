package lexicon

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"TickerPulse/internal/domain/models"
	"TickerPulse/pkg/cache"
	"TickerPulse/pkg/config"
	xhttp "TickerPulse/pkg/http"
	applogger "TickerPulse/pkg/logger"
	"TickerPulse/pkg/util"
)

// Loader fetches exchange listings and cleans them into the lexicon the
// matcher is compiled from. Duplicate companies are collapsed by name key,
// duplicate symbols dropped, and the dollar-prefix flag applied, so the core
// can trust symbol uniqueness.
type Loader struct {
	client    *xhttp.Client
	cache     cache.Service
	cacheTTL  time.Duration
	nasdaqURL string
	nyseURL   string
	dollar    map[string]bool
	logger    *applogger.Logger
}

func NewLoader(cfg *config.Config, c cache.Service, logger *applogger.Logger) *Loader {
	symbols := cfg.Lexicon.DollarSymbols
	if len(symbols) == 0 {
		symbols = models.DollarSymbols
	}
	dollar := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		dollar[s] = true
	}
	return &Loader{
		client:    xhttp.NewClient(xhttp.WithTimeout(cfg.Forum.Timeout)),
		cache:     c,
		cacheTTL:  cfg.Cache.TTL.Lexicon,
		nasdaqURL: cfg.Lexicon.NasdaqURL,
		nyseURL:   cfg.Lexicon.NyseURL,
		dollar:    dollar,
		logger:    logger,
	}
}

// Load fetches both listings and returns the cleaned lexicon.
func (l *Loader) Load(ctx context.Context) ([]models.SymbolEntry, error) {
	nasdaqRaw, err := l.fetch(ctx, "lexicon:nasdaq", l.nasdaqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch nasdaq listing: %w", err)
	}
	nyseRaw, err := l.fetch(ctx, "lexicon:nyse", l.nyseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch nyse listing: %w", err)
	}

	nasdaq, err := parseNasdaq(bytes.NewReader(nasdaqRaw))
	if err != nil {
		return nil, fmt.Errorf("parse nasdaq listing: %w", err)
	}
	nyse, err := parseNyse(bytes.NewReader(nyseRaw))
	if err != nil {
		return nil, fmt.Errorf("parse nyse listing: %w", err)
	}

	entries := l.clean(nasdaq, nyse)
	if l.logger != nil {
		l.logger.Info("lexicon loaded",
			applogger.Int("nasdaq", len(nasdaq)),
			applogger.Int("nyse", len(nyse)),
			applogger.Int("final", len(entries)),
		)
	}
	return entries, nil
}

func (l *Loader) fetch(ctx context.Context, key, url string) ([]byte, error) {
	if l.cache != nil {
		var cached []byte
		if err := l.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}
	var body []byte
	err := l.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    url,
	}, &body)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		_ = l.cache.Set(ctx, key, body, l.cacheTTL)
	}
	return body, nil
}

type listing struct {
	symbol  string
	company string
}

// parseNasdaq reads the pipe-separated nasdaqlisted.txt feed, keeping only
// non-ETF rows. The trailing "File Creation Time" line has a different field
// count and is skipped.
func parseNasdaq(r io.Reader) ([]listing, error) {
	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	symbolIdx, companyIdx, etfIdx := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Symbol":
			symbolIdx = i
		case "Security Name":
			companyIdx = i
		case "ETF":
			etfIdx = i
		}
	}
	if symbolIdx < 0 || companyIdx < 0 || etfIdx < 0 {
		return nil, fmt.Errorf("unexpected header: %v", header)
	}

	var out []listing
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) <= etfIdx || row[etfIdx] != "N" {
			continue
		}
		out = append(out, listing{
			symbol:  strings.TrimSpace(row[symbolIdx]),
			company: strings.TrimSpace(row[companyIdx]),
		})
	}
	return out, nil
}

// parseNyse reads the nyse-listed.csv feed (ACT Symbol, Company Name).
func parseNyse(r io.Reader) ([]listing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	symbolIdx, companyIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "ACT Symbol":
			symbolIdx = i
		case "Company Name":
			companyIdx = i
		}
	}
	if symbolIdx < 0 || companyIdx < 0 {
		return nil, fmt.Errorf("unexpected header: %v", header)
	}

	var out []listing
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) <= symbolIdx || len(row) <= companyIdx {
			continue
		}
		out = append(out, listing{
			symbol:  strings.TrimSpace(row[symbolIdx]),
			company: strings.TrimSpace(row[companyIdx]),
		})
	}
	return out, nil
}

// clean applies the dedupe cascade: per-exchange by company name key, then
// across exchanges by full company name (first in company/symbol order
// wins), then by symbol, and finally flags dollar-prefixed entries.
func (l *Loader) clean(exchanges ...[]listing) []models.SymbolEntry {
	var combined []listing
	for _, rows := range exchanges {
		seenKey := make(map[string]bool)
		for _, row := range rows {
			if row.symbol == "" || row.company == "" {
				continue
			}
			key := util.NameKey(row.company)
			if seenKey[key] {
				continue
			}
			seenKey[key] = true
			combined = append(combined, row)
		}
	}

	sort.Slice(combined, func(i, j int) bool {
		if combined[i].company != combined[j].company {
			return combined[i].company < combined[j].company
		}
		return combined[i].symbol < combined[j].symbol
	})

	seenCompany := make(map[string]bool)
	seenSymbol := make(map[string]bool)
	out := make([]models.SymbolEntry, 0, len(combined))
	for _, row := range combined {
		if seenCompany[row.company] || seenSymbol[row.symbol] {
			continue
		}
		seenCompany[row.company] = true
		seenSymbol[row.symbol] = true
		out = append(out, models.SymbolEntry{
			Symbol:         row.symbol,
			Company:        row.company,
			RequiresDollar: len(row.symbol) == 1 || l.dollar[row.symbol],
		})
	}
	return out
}
