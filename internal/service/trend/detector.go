package trend

import (
	"errors"
	"fmt"
	"sort"

	"TickerPulse/internal/domain/models"
)

// ErrInsufficientHistory is returned when fewer than three snapshots exist.
// Callers report it and skip trend detection for the run; it is not fatal.
var ErrInsufficientHistory = errors.New("trend: need 3 snapshots")

// Detect compares the three most recent snapshots (newest first) and returns
// the hot symbols, sorted by latest count descending. A symbol is hot when
// either condition holds, both with strict greater-than:
//
//	momentum: latest > prev
//	surge:    latest > (prev + prev2) / 2
//
// The surge mean is exact: compared as 2*latest > prev+prev2 in integers.
// Company names resolve from the first snapshot that carries the symbol, in
// latest, prev, prev2 order. Ties on the latest count break by symbol so the
// result is deterministic for a fixed input.
func Detect(snapshots []*models.Snapshot) ([]models.HotStock, error) {
	if len(snapshots) < 3 {
		return nil, fmt.Errorf("%w, have %d", ErrInsufficientHistory, len(snapshots))
	}
	latest, prev, prev2 := snapshots[0], snapshots[1], snapshots[2]

	union := make(map[string]struct{})
	for _, s := range []*models.Snapshot{latest, prev, prev2} {
		for symbol := range s.Counts {
			union[symbol] = struct{}{}
		}
	}

	hot := make([]models.HotStock, 0, len(union))
	for symbol := range union {
		l := latest.Get(symbol)
		p := prev.Get(symbol)
		p2 := prev2.Get(symbol)

		if l <= p && 2*l <= p+p2 {
			continue
		}

		company, ok := latest.Company(symbol)
		if !ok {
			if company, ok = prev.Company(symbol); !ok {
				company, _ = prev2.Company(symbol)
			}
		}

		hot = append(hot, models.HotStock{
			Symbol:  symbol,
			Company: company,
			Latest:  l,
			Prev:    p,
			Prev2:   p2,
		})
	}

	sort.Slice(hot, func(i, j int) bool {
		if hot[i].Latest != hot[j].Latest {
			return hot[i].Latest > hot[j].Latest
		}
		return hot[i].Symbol < hot[j].Symbol
	})
	return hot, nil
}
