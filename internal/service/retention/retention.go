package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	applogger "TickerPulse/pkg/logger"
	"TickerPulse/pkg/util"
)

// Cleaner ages out run-prefixed artifacts, keeping the newest N per
// directory. Files without a valid run id prefix are never touched; index
// pages and ad-hoc files survive every sweep.
type Cleaner struct {
	keep   int
	logger *applogger.Logger
}

func NewCleaner(keep int, logger *applogger.Logger) *Cleaner {
	if keep < 1 {
		keep = 1
	}
	return &Cleaner{keep: keep, logger: logger}
}

// Sweep applies retention to each directory and returns the number of
// deleted files.
func (c *Cleaner) Sweep(dirs ...string) (int, error) {
	deleted := 0
	for _, dir := range dirs {
		n, err := c.sweepDir(dir)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, nil
}

func (c *Cleaner) sweepDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read dir %s: %w", dir, err)
	}

	type stamped struct {
		name string
		id   string
	}
	var timed []stamped
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := runPrefix(e.Name())
		if !ok {
			continue
		}
		timed = append(timed, stamped{name: e.Name(), id: id})
	}

	if len(timed) <= c.keep {
		return 0, nil
	}

	// Run ids sort lexically in time order.
	sort.Slice(timed, func(i, j int) bool { return timed[i].id > timed[j].id })

	deleted := 0
	for _, f := range timed[c.keep:] {
		if err := os.Remove(filepath.Join(dir, f.name)); err != nil {
			return deleted, fmt.Errorf("remove %s: %w", f.name, err)
		}
		deleted++
	}
	if c.logger != nil {
		c.logger.Info("retention sweep",
			applogger.String("dir", dir),
			applogger.Int("deleted", deleted),
			applogger.Int("kept", c.keep),
		)
	}
	return deleted, nil
}

// runPrefix extracts and validates the run id prefix of a file name.
func runPrefix(name string) (string, bool) {
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return "", false
	}
	prefix := name[:i]
	if _, err := util.ParseRunID(prefix); err != nil {
		return "", false
	}
	return prefix, true
}
