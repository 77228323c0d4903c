package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"TickerPulse/internal/domain/models"
	"TickerPulse/internal/domain/repository"
	"TickerPulse/internal/service/retention"
	applogger "TickerPulse/pkg/logger"
)

// ErrRunInFlight is returned when a run is requested while another is still
// executing. Runs are strictly serialized across every trigger path; letting
// two overlap would reset the in-flight run's skip counters and, within the
// same minute, collide on the run id.
var ErrRunInFlight = errors.New("a run is already in flight")

// Pipeline chains one full run: scan, hot-stock detection and reports, run
// event publication, retention sweep. It is the unit the scheduler and the
// manual trigger both execute.
type Pipeline struct {
	scan      *ScanRunner
	hot       *HotStockRunner
	publisher repository.Publisher
	cleaner   *retention.Cleaner
	sweepDirs []string
	logger    *applogger.Logger
	notify    func(*models.RunEvent)

	runMu sync.Mutex
}

func NewPipeline(
	scan *ScanRunner,
	hot *HotStockRunner,
	publisher repository.Publisher,
	cleaner *retention.Cleaner,
	sweepDirs []string,
	logger *applogger.Logger,
) *Pipeline {
	return &Pipeline{
		scan:      scan,
		hot:       hot,
		publisher: publisher,
		cleaner:   cleaner,
		sweepDirs: sweepDirs,
		logger:    logger,
	}
}

// OnRunComplete registers a callback invoked with each run's event after
// publication; the live push handler subscribes here.
func (p *Pipeline) OnRunComplete(fn func(*models.RunEvent)) {
	p.notify = fn
}

// Run executes the full pipeline and returns the run event. A call while
// another run is executing returns ErrRunInFlight.
func (p *Pipeline) Run(ctx context.Context) (*models.RunEvent, error) {
	if !p.runMu.TryLock() {
		return nil, ErrRunInFlight
	}
	defer p.runMu.Unlock()
	return p.run(ctx)
}

// RunAsync acquires the run slot and executes the pipeline in the
// background. The in-flight check is synchronous, so callers can reject a
// duplicate trigger immediately.
func (p *Pipeline) RunAsync(ctx context.Context) error {
	if !p.runMu.TryLock() {
		return ErrRunInFlight
	}
	go func() {
		defer p.runMu.Unlock()
		if _, err := p.run(ctx); err != nil && p.logger != nil {
			p.logger.Error("run failed", applogger.Error(err))
		}
	}()
	return nil
}

func (p *Pipeline) run(ctx context.Context) (*models.RunEvent, error) {
	if d := p.diagnostics(); d != nil {
		d.Reset()
	}

	result, err := p.scan.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan stage: %w", err)
	}

	hot, err := p.hot.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("hot stock stage: %w", err)
	}

	ev := &models.RunEvent{
		RunID:    result.Snapshot.RunID,
		TakenAt:  result.Snapshot.TakenAt,
		Posts:    result.Posts,
		Comments: result.Comments,
		Symbols:  len(result.Snapshot.Counts),
	}
	for _, h := range hot {
		ev.HotSymbols = append(ev.HotSymbols, h.Symbol)
	}
	if d := p.diagnostics(); d != nil {
		for _, e := range d.Snapshot() {
			ev.Skipped += e.Count
		}
	}

	if p.publisher != nil {
		if err := p.publisher.PublishRun(ctx, ev); err != nil {
			// Publication is best-effort; the run's artifacts are already
			// persisted.
			if p.logger != nil {
				p.logger.Error("publish run event failed",
					applogger.String("run_id", ev.RunID),
					applogger.Error(err),
				)
			}
		}
	}
	if p.notify != nil {
		p.notify(ev)
	}

	if p.cleaner != nil {
		if _, err := p.cleaner.Sweep(p.sweepDirs...); err != nil && p.logger != nil {
			p.logger.Error("retention sweep failed", applogger.Error(err))
		}
	}

	if p.logger != nil {
		p.logger.Info("run complete",
			applogger.String("run_id", ev.RunID),
			applogger.Int("posts", ev.Posts),
			applogger.Int("comments", ev.Comments),
			applogger.Int("symbols", ev.Symbols),
			applogger.Strings("hot", ev.HotSymbols),
			applogger.Int("skipped", ev.Skipped),
		)
	}
	return ev, nil
}

func (p *Pipeline) diagnostics() *applogger.Diagnostics {
	if p.logger == nil {
		return nil
	}
	return p.logger.Diagnostics()
}
