// Package syncer implements the client-side polling contract that keeps an
// open group view approximately fresh without a push channel. Each
// collection polls on its own timer so one slow endpoint cannot stall
// another, and every local mutation triggers an immediate targeted re-pull.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/reelmates/reelmates-backend/pkg/config"
	"github.com/reelmates/reelmates-backend/pkg/logger"
	"github.com/reelmates/reelmates-backend/pkg/metrics"
	"go.uber.org/multierr"
)

// Collection names one pollable slice of group state.
type Collection string

const (
	CollectionMembers  Collection = "members"
	CollectionPicks    Collection = "picks"
	CollectionMessages Collection = "messages"
	CollectionInvites  Collection = "invites"
)

// Source pulls a fresh snapshot of one collection and merges it into view
// state. Pull must be safe to call repeatedly and from the driver's
// goroutines; merging must never touch the compose buffer.
type Source interface {
	Collection() Collection
	Pull(ctx context.Context) error
}

// Driver owns the per-collection poll timers for a single open group view.
// It is created when the view opens and closed when it goes away.
type Driver struct {
	sources  []Source
	interval map[Collection]time.Duration
	metrics  *metrics.PollMetrics
	logg     *logger.Logger
	compose  *ComposeState

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	refresh map[Collection]chan struct{}
}

// DriverParams bundles the dependencies for a sync driver.
type DriverParams struct {
	Sources []Source
	Sync    config.SyncConfig
	Metrics *metrics.PollMetrics
	Logger  *logger.Logger
}

// NewDriver constructs a driver for the given sources. Cadences come from
// config; a zero interval falls back to the contract defaults.
func NewDriver(params DriverParams) (*Driver, error) {
	if len(params.Sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	intervals := map[Collection]time.Duration{
		CollectionMessages: orDefault(params.Sync.MessagesInterval, 12*time.Second),
		CollectionPicks:    orDefault(params.Sync.PicksInterval, 10*time.Second),
		CollectionMembers:  orDefault(params.Sync.PicksInterval, 10*time.Second),
		CollectionInvites:  orDefault(params.Sync.InvitesInterval, 8*time.Second),
	}

	refresh := make(map[Collection]chan struct{}, len(params.Sources))
	for _, source := range params.Sources {
		if _, ok := intervals[source.Collection()]; !ok {
			return nil, fmt.Errorf("unknown collection %q", source.Collection())
		}
		if _, dup := refresh[source.Collection()]; dup {
			return nil, fmt.Errorf("duplicate source for collection %q", source.Collection())
		}
		refresh[source.Collection()] = make(chan struct{}, 1)
	}

	return &Driver{
		sources:  params.Sources,
		interval: intervals,
		metrics:  params.Metrics,
		logg:     params.Logger,
		compose:  NewComposeState(),
		refresh:  refresh,
	}, nil
}

// Open performs the initial parallel pull of every collection and then
// starts the background timers. A failed pull is isolated: its error is
// reported in the combined result, but the other collections still render
// and all timers still start.
func (d *Driver) Open(ctx context.Context) error {
	d.mu.Lock()
	if d.cancel != nil {
		d.mu.Unlock()
		return fmt.Errorf("driver already open")
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	var (
		errMu   sync.Mutex
		initErr error
		initWG  sync.WaitGroup
	)
	for _, source := range d.sources {
		initWG.Add(1)
		go func(src Source) {
			defer initWG.Done()
			if err := d.pull(runCtx, src); err != nil {
				errMu.Lock()
				initErr = multierr.Append(initErr, fmt.Errorf("%s: %w", src.Collection(), err))
				errMu.Unlock()
			}
		}(source)
	}
	initWG.Wait()

	for _, source := range d.sources {
		d.wg.Add(1)
		go d.loop(runCtx, source)
	}
	return initErr
}

// Refresh schedules an immediate re-pull of the named collection, on top of
// its ambient timer. Signals coalesce: a refresh requested while one is
// already pending is absorbed.
func (d *Driver) Refresh(collection Collection) {
	ch, ok := d.refresh[collection]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Compose returns the local-only compose buffer for this view.
func (d *Driver) Compose() *ComposeState {
	return d.compose
}

// Close stops all timers and waits for in-flight pulls to finish.
func (d *Driver) Close() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	d.wg.Wait()
}

func (d *Driver) loop(ctx context.Context, source Source) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval[source.Collection()])
	defer ticker.Stop()

	refresh := d.refresh[source.Collection()]
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = d.pull(ctx, source)
		case <-refresh:
			_ = d.pull(ctx, source)
		}
	}
}

func (d *Driver) pull(ctx context.Context, source Source) error {
	collection := string(source.Collection())
	start := time.Now()
	err := source.Pull(ctx)
	d.metrics.ObserveDuration(collection, time.Since(start))
	if err != nil {
		d.metrics.IncFailure(collection)
		logCtx := d.logg.WithField(ctx, "collection", collection)
		d.logg.Error(logCtx, "sync pull failed", err)
		return err
	}
	d.metrics.IncSuccess(collection)
	return nil
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
