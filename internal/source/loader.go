package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"product-dashboard/internal/models"
	"product-dashboard/internal/observability"
	"product-dashboard/internal/services"
)

// ErrStopped is returned by Refresh once the loader has been stopped.
var ErrStopped = errors.New("loader stopped")

// Store receives every successfully fetched collection.
type Store interface {
	SetData(products []models.Product, source string) *services.Snapshot
}

type Options struct {
	// RetryDelay follows a failed fetch, EmptyDelay an empty one. Both grow by
	// BackoffFactor per consecutive retry, capped at MaxRetryDelay.
	RetryDelay    time.Duration
	EmptyDelay    time.Duration
	BackoffFactor float64
	MaxRetryDelay time.Duration
	// MaxAttempts bounds one retry cycle; 0 retries forever.
	MaxAttempts int
	// Schedule is a cron spec for periodic refreshes; empty disables them.
	Schedule     string
	FetchTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		RetryDelay:    5 * time.Second,
		EmptyDelay:    3 * time.Second,
		BackoffFactor: 1,
		Schedule:      "@every 5m",
		FetchTimeout:  30 * time.Second,
	}
}

// delay is the wait before retry number n (0-based) after err.
func (o Options) delay(err error, n int) time.Duration {
	base := o.RetryDelay
	if errors.Is(err, ErrEmptyResult) {
		base = o.EmptyDelay
	}
	factor := math.Max(o.BackoffFactor, 1)
	d := time.Duration(float64(base) * math.Pow(factor, float64(n)))
	if o.MaxRetryDelay > 0 && (d > o.MaxRetryDelay || d < 0) {
		return o.MaxRetryDelay
	}
	if d < 0 {
		return base
	}
	return d
}

// Loader populates a Store from a Source. A cycle fetches until it succeeds,
// waiting between attempts, and gives up after MaxAttempts. The cron schedule
// starts a new cycle whenever none is running.
type Loader struct {
	src    Source
	store  Store
	opts   Options
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	sched  *cron.Cron
	group  singleflight.Group

	cycling atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	status  models.LoadStatus

	after func(time.Duration) <-chan time.Time
	now   func() time.Time
}

func NewLoader(src Source, store Store, opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		src:    src,
		store:  store,
		opts:   opts,
		logger: logger.With("component", "loader", "source", src.Name()),
		ctx:    ctx,
		cancel: cancel,
		sched:  cron.New(),
		status: models.LoadStatus{Loading: true},
		after:  time.After,
		now:    time.Now,
	}
}

// Start kicks off the first load cycle and the periodic refresh.
func (l *Loader) Start() error {
	if l.opts.Schedule != "" {
		if _, err := l.sched.AddFunc(l.opts.Schedule, l.scheduled); err != nil {
			return fmt.Errorf("schedule refresh %q: %w", l.opts.Schedule, err)
		}
	}
	l.sched.Start()
	l.startCycle(nil)
	return nil
}

// AddJob runs fn on the loader's scheduler, so it starts and stops with the
// periodic refresh.
func (l *Loader) AddJob(spec string, fn func()) error {
	if _, err := l.sched.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("schedule job %q: %w", spec, err)
	}
	return nil
}

func (l *Loader) scheduled() {
	if !l.startCycle(nil) {
		l.logger.Debug("refresh skipped, a load cycle is already running")
	}
}

// Stop cancels pending retries and in-flight fetches, stops the scheduler and
// waits for every loader goroutine to return or ctx to expire.
func (l *Loader) Stop(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	l.stopped = true
	l.mu.Unlock()

	l.cancel()
	schedDone := l.sched.Stop()

	done := make(chan struct{})
	go func() {
		<-schedDone.Done()
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("stop loader: %w", ctx.Err())
	}

	if c, ok := l.src.(io.Closer); ok {
		_ = c.Close()
	}
	l.logger.Info("loader stopped")
	return nil
}

// track registers a goroutine unless the loader is stopping.
func (l *Loader) track() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	l.wg.Add(1)
	return true
}

// Status returns a copy of the current load state.
func (l *Loader) Status() models.LoadStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Refresh fetches immediately, sharing the request with any fetch already in
// flight. On failure a retry cycle is started unless one is running.
func (l *Loader) Refresh(ctx context.Context) error {
	err := l.fetch(ctx)
	if err != nil && !errors.Is(err, ErrStopped) && ctx.Err() == nil {
		l.startCycle(err)
	}
	return err
}

// startCycle runs a retry cycle in the background. A non-nil err means the
// first attempt already failed with it.
func (l *Loader) startCycle(err error) bool {
	if !l.cycling.CompareAndSwap(false, true) {
		return false
	}
	if !l.track() {
		l.cycling.Store(false)
		return false
	}
	go func() {
		defer l.wg.Done()
		defer l.cycling.Store(false)
		l.cycle(err)
	}()
	return true
}

func (l *Loader) cycle(err error) {
	attempts := 0
	if err != nil {
		attempts = 1
	}

	for {
		if err == nil {
			attempts++
			if err = l.fetch(l.ctx); err == nil {
				return
			}
		}
		if l.ctx.Err() != nil {
			return
		}

		if l.opts.MaxAttempts > 0 && attempts >= l.opts.MaxAttempts {
			l.mu.Lock()
			l.status.Retrying = false
			l.status.Failed = true
			l.status.NextAttempt = time.Time{}
			l.mu.Unlock()
			l.logger.Error("giving up until the next scheduled refresh",
				"attempts", attempts,
				"error", err)
			return
		}

		wait := l.opts.delay(err, attempts-1)
		l.mu.Lock()
		l.status.Retrying = true
		l.status.NextAttempt = l.now().Add(wait)
		l.mu.Unlock()
		l.logger.Warn("fetch failed, retrying",
			"attempt", attempts,
			"retry_in", wait,
			"error", err)

		select {
		case <-l.after(wait):
		case <-l.ctx.Done():
			return
		}
		err = nil
	}
}

// fetch performs one shared fetch and records its outcome. A caller whose
// ctx ends first stops waiting; the fetch itself runs on until the loader
// stops.
func (l *Loader) fetch(ctx context.Context) error {
	ch := l.group.DoChan("fetch", func() (any, error) {
		if !l.track() {
			return nil, ErrStopped
		}
		defer l.wg.Done()
		return nil, l.fetchOnce()
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) fetchOnce() error {
	ctx := l.ctx
	if l.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.FetchTimeout)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "source.fetch")
	span.SetTag("source", l.src.Name())
	defer span.End(l.logger)

	products, err := l.src.Fetch(ctx)
	if err != nil {
		span.SetError(err)
		l.mu.Lock()
		l.status.Attempts++
		l.status.LastError = err.Error()
		l.mu.Unlock()
		return err
	}

	snap := l.store.SetData(products, l.src.Name())

	l.mu.Lock()
	l.status = models.LoadStatus{
		LastSuccess: snap.LoadedAt,
		RecordCount: len(products),
	}
	l.mu.Unlock()

	l.logger.Info("products loaded", "records", len(products), "version", snap.Version)
	return nil
}
