package timer

import (
	"context"
	"docdot_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TransitionFunc is called from the driver goroutine after each phase change.
type TransitionFunc func(userID string, tr Transition, s State)

// Driver counts a timer down in the background. It ticks once per interval,
// saves the state on every phase change and stops by itself once the timer is no
// longer running.
type Driver struct {
	userID       string
	store        Store
	interval     time.Duration
	onTransition TransitionFunc
	now          func() time.Time

	mu     sync.Mutex
	timer  *Timer
	active bool
	cancel context.CancelFunc
	done   chan struct{}
}

type DriverOption func(*Driver)

// WithInterval sets the wall-clock time between ticks. Defaults to one second.
func WithInterval(d time.Duration) DriverOption {
	return func(dr *Driver) { dr.interval = d }
}

func WithTransitionFunc(fn TransitionFunc) DriverOption {
	return func(dr *Driver) { dr.onTransition = fn }
}

func WithClock(now func() time.Time) DriverOption {
	return func(dr *Driver) { dr.now = now }
}

func NewDriver(userID string, t *Timer, store Store, opts ...DriverOption) *Driver {
	d := &Driver{
		userID:   userID,
		store:    store,
		interval: time.Second,
		now:      time.Now,
		timer:    t,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start sets the timer running and makes sure a countdown goroutine is active.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.timer.Start()
	d.timer.state.UpdatedAt = d.now()
	if d.active {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.active = true
	d.cancel = cancel
	d.done = done
	go d.run(ctx, done)
}

func (d *Driver) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			d.active = false
			d.mu.Unlock()
			return
		case <-ticker.C:
			if !d.tick(ctx) {
				return
			}
		}
	}
}

// tick reports whether the goroutine should keep going. The decision to stop is
// made under the lock so that a concurrent Start either sees the goroutine as
// inactive or keeps it alive. UpdatedAt is stamped on every counted second so a
// saved Remaining always pairs with the moment it was measured.
func (d *Driver) tick(ctx context.Context) bool {
	d.mu.Lock()
	counted := d.timer.state.Running
	tr, changed := d.timer.Tick()
	if counted {
		d.timer.state.UpdatedAt = d.now()
	}
	snapshot := d.timer.State()
	if !snapshot.Running {
		d.active = false
	}
	keepGoing := d.active
	d.mu.Unlock()

	if changed {
		if d.store != nil {
			if err := d.store.Save(ctx, d.userID, &snapshot); err != nil {
				logger.Log.Warn("Failed to save timer state",
					zap.String("user_id", d.userID),
					zap.String("phase", string(snapshot.Phase)),
					zap.Error(err))
			}
		}
		if d.onTransition != nil {
			d.onTransition(d.userID, tr, snapshot)
		}
	}
	return keepGoing
}

// Stop cancels the countdown and waits for the goroutine to exit. The timer keeps
// its running flag; callers pause it explicitly. Safe to call more than once.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the current countdown goroutine exits. Nil if never started.
func (d *Driver) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// Running reports whether a countdown goroutine is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Do runs fn with exclusive access to the timer and returns the resulting state.
func (d *Driver) Do(fn func(t *Timer)) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.timer)
	d.timer.state.UpdatedAt = d.now()
	return d.timer.State()
}

func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer.State()
}
