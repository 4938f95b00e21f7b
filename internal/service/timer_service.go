package service

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/timer"
	"docdot_backend/internal/util"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	TimerStart = "start"
	TimerPause = "pause"
	TimerSkip  = "skip"
	TimerReset = "reset"
	TimerSync  = "sync"
)

type StudyTimeRecorder interface {
	AddStudyTime(ctx context.Context, userID string, minutes int) error
}

// TimerService runs one countdown per user on the server. State is saved through
// the store after every action and phase change, so a timer started on one device
// can be read from another.
type TimerService struct {
	Store    timer.Store
	Study    StudyTimeRecorder
	Events   EventPublisher
	interval time.Duration
	now      func() time.Time

	// base outlives requests; drivers stop when it is cancelled.
	base context.Context

	mu      sync.Mutex
	cfg     timer.Config
	drivers map[string]*timer.Driver
}

func NewTimerService(base context.Context, store timer.Store, study StudyTimeRecorder, cfg timer.Config) *TimerService {
	return &TimerService{
		Store:    store,
		Study:    study,
		interval: time.Second,
		now:      time.Now,
		base:     base,
		cfg:      cfg,
		drivers:  make(map[string]*timer.Driver),
	}
}

// TimerConfigFrom converts the minute based config section.
func TimerConfigFrom(c config.TimerConfig) timer.Config {
	return timer.Config{
		Study:          time.Duration(c.StudyMinutes) * time.Minute,
		ShortBreak:     time.Duration(c.ShortBreakMinutes) * time.Minute,
		LongBreak:      time.Duration(c.LongBreakMinutes) * time.Minute,
		LongBreakEvery: c.LongBreakEvery,
		AutoStart:      c.AutoStart,
	}
}

// UpdateConfig applies to timers loaded after the call.
func (s *TimerService) UpdateConfig(cfg timer.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// driver returns the user's driver, restoring it from the store on first use.
// A timer saved as running resumes after the time it missed is applied. Callers
// hold s.mu.
func (s *TimerService) driver(ctx context.Context, userID string) (*timer.Driver, error) {
	if d, ok := s.drivers[userID]; ok {
		return d, nil
	}

	saved, err := s.Store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load timer: %w", err)
	}

	var t *timer.Timer
	var missed []timer.Transition
	if saved == nil {
		t = timer.New(s.cfg)
	} else {
		t = timer.Restore(s.cfg, *saved)
		if saved.Running && !saved.UpdatedAt.IsZero() {
			missed = t.Advance(s.now().Sub(saved.UpdatedAt))
		}
	}

	d := timer.NewDriver(userID, t, s.Store,
		timer.WithInterval(s.interval),
		timer.WithClock(s.now),
		timer.WithTransitionFunc(s.onTransition),
	)
	s.drivers[userID] = d

	for _, tr := range missed {
		s.onTransition(userID, tr, d.State())
	}
	if d.State().Running {
		d.Start(s.base)
	}
	return d, nil
}

func (s *TimerService) onTransition(userID string, tr timer.Transition, st timer.State) {
	monitoring.RecordTimerTransition(string(tr.To), tr.Skipped)
	s.publish(userID, st)
	if tr.StudyMinutes <= 0 || s.Study == nil {
		return
	}
	if err := s.Study.AddStudyTime(s.base, userID, tr.StudyMinutes); err != nil {
		logger.Log.Error("Failed to record study time", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *TimerService) Get(ctx context.Context, userID string) (timer.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.driver(ctx, userID)
	if err != nil {
		return timer.State{}, err
	}
	return d.State(), nil
}

// Apply runs one user action. remaining is only read by sync.
func (s *TimerService) Apply(ctx context.Context, userID, action string, remaining *int) (timer.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.driver(ctx, userID)
	if err != nil {
		return timer.State{}, err
	}

	var st timer.State
	switch action {
	case TimerStart:
		d.Start(s.base)
		st = d.State()
	case TimerPause:
		d.Stop()
		st = d.Do(func(t *timer.Timer) { t.Pause() })
	case TimerReset:
		d.Stop()
		st = d.Do(func(t *timer.Timer) { t.Reset() })
	case TimerSkip:
		var tr timer.Transition
		st = d.Do(func(t *timer.Timer) { tr = t.Skip() })
		if st.Running {
			d.Start(s.base)
		} else {
			d.Stop()
		}
		s.onTransition(userID, tr, st)
	case TimerSync:
		if remaining == nil {
			return timer.State{}, fmt.Errorf("%w: remainingSeconds is required", util.ErrInvalidTimerEvent)
		}
		st = d.Do(func(t *timer.Timer) { t.Sync(time.Duration(*remaining) * time.Second) })
	default:
		return timer.State{}, util.ErrInvalidTimerEvent
	}

	if err := s.Store.Save(ctx, userID, &st); err != nil {
		return st, fmt.Errorf("save timer: %w", err)
	}
	if action != TimerSkip {
		s.publish(userID, st)
	}
	return st, nil
}

// Discard forgets the user's timer, including the session count, and returns the
// state a new timer starts from.
func (s *TimerService) Discard(ctx context.Context, userID string) (timer.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.drivers[userID]; ok {
		d.Stop()
		delete(s.drivers, userID)
	}
	if err := s.Store.Delete(ctx, userID); err != nil {
		return timer.State{}, fmt.Errorf("delete timer: %w", err)
	}

	st := timer.New(s.cfg).State()
	s.publish(userID, st)
	return st, nil
}

func (s *TimerService) publish(userID string, st timer.State) {
	if s.Events != nil {
		s.Events.PublishUser(userID, Event{Type: EventTimerUpdate, Data: st})
	}
}

// Shutdown stops every countdown and saves the final states.
func (s *TimerService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, d := range s.drivers {
		d.Stop()
		st := d.State()
		if err := s.Store.Save(ctx, userID, &st); err != nil {
			logger.Log.Warn("Failed to save timer on shutdown", zap.String("user_id", userID), zap.Error(err))
		}
	}
	s.drivers = make(map[string]*timer.Driver)
}

// Evict drops idle timers from memory; their state stays in the store.
func (s *TimerService) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for userID, d := range s.drivers {
		if !d.Running() {
			delete(s.drivers, userID)
			n++
		}
	}
	return n
}
