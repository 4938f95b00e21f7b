// Package timer implements the Pomodoro study timer.
//
// A Timer alternates between a study phase and a break phase. The countdown only
// moves while the timer is running. When a study phase ends the break is long if the
// session that just ended is a multiple of Config.LongBreakEvery, otherwise short.
// Skipping a phase behaves exactly like letting it run out.
package timer

import (
	"encoding/json"
	"time"
)

type Phase string

const (
	Study      Phase = "study"
	ShortBreak Phase = "short_break"
	LongBreak  Phase = "long_break"
)

func (p Phase) IsBreak() bool {
	return p == ShortBreak || p == LongBreak
}

type Config struct {
	Study          time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakEvery int
	// AutoStart keeps the countdown running across phase changes.
	AutoStart bool
}

func DefaultConfig() Config {
	return Config{
		Study:          25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakEvery: 4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Study <= 0 {
		c.Study = d.Study
	}
	if c.ShortBreak <= 0 {
		c.ShortBreak = d.ShortBreak
	}
	if c.LongBreak <= 0 {
		c.LongBreak = d.LongBreak
	}
	if c.LongBreakEvery <= 0 {
		c.LongBreakEvery = d.LongBreakEvery
	}
	return c
}

func (c Config) length(p Phase) time.Duration {
	switch p {
	case ShortBreak:
		return c.ShortBreak
	case LongBreak:
		return c.LongBreak
	default:
		return c.Study
	}
}

// State is the persisted part of a timer.
type State struct {
	Phase     Phase
	Remaining time.Duration
	Running   bool
	// Session is the 1-based number of the current (or next) study session.
	Session int
	// TotalStudyMinutes counts completed study phases only.
	TotalStudyMinutes int
	UpdatedAt         time.Time
}

type stateJSON struct {
	Minutes        int       `json:"minutes"`
	Seconds        int       `json:"seconds"`
	IsRunning      bool      `json:"isRunning"`
	IsBreak        bool      `json:"isBreak"`
	Phase          Phase     `json:"phase"`
	Session        int       `json:"session"`
	TotalStudyTime int       `json:"totalStudyTime"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

func (s State) MarshalJSON() ([]byte, error) {
	secs := int(s.Remaining / time.Second)
	return json.Marshal(stateJSON{
		Minutes:        secs / 60,
		Seconds:        secs % 60,
		IsRunning:      s.Running,
		IsBreak:        s.Phase.IsBreak(),
		Phase:          s.Phase,
		Session:        s.Session,
		TotalStudyTime: s.TotalStudyMinutes,
		UpdatedAt:      s.UpdatedAt,
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	phase := raw.Phase
	if phase == "" {
		// Older clients only send isBreak.
		phase = Study
		if raw.IsBreak {
			phase = ShortBreak
		}
	}
	*s = State{
		Phase:             phase,
		Remaining:         time.Duration(raw.Minutes)*time.Minute + time.Duration(raw.Seconds)*time.Second,
		Running:           raw.IsRunning,
		Session:           raw.Session,
		TotalStudyMinutes: raw.TotalStudyTime,
		UpdatedAt:         raw.UpdatedAt,
	}
	return nil
}

// Transition describes one phase change.
type Transition struct {
	From Phase
	To   Phase
	// Session is the study session that ended, or the one that is starting after a break.
	Session int
	// StudyMinutes is what the transition added to the study total.
	StudyMinutes int
	// Skipped is set when the phase was ended early.
	Skipped bool
}

// Timer is not safe for concurrent use; Driver serialises access to one.
type Timer struct {
	cfg   Config
	state State
}

// New returns a paused timer at the start of the first study session.
func New(cfg Config) *Timer {
	cfg = cfg.withDefaults()
	return &Timer{
		cfg: cfg,
		state: State{
			Phase:     Study,
			Remaining: cfg.Study,
			Session:   1,
		},
	}
}

// Restore continues from a saved state. Invalid fields fall back to a fresh timer's.
func Restore(cfg Config, s State) *Timer {
	t := New(cfg)
	switch s.Phase {
	case Study, ShortBreak, LongBreak:
	default:
		s.Phase = Study
	}
	if s.Session < 1 {
		s.Session = 1
	}
	if s.TotalStudyMinutes < 0 {
		s.TotalStudyMinutes = 0
	}
	if s.Remaining <= 0 || s.Remaining > t.cfg.length(s.Phase) {
		s.Remaining = t.cfg.length(s.Phase)
	}
	t.state = s
	return t
}

func (t *Timer) Config() Config { return t.cfg }

func (t *Timer) State() State { return t.state }

func (t *Timer) Start() { t.state.Running = true }

func (t *Timer) Pause() { t.state.Running = false }

// Reset pauses and rewinds the current phase to its full length.
func (t *Timer) Reset() {
	t.state.Running = false
	t.state.Remaining = t.cfg.length(t.state.Phase)
}

// Tick advances the countdown by one second.
func (t *Timer) Tick() (Transition, bool) {
	if !t.state.Running {
		return Transition{}, false
	}
	t.state.Remaining -= time.Second
	if t.state.Remaining > 0 {
		return Transition{}, false
	}
	return t.expire(false), true
}

// Advance applies d worth of whole-second ticks.
func (t *Timer) Advance(d time.Duration) []Transition {
	var out []Transition
	for n := int(d / time.Second); n > 0 && t.state.Running; n-- {
		if tr, ok := t.Tick(); ok {
			out = append(out, tr)
		}
	}
	return out
}

// Skip ends the current phase immediately, whether running or not.
func (t *Timer) Skip() Transition {
	return t.expire(true)
}

// Sync accepts a client-side countdown for the current phase. Values outside the
// phase length are ignored.
func (t *Timer) Sync(remaining time.Duration) {
	if remaining <= 0 || remaining > t.cfg.length(t.state.Phase) {
		return
	}
	t.state.Remaining = remaining.Truncate(time.Second)
}

func (t *Timer) expire(skipped bool) Transition {
	tr := Transition{From: t.state.Phase, Session: t.state.Session, Skipped: skipped}

	if t.state.Phase == Study {
		minutes := int(t.cfg.Study / time.Minute)
		if t.state.Session%t.cfg.LongBreakEvery == 0 {
			tr.To = LongBreak
		} else {
			tr.To = ShortBreak
		}
		tr.StudyMinutes = minutes
		t.state.TotalStudyMinutes += minutes
		t.state.Session++
	} else {
		tr.To = Study
	}

	t.state.Phase = tr.To
	t.state.Remaining = t.cfg.length(tr.To)
	t.state.Running = t.cfg.AutoStart
	return tr
}
