package timer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	tm := New(Config{})
	s := tm.State()

	assert.Equal(t, Study, s.Phase)
	assert.Equal(t, 25*time.Minute, s.Remaining)
	assert.False(t, s.Running)
	assert.Equal(t, 1, s.Session)
	assert.Zero(t, s.TotalStudyMinutes)
}

func TestTick_FullStudySessionEntersBreak(t *testing.T) {
	tm := New(DefaultConfig())
	tm.Start()

	var transitions []Transition
	for i := 0; i < 1500; i++ {
		if tr, ok := tm.Tick(); ok {
			transitions = append(transitions, tr)
		}
	}

	require.Len(t, transitions, 1)
	assert.Equal(t, Study, transitions[0].From)
	assert.Equal(t, ShortBreak, transitions[0].To)
	assert.False(t, transitions[0].Skipped)

	s := tm.State()
	assert.True(t, s.Phase.IsBreak())
	assert.Equal(t, 25, s.TotalStudyMinutes)
	assert.Equal(t, 5*time.Minute, s.Remaining)
	assert.Equal(t, 2, s.Session)
}

func TestTick_OneSecondShortDoesNotTransition(t *testing.T) {
	tm := New(DefaultConfig())
	tm.Start()

	assert.Empty(t, tm.Advance(1499*time.Second))
	assert.Equal(t, Study, tm.State().Phase)
	assert.Equal(t, time.Second, tm.State().Remaining)
}

func TestTick_PausedDoesNotAdvance(t *testing.T) {
	tm := New(DefaultConfig())

	for i := 0; i < 100; i++ {
		_, ok := tm.Tick()
		assert.False(t, ok)
	}
	assert.Equal(t, 25*time.Minute, tm.State().Remaining)

	tm.Start()
	tm.Advance(10 * time.Second)
	tm.Pause()
	tm.Advance(time.Minute)

	assert.Equal(t, 25*time.Minute-10*time.Second, tm.State().Remaining)
}

func TestSkip_StudyWithTimeLeft(t *testing.T) {
	tm := New(DefaultConfig())
	tm.Start()
	tm.Advance(15 * time.Minute)
	require.Equal(t, 10*time.Minute, tm.State().Remaining)

	tr := tm.Skip()

	assert.True(t, tr.Skipped)
	assert.Equal(t, ShortBreak, tr.To)
	s := tm.State()
	assert.Equal(t, ShortBreak, s.Phase)
	assert.Equal(t, 5*time.Minute, s.Remaining)
	assert.Equal(t, 25, s.TotalStudyMinutes)
}

func TestSkip_MatchesNaturalExpiry(t *testing.T) {
	natural := New(DefaultConfig())
	natural.Start()
	natural.Advance(25 * time.Minute)

	skipped := New(DefaultConfig())
	skipped.Start()
	skipped.Skip()

	assert.Equal(t, natural.State(), skipped.State())
}

func TestLongBreakEveryFourthSession(t *testing.T) {
	tm := New(DefaultConfig())

	var breaks []Phase
	for i := 0; i < 8; i++ {
		tr := tm.Skip()
		require.Equal(t, Study, tr.From)
		breaks = append(breaks, tr.To)
		back := tm.Skip()
		require.Equal(t, Study, back.To)
	}

	assert.Equal(t, []Phase{
		ShortBreak, ShortBreak, ShortBreak, LongBreak,
		ShortBreak, ShortBreak, ShortBreak, LongBreak,
	}, breaks)
	assert.Equal(t, 9, tm.State().Session)
	assert.Equal(t, 200, tm.State().TotalStudyMinutes)
}

func TestBreakExpiryReturnsToStudy(t *testing.T) {
	tm := New(Config{AutoStart: true})
	tm.Start()
	tm.Advance(25 * time.Minute)
	require.Equal(t, ShortBreak, tm.State().Phase)
	require.True(t, tm.State().Running)

	trs := tm.Advance(5 * time.Minute)

	require.Len(t, trs, 1)
	assert.Equal(t, Study, trs[0].To)
	assert.Zero(t, trs[0].StudyMinutes)
	assert.Equal(t, 25*time.Minute, tm.State().Remaining)
	assert.Equal(t, 25, tm.State().TotalStudyMinutes)
}

func TestTransitionPausesWithoutAutoStart(t *testing.T) {
	tm := New(DefaultConfig())
	tm.Start()

	trs := tm.Advance(40 * time.Minute)

	assert.Len(t, trs, 1)
	assert.False(t, tm.State().Running)
	assert.Equal(t, 5*time.Minute, tm.State().Remaining)
}

func TestReset(t *testing.T) {
	tm := New(DefaultConfig())
	tm.Start()
	tm.Advance(25 * time.Minute)
	tm.Start()
	tm.Advance(2 * time.Minute)

	tm.Reset()

	s := tm.State()
	assert.False(t, s.Running)
	assert.Equal(t, ShortBreak, s.Phase)
	assert.Equal(t, 5*time.Minute, s.Remaining)
	assert.Equal(t, 25, s.TotalStudyMinutes)
}

func TestSync(t *testing.T) {
	tm := New(DefaultConfig())

	tm.Sync(12*time.Minute + 300*time.Millisecond)
	assert.Equal(t, 12*time.Minute, tm.State().Remaining)

	tm.Sync(time.Hour)
	assert.Equal(t, 12*time.Minute, tm.State().Remaining)

	tm.Sync(-time.Second)
	assert.Equal(t, 12*time.Minute, tm.State().Remaining)
}

func TestRestore(t *testing.T) {
	cfg := DefaultConfig()

	tm := Restore(cfg, State{Phase: LongBreak, Remaining: 3 * time.Minute, Session: 5, TotalStudyMinutes: 100})
	assert.Equal(t, LongBreak, tm.State().Phase)
	assert.Equal(t, 3*time.Minute, tm.State().Remaining)
	assert.Equal(t, 5, tm.State().Session)

	bad := Restore(cfg, State{Phase: "nap", Remaining: -1, Session: 0})
	assert.Equal(t, Study, bad.State().Phase)
	assert.Equal(t, 25*time.Minute, bad.State().Remaining)
	assert.Equal(t, 1, bad.State().Session)
}

func TestState_JSON(t *testing.T) {
	s := State{
		Phase:             LongBreak,
		Remaining:         14*time.Minute + 7*time.Second,
		Running:           true,
		Session:           5,
		TotalStudyMinutes: 100,
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.EqualValues(t, 14, fields["minutes"])
	assert.EqualValues(t, 7, fields["seconds"])
	assert.Equal(t, true, fields["isRunning"])
	assert.Equal(t, true, fields["isBreak"])
	assert.Equal(t, "long_break", fields["phase"])
	assert.EqualValues(t, 5, fields["session"])
	assert.EqualValues(t, 100, fields["totalStudyTime"])

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Phase, back.Phase)
	assert.Equal(t, s.Remaining, back.Remaining)
	assert.Equal(t, s.Session, back.Session)
}

func TestState_UnmarshalLegacyBreakFlag(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`{"minutes":4,"seconds":30,"isBreak":true,"session":2}`), &s))
	assert.Equal(t, ShortBreak, s.Phase)
	assert.Equal(t, 4*time.Minute+30*time.Second, s.Remaining)
}
