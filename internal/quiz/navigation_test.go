package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/math-quiz/internal/question"
)

func TestUntimedFlow(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Strategy: StrategySequential}, t0)
	assert.Equal(t, ScreenLanding, s.Screen)

	require.NoError(t, s.Start(bank, nil, t0))
	assert.Equal(t, ScreenQuestion, s.Screen)
	assert.Equal(t, "Algebra", s.ActiveSubject)
	assert.Nil(t, s.Timer)

	assert.ErrorIs(t, s.Start(bank, nil, t0), ErrInvalidTransition)
	assert.ErrorIs(t, s.BackToSubjects(), ErrInvalidTransition)

	_, err := s.Submit(bank, 1, t0)
	require.NoError(t, err)
	require.NoError(t, s.Next(bank, nil, t0))

	s.Return()
	assert.Equal(t, ScreenLanding, s.Screen)
	assert.Len(t, s.Responses["Algebra"], 1, "landing keeps responses")

	require.NoError(t, s.Start(bank, nil, t0))
	assert.Equal(t, 1, s.CurrentIndex, "position survives a return to landing")
}

func TestActionsRejectedOffQuestionScreen(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{}, t0)

	assert.ErrorIs(t, s.Next(bank, nil, t0), ErrInvalidTransition)
	assert.ErrorIs(t, s.Prev(bank, t0), ErrInvalidTransition)
	assert.ErrorIs(t, s.Goto(bank, 1, t0), ErrInvalidTransition)
	assert.ErrorIs(t, s.Restart(bank, nil, t0), ErrInvalidTransition)
	assert.ErrorIs(t, s.Begin(bank, "Algebra", nil, t0), ErrInvalidTransition)
	_, err := s.Submit(bank, 0, t0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, ScreenLanding, s.Screen)
}

func TestSequentialBoundariesAreNoops(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{}, t0)
	require.NoError(t, s.Start(bank, nil, t0))

	assert.False(t, s.CanPrev())
	require.NoError(t, s.Prev(bank, t0))
	assert.Equal(t, 0, s.CurrentIndex)

	require.NoError(t, s.Next(bank, nil, t0))
	require.NoError(t, s.Next(bank, nil, t0))
	assert.Equal(t, 2, s.CurrentIndex)
	assert.False(t, s.CanNext(bank))
	require.NoError(t, s.Next(bank, nil, t0))
	assert.Equal(t, 2, s.CurrentIndex)
	assert.True(t, s.CanPrev())
}

func TestStartWithNoQuestions(t *testing.T) {
	s := NewSession("s", Options{}, t0)
	require.NoError(t, s.Start(question.Bank{}, nil, t0))
	assert.Equal(t, ScreenQuestion, s.Screen)
	assert.Empty(t, s.ActiveSubject)

	_, err := s.Submit(question.Bank{}, 0, t0)
	assert.ErrorIs(t, err, ErrNoQuestions)
	require.NoError(t, s.Next(question.Bank{}, nil, t0))
}

func TestTimedFlow(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Timed: true, TimerSeconds: 300}, t0)

	require.NoError(t, s.Start(bank, nil, t0))
	assert.Equal(t, ScreenSubjectSelect, s.Screen)
	assert.Nil(t, s.Timer)

	assert.ErrorIs(t, s.Begin(bank, "History", nil, t0), ErrUnknownSubject)
	assert.Equal(t, ScreenSubjectSelect, s.Screen)

	require.NoError(t, s.Begin(bank, "Geometry", nil, t0))
	assert.Equal(t, ScreenQuestion, s.Screen)
	require.NotNil(t, s.Timer)
	assert.Equal(t, t0, s.Timer.StartedAt)

	require.NoError(t, s.BackToSubjects())
	assert.Equal(t, ScreenSubjectSelect, s.Screen)
	assert.Nil(t, s.Timer)

	s.Return()
	assert.Equal(t, ScreenLanding, s.Screen)
}

func TestTimerExpiryBlocksSubmission(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Timed: true, TimerSeconds: 300}, t0)
	require.NoError(t, s.Start(bank, nil, t0))
	require.NoError(t, s.Begin(bank, "Algebra", nil, t0))

	remaining, expired, ok := s.RemainingSeconds(t0.Add(301 * time.Second))
	require.True(t, ok)
	assert.Equal(t, 0, remaining)
	assert.True(t, expired)
	firstExpiry := *s.Timer.ExpiredAt

	_, err := s.Submit(bank, 1, t0.Add(305*time.Second))
	assert.ErrorIs(t, err, ErrTimeExpired)
	assert.Empty(t, s.Responses["Algebra"])
	assert.Equal(t, firstExpiry, *s.Timer.ExpiredAt)

	// advancing restarts the countdown for the new question
	later := t0.Add(310 * time.Second)
	require.NoError(t, s.Next(bank, nil, later))
	remaining, expired, _ = s.RemainingSeconds(later)
	assert.Equal(t, 300, remaining)
	assert.False(t, expired)
	_, err = s.Submit(bank, 0, later)
	assert.NoError(t, err)
}

func TestSubmitExpiresOnFirstPoll(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Timed: true, TimerSeconds: 10}, t0)
	require.NoError(t, s.Start(bank, nil, t0))
	require.NoError(t, s.Begin(bank, "Algebra", nil, t0))

	_, err := s.Submit(bank, 1, t0.Add(11*time.Second))
	assert.ErrorIs(t, err, ErrTimeExpired)
	assert.True(t, s.Timer.Expired)
}

func TestRestartResetsExpiredTimer(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Timed: true, TimerSeconds: 10}, t0)
	require.NoError(t, s.Start(bank, nil, t0))
	require.NoError(t, s.Begin(bank, "Algebra", nil, t0))
	s.RemainingSeconds(t0.Add(20 * time.Second))

	require.NoError(t, s.Restart(bank, nil, t0.Add(21*time.Second)))
	assert.False(t, s.Timer.Expired)
}

func TestRandomStrategyNeverRepeats(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Strategy: StrategyRandom}, t0)
	r := NewRand()
	require.NoError(t, s.Start(bank, r, t0))

	prev := s.CurrentIndex
	for i := 0; i < 200; i++ {
		require.NoError(t, s.Next(bank, r, t0))
		assert.NotEqual(t, prev, s.CurrentIndex)
		assert.Equal(t, s.CurrentIndex, s.LastDrawn["Algebra"])
		prev = s.CurrentIndex
	}
	assert.ErrorIs(t, s.Prev(bank, t0), ErrInvalidTransition)
}

func TestRandomNextAfterGotoSkipsShownQuestion(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Strategy: StrategyRandom}, t0)
	r := &seqRand{vals: []int{0, 1}}
	require.NoError(t, s.Start(bank, r, t0))
	require.Equal(t, 0, s.CurrentIndex)

	require.NoError(t, s.Goto(bank, 2, t0))
	shown := s.CurrentIndex
	require.Equal(t, 2, shown)
	assert.Equal(t, 2, s.LastDrawn["Algebra"])

	require.NoError(t, s.Next(bank, r, t0))
	assert.NotEqual(t, shown, s.CurrentIndex)
	assert.Equal(t, s.CurrentIndex, s.LastDrawn["Algebra"])
}

func TestRandomStrategySingleQuestion(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Strategy: StrategyRandom}, t0)
	r := NewRand()
	require.NoError(t, s.Start(bank, r, t0))
	require.NoError(t, s.SwitchSubject(bank, "Geometry", r, t0))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Next(bank, r, t0))
		assert.Equal(t, 0, s.CurrentIndex)
	}
	assert.False(t, s.CanNext(bank))
}

func TestRandomExclusionPersistsAcrossReturn(t *testing.T) {
	bank := testBank()
	s := NewSession("s", Options{Strategy: StrategyRandom}, t0)
	r := &seqRand{vals: []int{1, 0}}
	require.NoError(t, s.Start(bank, r, t0))
	first := s.CurrentIndex

	s.Return()
	require.NoError(t, s.Start(bank, r, t0))
	assert.Equal(t, first, s.CurrentIndex, "returning does not redraw")

	require.NoError(t, s.Next(bank, r, t0))
	assert.NotEqual(t, first, s.CurrentIndex)
}
