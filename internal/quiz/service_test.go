package quiz

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/math-quiz/internal/question"
)

// stubBank is a BankSource that serves a fixed bank and swaps in next on Reload.
type stubBank struct {
	mu      sync.Mutex
	bank    question.Bank
	next    *question.Bank
	notice  error
	reloads int
}

func (b *stubBank) Bank(context.Context) question.Bank {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bank
}

func (b *stubBank) Reload(context.Context) (question.Bank, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reloads++
	if b.next != nil {
		b.bank = *b.next
	}
	return b.bank, b.notice
}

func (b *stubBank) Notice() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice
}

type recordingObserver struct {
	created int
	actions []string
	answers []bool
}

func (o *recordingObserver) SessionCreated() { o.created++ }
func (o *recordingObserver) ActionApplied(action, outcome string) {
	o.actions = append(o.actions, action+":"+outcome)
}
func (o *recordingObserver) AnswerRecorded(_ string, correct bool) {
	o.answers = append(o.answers, correct)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time          { return c.now }
func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T, defaults Options) (*Service, *stubBank, *fixedClock, *recordingObserver) {
	t.Helper()
	bank := &stubBank{bank: testBank()}
	clock := &fixedClock{now: t0}
	obs := &recordingObserver{}
	svc := NewService(bank, nil, NewMemoryStateStore(0), ServiceOptions{
		Defaults: defaults,
		Now:      clock.Now,
		Rand:     &seqRand{vals: []int{0}},
		Observer: obs,
	}, zerolog.Nop())
	return svc, bank, clock, obs
}

func apply(t *testing.T, svc *Service, id string, a Action) View {
	t.Helper()
	v, err := svc.Apply(context.Background(), id, a)
	require.NoError(t, err)
	return v
}

func TestServiceSequentialFlow(t *testing.T) {
	svc, _, _, obs := newTestService(t, Options{})
	ctx := context.Background()

	v, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ScreenLanding, v.Screen)
	assert.Equal(t, StrategySequential, v.Options.Strategy)
	assert.Equal(t, []string{"Algebra", "Geometry"}, subjectNames(v.Subjects))
	id := v.SessionID

	v = apply(t, svc, id, Action{Type: ActionStart})
	require.NotNil(t, v.Question)
	assert.Equal(t, ScreenQuestion, v.Screen)
	assert.Equal(t, "Algebra", v.Question.Subject)
	assert.Equal(t, 1, v.Question.Number)
	assert.Equal(t, 3, v.Question.Total)
	assert.False(t, v.Question.CanPrev)
	assert.True(t, v.Question.CanNext)
	assert.Nil(t, v.Timer)

	v = apply(t, svc, id, Action{Type: ActionSubmit, Choice: intPtr(1)})
	require.NotNil(t, v.Feedback)
	assert.True(t, v.Feedback.IsCorrect)
	assert.Equal(t, 1, *v.Question.SavedChoice)
	assert.Equal(t, 1, v.Progress.Answered)
	assert.Equal(t, 1, v.Progress.Correct)

	v = apply(t, svc, id, Action{Type: ActionNext})
	assert.Equal(t, 1, v.Question.Index)
	assert.Nil(t, v.Feedback)
	assert.Nil(t, v.Question.SavedChoice)

	v = apply(t, svc, id, Action{Type: ActionGoto, Index: intPtr(99)})
	assert.Equal(t, 2, v.Question.Index)
	assert.False(t, v.Question.CanNext)

	v = apply(t, svc, id, Action{Type: ActionPrev})
	assert.Equal(t, 1, v.Question.Index)

	assert.Equal(t, 1, obs.created)
	assert.Equal(t, []bool{true}, obs.answers)
	assert.Contains(t, obs.actions, "submit:ok")
}

func TestServiceRejectedActionKeepsState(t *testing.T) {
	svc, _, _, obs := newTestService(t, Options{})
	ctx := context.Background()
	v, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	id := v.SessionID
	apply(t, svc, id, Action{Type: ActionStart})

	v, err = svc.Apply(ctx, id, Action{Type: ActionSubmit, Choice: intPtr(7)})
	assert.ErrorIs(t, err, ErrChoiceOutOfRange)
	require.NotNil(t, v.Question)
	assert.Nil(t, v.Question.SavedChoice)
	assert.Equal(t, 0, v.Progress.Answered)
	assert.Contains(t, obs.actions, "submit:choice_out_of_range")

	_, err = svc.Apply(ctx, id, Action{Type: ActionSubmit})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Apply(ctx, id, Action{Type: "dance"})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = svc.Apply(ctx, id, Action{Type: ActionBegin, Subject: "Algebra"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestServiceTimedFlowExpires(t *testing.T) {
	svc, _, clock, _ := newTestService(t, Options{Timed: true, TimerSeconds: 30})
	ctx := context.Background()
	v, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	id := v.SessionID

	v = apply(t, svc, id, Action{Type: ActionStart})
	assert.Equal(t, ScreenSubjectSelect, v.Screen)
	assert.Nil(t, v.Question)

	v = apply(t, svc, id, Action{Type: ActionBegin, Subject: "Geometry"})
	require.NotNil(t, v.Timer)
	assert.Equal(t, 30, v.Timer.RemainingSeconds)

	clock.Advance(31 * time.Second)
	v, err = svc.View(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Timer.Expired)
	assert.Equal(t, 0, v.Timer.RemainingSeconds)

	_, err = svc.Apply(ctx, id, Action{Type: ActionSubmit, Choice: intPtr(0)})
	assert.ErrorIs(t, err, ErrTimeExpired)

	v = apply(t, svc, id, Action{Type: ActionBackToSubjects})
	assert.Equal(t, ScreenSubjectSelect, v.Screen)
	assert.Nil(t, v.Timer)
}

func TestServiceRefreshClearsResponses(t *testing.T) {
	svc, bank, _, _ := newTestService(t, Options{})
	ctx := context.Background()
	v, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	id := v.SessionID
	apply(t, svc, id, Action{Type: ActionStart})
	apply(t, svc, id, Action{Type: ActionGoto, Index: intPtr(2)})
	apply(t, svc, id, Action{Type: ActionSubmit, Choice: intPtr(2)})

	shrunk := question.Bank{Subjects: []question.Subject{
		{Name: "Algebra", Questions: []question.Question{q(0, "a", "b")}},
	}}
	bank.next = &shrunk

	v = apply(t, svc, id, Action{Type: ActionRefresh})
	assert.Equal(t, 1, bank.reloads)
	assert.Equal(t, 0, v.Question.Index)
	assert.Equal(t, 1, v.Question.Total)
	assert.Equal(t, 0, v.Progress.Answered)
}

func TestServiceCreateValidatesOverrides(t *testing.T) {
	svc, _, _, _ := newTestService(t, Options{})
	bad := Strategy("shuffle")
	_, err := svc.Create(context.Background(), Overrides{Strategy: &bad})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	timed := true
	_, err = svc.Create(context.Background(), Overrides{Timed: &timed})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	secs := 20
	v, err := svc.Create(context.Background(), Overrides{Timed: &timed, TimerSeconds: &secs})
	require.NoError(t, err)
	assert.Equal(t, Options{Strategy: StrategySequential, Timed: true, TimerSeconds: 20}, v.Options)
}

func TestServiceSessionsAreIsolated(t *testing.T) {
	svc, _, _, _ := newTestService(t, Options{})
	ctx := context.Background()
	a, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	b, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)

	apply(t, svc, a.SessionID, Action{Type: ActionStart})
	apply(t, svc, a.SessionID, Action{Type: ActionSubmit, Choice: intPtr(1)})

	v, err := svc.View(ctx, b.SessionID)
	require.NoError(t, err)
	assert.Equal(t, ScreenLanding, v.Screen)
	for _, s := range v.Subjects {
		assert.Zero(t, s.Answered)
	}
}

func TestServiceUnknownAndDeletedSession(t *testing.T) {
	svc, _, _, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.View(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	v, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, v.SessionID))
	_, err = svc.Apply(ctx, v.SessionID, Action{Type: ActionStart})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// gatedBank blocks the next Bank call until released, holding a transition
// open inside its session lock.
type gatedBank struct {
	*stubBank
	armed   chan struct{}
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBank) Bank(ctx context.Context) question.Bank {
	select {
	case <-b.armed:
		close(b.entered)
		<-b.release
	default:
	}
	return b.stubBank.Bank(ctx)
}

func TestServiceDeleteWaitsForTransitionInFlight(t *testing.T) {
	bank := &gatedBank{
		stubBank: &stubBank{bank: testBank()},
		armed:    make(chan struct{}, 1),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	svc := NewService(bank, nil, NewMemoryStateStore(0), ServiceOptions{
		Now: func() time.Time { return t0 },
	}, zerolog.Nop())
	ctx := context.Background()

	v, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	id := v.SessionID

	bank.armed <- struct{}{}
	applied := make(chan error, 1)
	go func() {
		_, err := svc.Apply(ctx, id, Action{Type: ActionStart})
		applied <- err
	}()
	<-bank.entered

	deleted := make(chan error, 1)
	go func() { deleted <- svc.Delete(ctx, id) }()

	select {
	case <-deleted:
		t.Fatal("delete finished while a transition held the session")
	case <-time.After(30 * time.Millisecond):
	}

	close(bank.release)
	require.NoError(t, <-applied)
	require.NoError(t, <-deleted)

	_, err = svc.View(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestServiceImages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "img", "tri angle.png"), []byte("png"), 0o644))

	withImages := question.Bank{Subjects: []question.Subject{
		{Name: "Geometry", Questions: []question.Question{
			{Prompt: "p", Image: "img/tri angle.png", Choices: []string{"a", "b"}, Answer: intPtr(0)},
			{Prompt: "p", Image: "img/missing.png", Choices: []string{"a", "b"}, Answer: intPtr(0)},
		}},
	}}
	svc := NewService(&stubBank{bank: withImages}, question.NewAssets(root), NewMemoryStateStore(0), ServiceOptions{
		Now: (&fixedClock{now: t0}).Now,
	}, zerolog.Nop())
	ctx := context.Background()

	v, err := svc.Create(ctx, Overrides{})
	require.NoError(t, err)
	v = apply(t, svc, v.SessionID, Action{Type: ActionStart})
	assert.Equal(t, "/v1/images/img/tri%20angle.png", v.Question.ImageURL)
	assert.Equal(t, filepath.Join(root, "img", "tri angle.png"), v.Question.ImageFile)
	assert.Empty(t, v.Question.ImageError)

	v = apply(t, svc, v.SessionID, Action{Type: ActionNext})
	assert.Empty(t, v.Question.ImageURL)
	assert.NotEmpty(t, v.Question.ImageError)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "ok", ErrorCode(nil))
	assert.Equal(t, "time_expired", ErrorCode(ErrTimeExpired))
	assert.Equal(t, "malformed_question", ErrorCode(&question.MalformedQuestionError{Subject: "A", Problem: "x"}))
	assert.Equal(t, "internal_error", ErrorCode(assert.AnError))
}

func subjectNames(subjects []SubjectView) []string {
	names := make([]string, 0, len(subjects))
	for _, s := range subjects {
		names = append(names, s.Name)
	}
	return names
}
