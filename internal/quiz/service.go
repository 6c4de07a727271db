package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/math-quiz/internal/question"
	httperrors "github.com/gokatarajesh/math-quiz/pkg/http/errors"
)

// BankSource is the question store as seen by sessions.
type BankSource interface {
	Bank(ctx context.Context) question.Bank
	Reload(ctx context.Context) (question.Bank, error)
	Notice() error
}

// Observer receives session events (metrics).
type Observer interface {
	SessionCreated()
	ActionApplied(action, outcome string)
	AnswerRecorded(subject string, correct bool)
}

// ServiceOptions configures the quiz service.
type ServiceOptions struct {
	Defaults     Options
	ImageBaseURL string
	Now          func() time.Time
	Rand         Rand
	Observer     Observer
}

// Overrides adjust the default options for one new session.
type Overrides struct {
	Strategy     *Strategy `json:"strategy,omitempty"`
	Timed        *bool     `json:"timed,omitempty"`
	TimerSeconds *int      `json:"timer_seconds,omitempty"`
}

// Service applies user actions to stored sessions and renders views.
type Service struct {
	bank         BankSource
	assets       *question.Assets
	states       StateStore
	defaults     Options
	imageBaseURL string
	now          func() time.Time
	rand         Rand
	observer     Observer
	logger       zerolog.Logger
}

// NewService creates a quiz service. assets may be nil when images are not served.
func NewService(bank BankSource, assets *question.Assets, states StateStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = NewRand()
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = "/v1/images/"
	}
	if !opts.Defaults.Strategy.Valid() {
		opts.Defaults.Strategy = StrategySequential
	}
	return &Service{
		bank:         bank,
		assets:       assets,
		states:       states,
		defaults:     opts.Defaults,
		imageBaseURL: opts.ImageBaseURL,
		now:          opts.Now,
		rand:         opts.Rand,
		observer:     opts.Observer,
		logger:       logger.With().Str("component", "quiz_service").Logger(),
	}
}

// Defaults returns the options new sessions start with.
func (s *Service) Defaults() Options {
	return s.defaults
}

// Create starts a new session on the landing screen.
func (s *Service) Create(ctx context.Context, o Overrides) (View, error) {
	opts, err := s.resolveOptions(o)
	if err != nil {
		return View{}, err
	}

	now := s.now()
	sess := NewSession(uuid.NewString(), opts, now)
	if err := s.states.Put(ctx, sess); err != nil {
		return View{}, fmt.Errorf("store session: %w", err)
	}
	if s.observer != nil {
		s.observer.SessionCreated()
	}

	s.logger.Info().
		Str("session_id", sess.ID).
		Str("strategy", string(opts.Strategy)).
		Bool("timed", opts.Timed).
		Msg("session created")

	return s.render(sess, s.bank.Bank(ctx), now), nil
}

// View renders a session. Polling may mark the running timer expired, so the
// session is written back.
func (s *Service) View(ctx context.Context, id string) (View, error) {
	var view View
	err := s.withSession(ctx, id, func(sess *Session, bank question.Bank, now time.Time) error {
		view = s.render(sess, bank, now)
		return nil
	})
	return view, err
}

// Apply performs one action. When the action is rejected the returned view
// still reflects the (unchanged) session, so callers can show the message
// next to the current screen.
func (s *Service) Apply(ctx context.Context, id string, action Action) (View, error) {
	var view View
	err := s.withSession(ctx, id, func(sess *Session, bank question.Bank, now time.Time) error {
		actErr := s.apply(ctx, sess, &bank, action, now)
		view = s.render(sess, bank, now)
		return actErr
	})

	outcome := "ok"
	if err != nil {
		outcome = ErrorCode(err)
	}
	if s.observer != nil {
		s.observer.ActionApplied(action.Type, outcome)
	}
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		s.logger.Debug().Err(err).Str("session_id", id).Str("action", action.Type).Msg("action rejected")
	}
	return view, err
}

// Delete forgets a session. It waits for any transition in flight, which
// would otherwise write the session back after it was removed.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock, err := s.states.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id).Msg("failed to release session lock")
		}
	}()

	if err := s.states.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// Bank returns the current question bank.
func (s *Service) Bank(ctx context.Context) question.Bank {
	return s.bank.Bank(ctx)
}

// Notice returns the load problem behind the current bank, if any.
func (s *Service) Notice() error {
	return s.bank.Notice()
}

// Reload forces a bank reload. Sessions are unaffected until they next act.
func (s *Service) Reload(ctx context.Context) (question.Bank, error) {
	return s.bank.Reload(ctx)
}

func (s *Service) apply(ctx context.Context, sess *Session, bank *question.Bank, a Action, now time.Time) error {
	switch a.Type {
	case ActionStart:
		return sess.Start(*bank, s.rand, now)
	case ActionBegin:
		if a.Subject == "" {
			return fmt.Errorf("%w: subject", ErrMissingField)
		}
		return sess.Begin(*bank, a.Subject, s.rand, now)
	case ActionSelectSubject:
		if a.Subject == "" {
			return fmt.Errorf("%w: subject", ErrMissingField)
		}
		return sess.SwitchSubject(*bank, a.Subject, s.rand, now)
	case ActionGoto:
		if a.Index == nil {
			return fmt.Errorf("%w: index", ErrMissingField)
		}
		return sess.Goto(*bank, *a.Index, now)
	case ActionNext:
		return sess.Next(*bank, s.rand, now)
	case ActionPrev:
		return sess.Prev(*bank, now)
	case ActionSubmit:
		if a.Choice == nil {
			return fmt.Errorf("%w: choice", ErrMissingField)
		}
		fb, err := sess.Submit(*bank, *a.Choice, now)
		if err != nil {
			var malformed *question.MalformedQuestionError
			if errors.As(err, &malformed) {
				s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("submit on malformed question")
			}
			return err
		}
		if s.observer != nil {
			s.observer.AnswerRecorded(fb.Subject, fb.IsCorrect)
		}
		return nil
	case ActionRestart:
		return sess.Restart(*bank, s.rand, now)
	case ActionReturn:
		sess.Return()
		return nil
	case ActionBackToSubjects:
		return sess.BackToSubjects()
	case ActionRefresh:
		reloaded, err := s.bank.Reload(ctx)
		*bank = reloaded
		sess.ClearResponses()
		if _, ok := reloaded.Subject(sess.ActiveSubject); !ok {
			sess.ActiveSubject = ""
			sess.CurrentIndex = 0
		} else {
			sess.SetIndex(reloaded, sess.CurrentIndex)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("refresh fell back")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}

// withSession runs fn under the session lock and writes the session back
// whether or not fn failed.
func (s *Service) withSession(ctx context.Context, id string, fn func(*Session, question.Bank, time.Time) error) error {
	unlock, err := s.states.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id).Msg("failed to release session lock")
		}
	}()

	sess, err := s.states.Get(ctx, id)
	if err != nil {
		return err
	}

	bank := s.bank.Bank(ctx)
	now := s.now()
	fnErr := fn(sess, bank, now)

	sess.UpdatedAt = now
	if err := s.states.Put(ctx, sess); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return fnErr
}

func (s *Service) resolveOptions(o Overrides) (Options, error) {
	opts := s.defaults
	if o.Strategy != nil {
		if !o.Strategy.Valid() {
			return Options{}, fmt.Errorf("%w: strategy %q", ErrInvalidOptions, *o.Strategy)
		}
		opts.Strategy = *o.Strategy
	}
	if o.Timed != nil {
		opts.Timed = *o.Timed
	}
	if o.TimerSeconds != nil {
		opts.TimerSeconds = *o.TimerSeconds
	}
	if opts.Timed && opts.TimerSeconds <= 0 {
		return Options{}, fmt.Errorf("%w: timer_seconds must be positive", ErrInvalidOptions)
	}
	if !opts.Timed {
		opts.TimerSeconds = 0
	}
	return opts, nil
}

// ErrorCode maps a service error to a stable machine-readable code.
func ErrorCode(err error) string {
	var malformed *question.MalformedQuestionError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &malformed):
		return httperrors.ErrCodeMalformedQuestion
	case errors.Is(err, ErrInvalidTransition):
		return httperrors.ErrCodeInvalidTransition
	case errors.Is(err, ErrTimeExpired):
		return httperrors.ErrCodeTimeExpired
	case errors.Is(err, ErrUnknownSubject):
		return httperrors.ErrCodeUnknownSubject
	case errors.Is(err, ErrChoiceOutOfRange):
		return httperrors.ErrCodeChoiceOutOfRange
	case errors.Is(err, ErrNoQuestions):
		return httperrors.ErrCodeNoQuestions
	case errors.Is(err, ErrUnanswerable):
		return httperrors.ErrCodeUnanswerable
	case errors.Is(err, ErrUnknownAction):
		return httperrors.ErrCodeUnknownAction
	case errors.Is(err, ErrMissingField):
		return httperrors.ErrCodeMissingField
	case errors.Is(err, ErrInvalidOptions):
		return httperrors.ErrCodeInvalidOptions
	case errors.Is(err, ErrSessionNotFound):
		return httperrors.ErrCodeSessionNotFound
	case errors.Is(err, ErrSessionBusy):
		return httperrors.ErrCodeSessionBusy
	default:
		return httperrors.ErrCodeInternalError
	}
}
