package question

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Fallback policies applied when the bank file cannot be used.
const (
	FallbackSample = "sample"
	FallbackEmpty  = "empty"
)

// LoadObserver is notified about every load attempt (implemented by metrics).
type LoadObserver interface {
	BankLoaded(outcome string)
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Path     string
	Fallback string
	Observer LoadObserver
}

// Store caches the bank in memory and reloads it whenever the file's
// modification time changes.
type Store struct {
	path     string
	fallback string
	observer LoadObserver
	logger   zerolog.Logger

	mu      sync.RWMutex
	loaded  bool
	bank    Bank
	version Version
	notice  error
}

// NewStore builds a store for the given file. Nothing is read until first use.
func NewStore(opts StoreOptions, logger zerolog.Logger) *Store {
	if opts.Fallback == "" {
		opts.Fallback = FallbackSample
	}
	return &Store{
		path:     opts.Path,
		fallback: opts.Fallback,
		observer: opts.Observer,
		logger:   logger.With().Str("component", "question_store").Logger(),
	}
}

// Path returns the bank file location.
func (s *Store) Path() string { return s.path }

// Bank returns the current bank, reloading first if the file changed.
func (s *Store) Bank(ctx context.Context) Bank {
	s.mu.RLock()
	if s.loaded && !s.IsStale(s.version) {
		bank := s.bank
		s.mu.RUnlock()
		return bank
	}
	s.mu.RUnlock()

	bank, _ := s.Reload(ctx)
	return bank
}

// Version is the file revision of the bank currently held.
func (s *Store) Version() Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// IsStale reports whether the file on disk differs from version.
func (s *Store) IsStale(version Version) bool {
	return FileVersion(s.path) != version
}

// Notice returns the error from the last load, if any. Presentation layers
// show it as a banner while the fallback bank is in use.
func (s *Store) Notice() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// Reload reads the file unconditionally. On failure the fallback bank is
// installed and the load error is returned and kept as the notice.
func (s *Store) Reload(ctx context.Context) (Bank, error) {
	bank, version, err := Load(s.path)

	outcome := "ok"
	if err != nil {
		outcome = ReasonUnreadable
		var loadErr *DataLoadError
		if errors.As(err, &loadErr) {
			outcome = loadErr.Reason
		}
		bank = s.fallbackBank()
		s.logger.Warn().Err(err).Str("fallback", s.fallback).Msg("question bank unavailable")
	} else {
		stats := bank.Stats()
		issues := bank.Issues()
		s.logger.Info().
			Str("path", s.path).
			Int("subjects", stats.SubjectsWithQuestions).
			Int("questions", stats.TotalQuestions).
			Int("malformed", len(issues)).
			Msg("question bank loaded")
		for _, issue := range issues {
			s.logger.Warn().Str("subject", issue.Subject).Int("index", issue.Index).Msg(issue.Problem)
		}
	}
	if s.observer != nil {
		s.observer.BankLoaded(outcome)
	}

	s.mu.Lock()
	s.bank = bank
	s.version = version
	s.notice = err
	s.loaded = true
	s.mu.Unlock()

	return bank, err
}

func (s *Store) fallbackBank() Bank {
	if s.fallback == FallbackEmpty {
		return Bank{}
	}
	return SampleBank()
}
