package quiz

import "errors"

var (
	ErrInvalidTransition = errors.New("action not available on this screen")
	ErrTimeExpired       = errors.New("time is up for this question")
	ErrUnknownSubject    = errors.New("unknown subject")
	ErrChoiceOutOfRange  = errors.New("choice is outside the available options")
	ErrNoQuestions       = errors.New("no questions in the active subject")
	ErrUnanswerable      = errors.New("question has no correct answer recorded")
	ErrUnknownAction     = errors.New("unknown action")
	ErrMissingField      = errors.New("action is missing a required field")
	ErrInvalidOptions    = errors.New("invalid session options")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionBusy       = errors.New("session is busy")
)
