package question

import (
	"errors"
	"fmt"
)

// ErrNoImage marks a question without an image reference.
var ErrNoImage = errors.New("question has no image")

// Load failure reasons.
const (
	ReasonMissing    = "missing"
	ReasonUnreadable = "unreadable"
	ReasonMalformed  = "malformed"
)

// DataLoadError reports a question file that could not be used. The store
// falls back to an empty or sample bank and keeps the error as a notice.
type DataLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("question bank %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("question bank %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// MalformedQuestionError describes a record that cannot be evaluated.
type MalformedQuestionError struct {
	Subject string
	Index   int
	Problem string
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("%s #%d: %s", e.Subject, e.Index+1, e.Problem)
}

// MissingAssetError reports an image reference that does not resolve to a file.
type MissingAssetError struct {
	Path string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("image not found: %s", e.Path)
}
