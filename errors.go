package xraytl

import (
	"errors"
	"fmt"
)

// ErrNoRecommendedLanguage is matched by NoRecommendedLanguageError via errors.Is.
var ErrNoRecommendedLanguage = errors.New("no recommended language")

// describe joins a message prefix, the message and an optional cause.
func describe(prefix, msg string, cause error) string {
	s := prefix + msg
	if cause != nil {
		s += ": " + cause.Error()
	}
	return s
}

// TranslationError wraps a failure that aborted a whole document.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string { return describe("", e.Message, e.Cause) }
func (e *TranslationError) Unwrap() error { return e.Cause }

// ProviderError is returned by backends. Retryable marks transient
// failures such as rate limits, timeouts and 5xx responses.
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string { return describe("provider error: ", e.Message, e.Cause) }
func (e *ProviderError) Unwrap() error { return e.Cause }

// CacheError wraps a translation memory failure. Cache failures are
// logged and never abort a run.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string { return describe("cache error: ", e.Message, e.Cause) }
func (e *CacheError) Unwrap() error { return e.Cause }

// ProcessorError reports content that could not be parsed or rebuilt.
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string
}

func (e *ProcessorError) Error() string {
	return describe("processor error ("+e.ContentType+"): ", e.Message, e.Cause)
}

func (e *ProcessorError) Unwrap() error { return e.Cause }

// CountMismatchError reports a backend reply whose length differs from the
// request.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// SegmentationMismatchError reports that splitting a text produced a piece
// count that does not match its separator count. It only affects the text
// being segmented.
type SegmentationMismatchError struct {
	Text       string
	Pieces     int
	Separators int
}

func (e *SegmentationMismatchError) Error() string {
	return fmt.Sprintf("segmentation mismatch: %d pieces for %d separators in %q", e.Pieces, e.Separators, e.Text)
}

// NoRecommendedLanguageError reports an entity without any usable source
// variant. Retrying does not help; the caller should skip the entity.
type NoRecommendedLanguageError struct {
	EntityID   string
	TargetLang string
}

func (e *NoRecommendedLanguageError) Error() string {
	return fmt.Sprintf("no recommended language for entity %q (target %s)", e.EntityID, e.TargetLang)
}

// Is reports whether target is ErrNoRecommendedLanguage.
func (e *NoRecommendedLanguageError) Is(target error) bool {
	return target == ErrNoRecommendedLanguage
}
