package xraytl

import (
	"errors"
	"strings"
	"testing"
)

func TestErrors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"translation", &TranslationError{Message: "failed", Cause: cause}, "failed: boom"},
		{"translation no cause", &TranslationError{Message: "failed"}, "failed"},
		{"provider", &ProviderError{Message: "timeout", Cause: cause}, "provider error: timeout: boom"},
		{"provider no cause", &ProviderError{Message: "timeout"}, "provider error: timeout"},
		{"cache", &CacheError{Message: "get", Cause: cause}, "cache error: get: boom"},
		{"processor", &ProcessorError{Message: "parse", ContentType: "string_table", Cause: cause}, "processor error (string_table): parse: boom"},
		{"count mismatch", &CountMismatchError{Expected: 3, Got: 2}, "translation count mismatch: expected 3, got 2"},
		{"segmentation", &SegmentationMismatchError{Text: "x", Pieces: 3, Separators: 1}, `segmentation mismatch: 3 pieces for 1 separators in "x"`},
		{"no language", &NoRecommendedLanguageError{EntityID: "st_a", TargetLang: "rus"}, `no recommended language for entity "st_a" (target rus)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	for _, err := range []error{
		&TranslationError{Message: "x", Cause: cause},
		&ProviderError{Message: "x", Cause: cause},
		&CacheError{Message: "x", Cause: cause},
		&ProcessorError{Message: "x", Cause: cause},
	} {
		if !errors.Is(err, cause) {
			t.Errorf("%T should unwrap to its cause", err)
		}
	}
}

func TestNoRecommendedLanguageError_Is(t *testing.T) {
	err := error(&NoRecommendedLanguageError{EntityID: "a"})
	wrapped := &TranslationError{Message: "skip", Cause: err}

	if !errors.Is(wrapped, ErrNoRecommendedLanguage) {
		t.Error("wrapped error should match ErrNoRecommendedLanguage")
	}
	if errors.Is(&CountMismatchError{}, ErrNoRecommendedLanguage) {
		t.Error("unrelated error should not match")
	}
	if !strings.Contains(err.Error(), `"a"`) {
		t.Errorf("unexpected message: %s", err)
	}
}
