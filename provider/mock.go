package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock backend for testing. It is safe for concurrent use.
type MockProvider struct {
	mu           sync.Mutex
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by Translate when set
	callCount    int
	lastRequest  *BatchRequest
}

// NewMockProvider creates a new mock provider with a few default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":             "Привет",
			"Stalker":           "Сталкер",
			"Get out!":          "Вали отсюда!",
			"Take it.":          "Бери.",
			"Find the artifact": "Найди артефакт",
		},
	}
}

// Translate returns mock translations. Unknown texts come back bracketed.
func (m *MockProvider) Translate(ctx context.Context, req BatchRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequest = &req

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}

	return results, nil
}

// CallCount returns how many times Translate was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *BatchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

var _ Backend = (*MockProvider)(nil)
