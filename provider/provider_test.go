package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()

	got, err := m.Translate(context.Background(), BatchRequest{
		Texts:      []string{"Hello", "Unknown"},
		TargetLang: "rus",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got[0] != "Привет" {
		t.Errorf("got[0] = %q, want %q", got[0], "Привет")
	}
	if got[1] != "[Unknown]" {
		t.Errorf("got[1] = %q, want %q", got[1], "[Unknown]")
	}
	if m.CallCount() != 1 {
		t.Errorf("CallCount() = %d, want 1", m.CallCount())
	}
	if m.LastRequest() == nil || m.LastRequest().TargetLang != "rus" {
		t.Error("LastRequest should record the request")
	}

	m.Reset()
	if m.CallCount() != 0 || m.LastRequest() != nil {
		t.Error("Reset should clear state")
	}
}

func TestMockProvider_Error(t *testing.T) {
	m := NewMockProvider()
	m.Err = errors.New("boom")

	if _, err := m.Translate(context.Background(), BatchRequest{Texts: []string{"Hello"}}); err == nil {
		t.Fatal("expected error")
	}
	if m.CallCount() != 1 {
		t.Errorf("CallCount() = %d, want 1", m.CallCount())
	}
}

func TestMockProvider_Concurrent(t *testing.T) {
	m := NewMockProvider()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Translate(context.Background(), BatchRequest{Texts: []string{"Hello"}})
		}()
	}
	wg.Wait()

	if m.CallCount() != 16 {
		t.Errorf("CallCount() = %d, want 16", m.CallCount())
	}
}

func TestNewOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})
	if p.Model() != DefaultOpenAIModel {
		t.Errorf("Model() = %q, want %q", p.Model(), DefaultOpenAIModel)
	}
	if p.temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", p.temperature)
	}

	got, err := p.Translate(context.Background(), BatchRequest{})
	if err != nil || len(got) != 0 {
		t.Errorf("empty batch should return no translations, got %v, %v", got, err)
	}
}

func TestNewAnthropicProvider_Defaults(t *testing.T) {
	p := NewAnthropicProvider(AnthropicConfig{APIKey: "test", Model: "claude-custom"})
	if p.Model() != "claude-custom" {
		t.Errorf("Model() = %q, want %q", p.Model(), "claude-custom")
	}
	if p.maxTokens != defaultAnthropicMaxTokens {
		t.Errorf("maxTokens = %d, want %d", p.maxTokens, defaultAnthropicMaxTokens)
	}

	got, err := p.Translate(context.Background(), BatchRequest{})
	if err != nil || len(got) != 0 {
		t.Errorf("empty batch should return no translations, got %v, %v", got, err)
	}
}
