package triage

import (
	"context"
	"errors"
	"testing"
)

func TestFallbackClientPrimarySucceeds(t *testing.T) {
	primary := &stubLLMClient{responses: []LLMResponse{{Text: "primary"}}}
	secondary := &stubLLMClient{responses: []LLMResponse{{Text: "secondary"}}}
	client := NewFallbackLLMClient(primary, secondary, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "primary" {
		t.Errorf("expected primary response, got %q", resp.Text)
	}
	if secondary.calls != 0 {
		t.Error("secondary must not be called when primary succeeds")
	}
}

func TestFallbackClientPrimaryFails(t *testing.T) {
	primary := &stubLLMClient{errs: []error{errors.New("quota exceeded")}}
	secondary := &stubLLMClient{responses: []LLMResponse{{Text: "secondary"}}}
	client := NewFallbackLLMClient(primary, secondary, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "secondary" {
		t.Errorf("expected secondary response, got %q", resp.Text)
	}
}

func TestFallbackClientBothFail(t *testing.T) {
	primary := &stubLLMClient{errs: []error{errors.New("primary down")}}
	secondary := &stubLLMClient{errs: []error{errors.New("secondary down")}}
	client := NewFallbackLLMClient(primary, secondary, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	if err == nil || err.Error() != "secondary down" {
		t.Errorf("expected secondary error surfaced, got %v", err)
	}
}

func TestFallbackClientNoSecondary(t *testing.T) {
	primary := &stubLLMClient{errs: []error{errors.New("primary down")}}
	client := NewFallbackLLMClient(primary, nil, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	if err == nil || err.Error() != "primary down" {
		t.Errorf("expected primary error surfaced, got %v", err)
	}
}
