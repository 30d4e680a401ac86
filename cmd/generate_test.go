package cmd

import (
	"errors"
	"testing"
)

func TestShouldRetryRenderUnattendedIsBounded(t *testing.T) {
	// No prompt: the automatic budget allows exactly one retry.
	retry, err := shouldRetryRender(0, nil)
	if err != nil {
		t.Fatalf("shouldRetryRender: %v", err)
	}
	if !retry {
		t.Error("first unattended retry should be allowed")
	}

	retry, err = shouldRetryRender(autoRetryBudget, nil)
	if err != nil {
		t.Fatalf("shouldRetryRender: %v", err)
	}
	if retry {
		t.Error("retries past the budget must stop")
	}
}

func TestShouldRetryRenderDefersToPrompt(t *testing.T) {
	calls := 0
	prompt := func() (bool, error) {
		calls++
		return true, nil
	}

	// An interactive session may retry past the unattended budget.
	retry, err := shouldRetryRender(autoRetryBudget+5, prompt)
	if err != nil {
		t.Fatalf("shouldRetryRender: %v", err)
	}
	if !retry || calls != 1 {
		t.Errorf("retry = %v, prompt calls = %d", retry, calls)
	}

	wantErr := errors.New("form aborted")
	_, err = shouldRetryRender(0, func() (bool, error) { return false, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want prompt error", err)
	}
}

func TestCallbackAddr(t *testing.T) {
	tests := []struct {
		name     string
		redirect string
		want     string
		wantErr  bool
	}{
		{"explicit port", "http://localhost:9999/callback", ":9999", false},
		{"default port", "http://localhost", ":8090", false},
		{"garbage", "http://local host", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := callbackAddr(tt.redirect)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("callbackAddr: %v", err)
			}
			if got != tt.want {
				t.Errorf("callbackAddr(%q) = %q, want %q", tt.redirect, got, tt.want)
			}
		})
	}
}
