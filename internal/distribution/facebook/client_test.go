package facebook

import (
	"context"
	"errors"
	"strings"
	"testing"

	"autoreel/internal/distribution"
)

func TestAuthenticateWithoutCredentials(t *testing.T) {
	c := NewClient("", "")

	err := c.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	var authErr *distribution.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T", err)
	}
	if authErr.Platform != "Facebook" {
		t.Errorf("platform = %q, want Facebook", authErr.Platform)
	}
	// The diagnostic must name the variables config actually reads.
	if !strings.Contains(authErr.Reason, "FACEBOOK_PAGE_ID") {
		t.Errorf("reason %q should name FACEBOOK_PAGE_ID", authErr.Reason)
	}
	if !strings.Contains(authErr.Reason, "FACEBOOK_ACCESS_TOKEN") {
		t.Errorf("reason %q should name FACEBOOK_ACCESS_TOKEN", authErr.Reason)
	}
	if strings.Contains(authErr.Reason, "FACEBOOK_PAGE_ACCESS_TOKEN") {
		t.Errorf("reason %q names a variable config never reads", authErr.Reason)
	}
}

func TestUploadSimulated(t *testing.T) {
	c := NewClient("page-123", "test-token")

	result, err := c.Upload(context.Background(), distribution.Post{
		VideoURL: "https://example.com/video.mp4",
		Caption:  "Check this out",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Status != distribution.StatusSuccess {
		t.Errorf("status = %q, want success", result.Status)
	}
	if !result.Simulated {
		t.Error("result should be marked simulated")
	}
	if !strings.Contains(result.URL, "page-123") {
		t.Errorf("post URL %q should carry the page id", result.URL)
	}
}
