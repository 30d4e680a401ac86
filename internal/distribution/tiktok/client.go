// Package tiktok publishes to TikTok. The Content Posting API requires an
// audited app before real uploads are allowed, so until that audit passes
// the adapter validates credentials and simulates the post.
package tiktok

import (
	"context"

	"autoreel/internal/distribution"
)

const platform = "TikTok"

var _ distribution.Adapter = (*Client)(nil)

type Client struct {
	accessToken string
}

func NewClient(accessToken string) *Client {
	return &Client{accessToken: accessToken}
}

func (c *Client) Platform() string { return platform }

func (c *Client) Authenticate(ctx context.Context) error {
	if c.accessToken == "" {
		return &distribution.AuthError{Platform: platform, Reason: "missing TIKTOK_ACCESS_TOKEN"}
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, post distribution.Post) (distribution.UploadResult, error) {
	if err := c.Authenticate(ctx); err != nil {
		return distribution.UploadResult{}, err
	}
	return distribution.UploadResult{
		Platform:  platform,
		Status:    distribution.StatusSuccess,
		URL:       "https://www.tiktok.com/@youraccount/video/1234567890",
		Message:   "uploaded (simulated)",
		Simulated: true,
	}, nil
}
