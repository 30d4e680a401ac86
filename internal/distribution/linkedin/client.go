// Package linkedin publishes to LinkedIn via the UGC Posts API. Video
// uploads are simulated until the registerUpload flow is implemented.
package linkedin

import (
	"context"

	"autoreel/internal/distribution"
)

const platform = "LinkedIn"

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
		return &distribution.AuthError{Platform: platform, Reason: "missing LINKEDIN_ACCESS_TOKEN"}
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
		URL:       "https://www.linkedin.com/feed/update/urn:li:activity:1234567890",
		Message:   "uploaded (simulated)",
		Simulated: true,
	}, nil
}
