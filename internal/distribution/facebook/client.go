// Package facebook publishes videos to a Facebook page through the Graph
// API. The upload itself is simulated until the Graph video endpoint is
// wired in.
package facebook

import (
	"context"
	"fmt"

	"autoreel/internal/distribution"
)

const platform = "Facebook"

var _ distribution.Adapter = (*Client)(nil)

type Client struct {
	pageID      string
	accessToken string
}

func NewClient(pageID, accessToken string) *Client {
	return &Client{pageID: pageID, accessToken: accessToken}
}

func (c *Client) Platform() string { return platform }

func (c *Client) Authenticate(ctx context.Context) error {
	if c.pageID == "" || c.accessToken == "" {
		return &distribution.AuthError{Platform: platform, Reason: "missing FACEBOOK_PAGE_ID or FACEBOOK_ACCESS_TOKEN"}
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
		URL:       fmt.Sprintf("https://www.facebook.com/%s/videos/9876543210", c.pageID),
		Message:   "uploaded (simulated)",
		Simulated: true,
	}, nil
}
