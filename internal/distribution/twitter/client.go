// Package twitter publishes to X. Media upload and tweet creation through
// the v2 API are simulated until the chunked upload flow lands.
package twitter

import (
	"context"

	"autoreel/internal/distribution"
)

const platform = "Twitter/X"

var _ distribution.Adapter = (*Client)(nil)

type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

func (c Credentials) complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

type Client struct {
	creds Credentials
}

func NewClient(creds Credentials) *Client {
	return &Client{creds: creds}
}

func (c *Client) Platform() string { return platform }

func (c *Client) Authenticate(ctx context.Context) error {
	if !c.creds.complete() {
		return &distribution.AuthError{Platform: platform, Reason: "missing Twitter/X API credentials"}
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
		URL:       "https://x.com/yourhandle/status/1357924680",
		Message:   "uploaded (simulated)",
		Simulated: true,
	}, nil
}
