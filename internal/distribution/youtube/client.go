package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"autoreel/internal/distribution"
)

const (
	uploadURL  = "https://www.googleapis.com/upload/youtube/v3/videos"
	categoryID = "22"
	platform   = "YouTube"

	maxFetchSize = 512 << 20 // refuse to buffer videos beyond 512 MiB
)

var _ distribution.Adapter = (*Client)(nil)

type Client struct {
	auth    *Auth
	privacy string
	http    *http.Client
}

type Options struct {
	Auth    *Auth
	Privacy string
	// Client fetches the rendered video from its URL before the upload.
	Client *http.Client
}

func NewClient(opts Options) *Client {
	if opts.Privacy == "" {
		opts.Privacy = "private"
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Client{auth: opts.Auth, privacy: opts.Privacy, http: opts.Client}
}

func (c *Client) Platform() string { return platform }

func (c *Client) Authenticate(ctx context.Context) error {
	if c.auth == nil || c.auth.config.ClientID == "" || c.auth.config.ClientSecret == "" {
		return &distribution.AuthError{Platform: platform, Reason: "missing YOUTUBE_CLIENT_ID or YOUTUBE_CLIENT_SECRET"}
	}
	if c.auth.token == nil {
		if err := c.auth.LoadToken(); err != nil {
			return &distribution.AuthError{Platform: platform, Reason: "no OAuth token; run `autoreel auth youtube`"}
		}
	}
	return nil
}

type uploadResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"categoryId"`
}

type videoStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type videoMetadata struct {
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

// Upload fetches the rendered video and pushes it through the multipart
// upload endpoint. The caption becomes the title, the hashtags the tags.
func (c *Client) Upload(ctx context.Context, post distribution.Post) (distribution.UploadResult, error) {
	if err := c.Authenticate(ctx); err != nil {
		return distribution.UploadResult{}, err
	}

	httpClient, err := c.auth.Client(ctx)
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("get authorized client: %w", err)
	}

	video, err := c.fetchVideo(ctx, post.VideoURL)
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("fetch video: %w", err)
	}

	metadata := videoMetadata{
		Snippet: videoSnippet{
			Title:       truncate(post.Caption, 100),
			Description: post.Caption + "\n\n" + hashtagLine(post.Hashtags),
			Tags:        post.Hashtags,
			CategoryID:  categoryID,
		},
		Status: videoStatus{PrivacyStatus: c.privacy},
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("marshal metadata: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metadataPart, err := writer.CreateFormField("snippet")
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("create metadata part: %w", err)
	}
	if _, err := metadataPart.Write(metadataJSON); err != nil {
		return distribution.UploadResult{}, fmt.Errorf("write metadata: %w", err)
	}

	videoPart, err := writer.CreateFormFile("file", "video.mp4")
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("create video part: %w", err)
	}
	if _, err := videoPart.Write(video); err != nil {
		return distribution.UploadResult{}, fmt.Errorf("copy video: %w", err)
	}
	if err := writer.Close(); err != nil {
		return distribution.UploadResult{}, fmt.Errorf("close writer: %w", err)
	}

	url := fmt.Sprintf("%s?uploadType=multipart&part=snippet,status", uploadURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("upload video: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return distribution.UploadResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return distribution.UploadResult{}, fmt.Errorf("upload failed: %s", string(respBody))
	}

	var uploadResp uploadResponse
	if err := json.Unmarshal(respBody, &uploadResp); err != nil {
		return distribution.UploadResult{}, fmt.Errorf("parse response: %w", err)
	}

	return distribution.UploadResult{
		Platform: platform,
		Status:   distribution.StatusSuccess,
		URL:      fmt.Sprintf("https://youtube.com/watch?v=%s", uploadResp.ID),
		Message:  "uploaded",
	}, nil
}

// fetchVideo resolves the video reference: local paths are read directly,
// URLs are downloaded. Videos beyond maxFetchSize fail the upload rather
// than being truncated mid-stream.
func (c *Client) fetchVideo(ctx context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		info, err := os.Stat(ref)
		if err != nil {
			return nil, err
		}
		if info.Size() > maxFetchSize {
			return nil, fmt.Errorf("video is %d bytes, exceeds %d byte limit", info.Size(), int64(maxFetchSize))
		}
		return os.ReadFile(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video fetch returned %d", resp.StatusCode)
	}

	return readAtMost(resp.Body, maxFetchSize)
}

// readAtMost buffers the whole reader, erroring when it holds more than
// limit bytes.
func readAtMost(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("video exceeds %d byte limit", limit)
	}
	return data, nil
}

func hashtagLine(tags []string) string {
	var out []string
	for _, t := range tags {
		if t != "" {
			out = append(out, "#"+strings.TrimPrefix(t, "#"))
		}
	}
	return strings.Join(out, " ")
}

// truncate caps s at max runes without splitting a multi-byte character.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
