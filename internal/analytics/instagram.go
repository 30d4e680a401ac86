package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"autoreel/pkg/httputil"
)

// InstagramSource reads media metrics for a business account through
// the Graph API; the page access token doubles as its credential.
type InstagramSource struct {
	accountID string
	token     string
	baseURL   string
	client    Doer
}

type InstagramOptions struct {
	AccountID   string
	AccessToken string
	BaseURL     string
	Client      Doer
}

func NewInstagramSource(opts InstagramOptions) *InstagramSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGraphAPI
	}
	if opts.Client == nil {
		opts.Client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	return &InstagramSource{
		accountID: opts.AccountID,
		token:     opts.AccessToken,
		baseURL:   opts.BaseURL,
		client:    opts.Client,
	}
}

func (s *InstagramSource) Platform() string { return "Instagram" }

func (s *InstagramSource) Configured() bool {
	return s.accountID != "" && s.token != ""
}

type instagramMediaResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Permalink string `json:"permalink"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
}

type instagramDetailsResponse struct {
	LikeCount     *int64 `json:"like_count"`
	CommentsCount *int64 `json:"comments_count"`
	MediaType     string `json:"media_type"`
}

// Fetch lists recent media and reads per-media counters. Video views
// come from the insights edge; Instagram exposes no share counter.
func (s *InstagramSource) Fetch(ctx context.Context, limit int) ([]Metric, error) {
	if !s.Configured() {
		return nil, nil
	}

	listQuery := url.Values{
		"access_token": {s.token},
		"fields":       {"id,permalink,timestamp"},
		"limit":        {strconv.Itoa(clampLimit(limit, 100))},
	}
	var media instagramMediaResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s/media?%s", s.baseURL, s.accountID, listQuery.Encode()), nil, &media); err != nil {
		return nil, fmt.Errorf("instagram media: %w", err)
	}

	metrics := make([]Metric, 0, len(media.Data))
	for _, m := range media.Data {
		metric := Metric{
			Platform:  s.Platform(),
			PostID:    m.ID,
			Permalink: m.Permalink,
			CreatedAt: m.Timestamp,
		}

		detailQuery := url.Values{
			"access_token": {s.token},
			"fields":       {"like_count,comments_count,media_type"},
		}
		var details instagramDetailsResponse
		if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s?%s", s.baseURL, m.ID, detailQuery.Encode()), nil, &details); err == nil {
			metric.Likes = details.LikeCount
			metric.Comments = details.CommentsCount
			if isVideoMedia(details.MediaType) {
				metric.Views = s.videoViews(ctx, m.ID)
			}
		}

		metrics = append(metrics, metric)
	}
	return metrics, nil
}

func (s *InstagramSource) videoViews(ctx context.Context, mediaID string) *int64 {
	q := url.Values{
		"access_token": {s.token},
		"metric":       {"video_views"},
	}
	var resp graphInsightsResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s/insights?%s", s.baseURL, mediaID, q.Encode()), nil, &resp); err != nil {
		return nil
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Values) == 0 {
		return nil
	}
	return resp.Data[0].Values[0].Value
}

func isVideoMedia(mediaType string) bool {
	switch mediaType {
	case "VIDEO", "REELS", "IGTV":
		return true
	}
	return false
}
