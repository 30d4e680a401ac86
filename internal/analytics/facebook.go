package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"autoreel/pkg/httputil"
)

const defaultGraphAPI = "https://graph.facebook.com/v18.0"

// FacebookSource reads page video metrics through the Graph API.
type FacebookSource struct {
	pageID  string
	token   string
	baseURL string
	client  Doer
}

type FacebookOptions struct {
	PageID      string
	AccessToken string
	BaseURL     string
	Client      Doer
}

func NewFacebookSource(opts FacebookOptions) *FacebookSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGraphAPI
	}
	if opts.Client == nil {
		opts.Client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	return &FacebookSource{
		pageID:  opts.PageID,
		token:   opts.AccessToken,
		baseURL: opts.BaseURL,
		client:  opts.Client,
	}
}

func (s *FacebookSource) Platform() string { return "Facebook" }

func (s *FacebookSource) Configured() bool {
	return s.pageID != "" && s.token != ""
}

type graphVideosResponse struct {
	Data []struct {
		ID           string `json:"id"`
		PermalinkURL string `json:"permalink_url"`
		CreatedTime  string `json:"created_time"`
	} `json:"data"`
}

type graphSummaryResponse struct {
	Summary struct {
		TotalCount *int64 `json:"total_count"`
	} `json:"summary"`
}

type graphSharesResponse struct {
	Shares *struct {
		Count int64 `json:"count"`
	} `json:"shares"`
}

type graphInsightsResponse struct {
	Data []struct {
		Values []struct {
			Value *int64 `json:"value"`
		} `json:"values"`
	} `json:"data"`
}

// Fetch lists the page's recent videos and pulls reactions, comments,
// shares, and view insights per video. A failed per-video counter
// leaves that counter nil instead of failing the batch.
func (s *FacebookSource) Fetch(ctx context.Context, limit int) ([]Metric, error) {
	if !s.Configured() {
		return nil, nil
	}

	listQuery := url.Values{
		"access_token": {s.token},
		"fields":       {"id,permalink_url,created_time"},
		"limit":        {strconv.Itoa(clampLimit(limit, 100))},
	}
	var videos graphVideosResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s/videos?%s", s.baseURL, s.pageID, listQuery.Encode()), nil, &videos); err != nil {
		return nil, fmt.Errorf("facebook videos: %w", err)
	}

	metrics := make([]Metric, 0, len(videos.Data))
	for _, v := range videos.Data {
		metrics = append(metrics, Metric{
			Platform:  s.Platform(),
			PostID:    v.ID,
			Permalink: v.PermalinkURL,
			Likes:     s.reactionCount(ctx, v.ID),
			Comments:  s.commentCount(ctx, v.ID),
			Views:     s.viewCount(ctx, v.ID),
			Shares:    s.shareCount(ctx, v.ID),
			CreatedAt: v.CreatedTime,
		})
	}
	return metrics, nil
}

func (s *FacebookSource) reactionCount(ctx context.Context, videoID string) *int64 {
	q := url.Values{
		"access_token": {s.token},
		"summary":      {"total_count"},
		"limit":        {"0"},
	}
	var resp graphSummaryResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s/reactions?%s", s.baseURL, videoID, q.Encode()), nil, &resp); err != nil {
		return nil
	}
	return resp.Summary.TotalCount
}

func (s *FacebookSource) commentCount(ctx context.Context, videoID string) *int64 {
	q := url.Values{
		"access_token": {s.token},
		"summary":      {"total_count"},
		"filter":       {"toplevel"},
		"limit":        {"0"},
	}
	var resp graphSummaryResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s/comments?%s", s.baseURL, videoID, q.Encode()), nil, &resp); err != nil {
		return nil
	}
	return resp.Summary.TotalCount
}

func (s *FacebookSource) shareCount(ctx context.Context, videoID string) *int64 {
	q := url.Values{
		"access_token": {s.token},
		"fields":       {"shares"},
	}
	var resp graphSharesResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s?%s", s.baseURL, videoID, q.Encode()), nil, &resp); err != nil {
		return nil
	}
	if resp.Shares == nil {
		return nil
	}
	return count(resp.Shares.Count)
}

func (s *FacebookSource) viewCount(ctx context.Context, videoID string) *int64 {
	q := url.Values{
		"access_token": {s.token},
		"metric":       {"total_video_views"},
	}
	var resp graphInsightsResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/%s/video_insights?%s", s.baseURL, videoID, q.Encode()), nil, &resp); err != nil {
		return nil
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Values) == 0 {
		return nil
	}
	return resp.Data[0].Values[0].Value
}
