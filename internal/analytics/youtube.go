package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"autoreel/pkg/httputil"
)

const defaultYouTubeAPI = "https://www.googleapis.com/youtube/v3"

// YouTubeSource reads video statistics through the Data API using a
// plain API key; no OAuth needed for public counters.
type YouTubeSource struct {
	apiKey    string
	channelID string
	baseURL   string
	client    Doer
}

type YouTubeOptions struct {
	APIKey    string
	ChannelID string
	BaseURL   string
	Client    Doer
}

func NewYouTubeSource(opts YouTubeOptions) *YouTubeSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultYouTubeAPI
	}
	if opts.Client == nil {
		opts.Client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	return &YouTubeSource{
		apiKey:    opts.APIKey,
		channelID: opts.ChannelID,
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		client:    opts.Client,
	}
}

func (s *YouTubeSource) Platform() string { return "YouTube" }

func (s *YouTubeSource) Configured() bool {
	return s.apiKey != "" && s.channelID != ""
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Fetch lists the channel's latest uploads and pulls their statistics
// in one bulk call. Shares are not exposed by the Data API.
func (s *YouTubeSource) Fetch(ctx context.Context, limit int) ([]Metric, error) {
	if !s.Configured() {
		return nil, nil
	}

	searchQuery := url.Values{
		"key":        {s.apiKey},
		"channelId":  {s.channelID},
		"part":       {"id"},
		"order":      {"date"},
		"maxResults": {strconv.Itoa(clampLimit(limit, 50))},
		"type":       {"video"},
	}
	var search youtubeSearchResponse
	if err := getJSON(ctx, s.client, s.baseURL+"/search?"+searchQuery.Encode(), nil, &search); err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	var ids []string
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	statsQuery := url.Values{
		"key":  {s.apiKey},
		"id":   {strings.Join(ids, ",")},
		"part": {"statistics,snippet"},
	}
	var videos youtubeVideosResponse
	if err := getJSON(ctx, s.client, s.baseURL+"/videos?"+statsQuery.Encode(), nil, &videos); err != nil {
		return nil, fmt.Errorf("youtube statistics: %w", err)
	}

	metrics := make([]Metric, 0, len(videos.Items))
	for _, item := range videos.Items {
		metrics = append(metrics, Metric{
			Platform:  s.Platform(),
			PostID:    item.ID,
			Permalink: "https://youtu.be/" + item.ID,
			Likes:     parseCount(item.Statistics.LikeCount),
			Comments:  parseCount(item.Statistics.CommentCount),
			Views:     parseCount(item.Statistics.ViewCount),
			CreatedAt: item.Snippet.PublishedAt,
		})
	}
	return metrics, nil
}

// parseCount reads the Data API's string-encoded counters; absent ones
// stay nil.
func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
