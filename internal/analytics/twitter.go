package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"autoreel/pkg/httputil"
)

const defaultTwitterAPI = "https://api.twitter.com/2"

// TwitterSource reads public tweet metrics with an app-only bearer
// token. Replies stand in for comments, retweets for shares.
type TwitterSource struct {
	bearerToken string
	username    string
	userID      string
	baseURL     string
	client      Doer
}

type TwitterOptions struct {
	BearerToken string
	Username    string
	// UserID skips the username lookup when set.
	UserID  string
	BaseURL string
	Client  Doer
}

func NewTwitterSource(opts TwitterOptions) *TwitterSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultTwitterAPI
	}
	if opts.Client == nil {
		opts.Client = httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())
	}
	return &TwitterSource{
		bearerToken: opts.BearerToken,
		username:    opts.Username,
		userID:      opts.UserID,
		baseURL:     opts.BaseURL,
		client:      opts.Client,
	}
}

func (s *TwitterSource) Platform() string { return "Twitter/X" }

func (s *TwitterSource) Configured() bool {
	return s.bearerToken != "" && (s.username != "" || s.userID != "")
}

func (s *TwitterSource) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.bearerToken}
}

type twitterUserResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type twitterTweetsResponse struct {
	Data []struct {
		ID            string `json:"id"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount    *int64 `json:"like_count"`
			ReplyCount   *int64 `json:"reply_count"`
			RetweetCount *int64 `json:"retweet_count"`
			ViewCount    *int64 `json:"view_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (s *TwitterSource) Fetch(ctx context.Context, limit int) ([]Metric, error) {
	if !s.Configured() {
		return nil, nil
	}

	userID := s.userID
	if userID == "" {
		var user twitterUserResponse
		if err := getJSON(ctx, s.client, s.baseURL+"/users/by/username/"+url.PathEscape(s.username), s.headers(), &user); err != nil {
			return nil, fmt.Errorf("twitter user lookup: %w", err)
		}
		userID = user.Data.ID
	}
	if userID == "" {
		return nil, fmt.Errorf("twitter user %q not found", s.username)
	}

	q := url.Values{
		"max_results":  {strconv.Itoa(clampLimit(limit, 100))},
		"tweet.fields": {"created_at,public_metrics"},
	}
	var tweets twitterTweetsResponse
	if err := getJSON(ctx, s.client, fmt.Sprintf("%s/users/%s/tweets?%s", s.baseURL, userID, q.Encode()), s.headers(), &tweets); err != nil {
		return nil, fmt.Errorf("twitter timeline: %w", err)
	}

	metrics := make([]Metric, 0, len(tweets.Data))
	for _, t := range tweets.Data {
		permalink := ""
		if s.username != "" {
			permalink = fmt.Sprintf("https://x.com/%s/status/%s", s.username, t.ID)
		}
		metrics = append(metrics, Metric{
			Platform:  s.Platform(),
			PostID:    t.ID,
			Permalink: permalink,
			Likes:     t.PublicMetrics.LikeCount,
			Comments:  t.PublicMetrics.ReplyCount,
			Views:     t.PublicMetrics.ViewCount,
			Shares:    t.PublicMetrics.RetweetCount,
			CreatedAt: t.CreatedAt,
		})
	}
	return metrics, nil
}
