package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMergeDeduplicates(t *testing.T) {
	a := []Metric{
		{Platform: "YouTube", PostID: "v1", Views: count(10)},
		{Platform: "Facebook", PostID: "v1"},
	}
	b := []Metric{
		{Platform: "YouTube", PostID: "v1", Views: count(25)},
		{Platform: "YouTube", PostID: "v2"},
	}

	merged := Merge(a, b)
	if len(merged) != 3 {
		t.Fatalf("merged %d rows, want 3", len(merged))
	}
	// Same (platform, post id) keeps the later batch's row.
	for _, m := range merged {
		if m.Platform == "YouTube" && m.PostID == "v1" {
			if m.Views == nil || *m.Views != 25 {
				t.Errorf("duplicate row views = %v, want 25", m.Views)
			}
		}
	}
}

func TestYouTubeSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search"):
			if r.URL.Query().Get("key") != "yt-key" {
				t.Errorf("search missing api key")
			}
			fmt.Fprint(w, `{"items":[{"id":{"videoId":"abc123"}},{"id":{"videoId":"def456"}}]}`)
		case strings.HasPrefix(r.URL.Path, "/videos"):
			if got := r.URL.Query().Get("id"); got != "abc123,def456" {
				t.Errorf("videos id = %q", got)
			}
			fmt.Fprint(w, `{"items":[
				{"id":"abc123","snippet":{"publishedAt":"2026-08-01T10:00:00Z"},
				 "statistics":{"viewCount":"1500","likeCount":"42","commentCount":"7"}},
				{"id":"def456","snippet":{"publishedAt":"2026-08-02T10:00:00Z"},
				 "statistics":{"viewCount":"90"}}
			]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	src := NewYouTubeSource(YouTubeOptions{
		APIKey:    "yt-key",
		ChannelID: "UC123",
		BaseURL:   srv.URL,
		Client:    srv.Client(),
	})

	metrics, err := src.Fetch(context.Background(), 20)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("got %d metrics, want 2", len(metrics))
	}
	first := metrics[0]
	if first.PostID != "abc123" || first.Permalink != "https://youtu.be/abc123" {
		t.Errorf("first = %+v", first)
	}
	if first.Views == nil || *first.Views != 1500 {
		t.Errorf("views = %v, want 1500", first.Views)
	}
	if first.Likes == nil || *first.Likes != 42 {
		t.Errorf("likes = %v, want 42", first.Likes)
	}
	if first.Shares != nil {
		t.Error("youtube exposes no share counter")
	}
	// Missing counters stay nil rather than zero.
	if metrics[1].Likes != nil {
		t.Errorf("absent like count = %v, want nil", metrics[1].Likes)
	}
}

func TestTwitterSourceResolvesUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer bear" {
			t.Errorf("missing bearer header")
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/by/username/"):
			fmt.Fprint(w, `{"data":{"id":"99"}}`)
		case strings.HasPrefix(r.URL.Path, "/users/99/tweets"):
			fmt.Fprint(w, `{"data":[{"id":"t1","created_at":"2026-08-10T08:00:00Z",
				"public_metrics":{"like_count":3,"reply_count":1,"retweet_count":2,"view_count":40}}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	src := NewTwitterSource(TwitterOptions{
		BearerToken: "bear",
		Username:    "acme",
		BaseURL:     srv.URL,
		Client:      srv.Client(),
	})

	metrics, err := src.Fetch(context.Background(), 20)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(metrics))
	}
	m := metrics[0]
	if m.Permalink != "https://x.com/acme/status/t1" {
		t.Errorf("permalink = %q", m.Permalink)
	}
	if m.Comments == nil || *m.Comments != 1 {
		t.Errorf("comments = %v, want reply count 1", m.Comments)
	}
	if m.Shares == nil || *m.Shares != 2 {
		t.Errorf("shares = %v, want retweet count 2", m.Shares)
	}
}

func TestFacebookSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/page-1/videos"):
			fmt.Fprint(w, `{"data":[{"id":"vid-1","permalink_url":"/page-1/videos/vid-1","created_time":"2026-08-05T12:00:00Z"}]}`)
		case strings.HasSuffix(r.URL.Path, "/vid-1/reactions"):
			fmt.Fprint(w, `{"summary":{"total_count":11}}`)
		case strings.HasSuffix(r.URL.Path, "/vid-1/comments"):
			fmt.Fprint(w, `{"summary":{"total_count":4}}`)
		case strings.HasSuffix(r.URL.Path, "/vid-1/video_insights"):
			fmt.Fprint(w, `{"data":[{"values":[{"value":230}]}]}`)
		case strings.HasSuffix(r.URL.Path, "/vid-1"):
			fmt.Fprint(w, `{"shares":{"count":6}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	src := NewFacebookSource(FacebookOptions{
		PageID:      "page-1",
		AccessToken: "tok",
		BaseURL:     srv.URL,
		Client:      srv.Client(),
	})

	metrics, err := src.Fetch(context.Background(), 20)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(metrics))
	}
	m := metrics[0]
	if m.Likes == nil || *m.Likes != 11 {
		t.Errorf("likes = %v, want 11", m.Likes)
	}
	if m.Comments == nil || *m.Comments != 4 {
		t.Errorf("comments = %v, want 4", m.Comments)
	}
	if m.Views == nil || *m.Views != 230 {
		t.Errorf("views = %v, want 230", m.Views)
	}
	if m.Shares == nil || *m.Shares != 6 {
		t.Errorf("shares = %v, want 6", m.Shares)
	}
}

func TestInstagramSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/ig-1/media"):
			fmt.Fprint(w, `{"data":[{"id":"m1","permalink":"https://www.instagram.com/p/m1/","timestamp":"2026-08-06T09:00:00Z"}]}`)
		case strings.HasSuffix(r.URL.Path, "/m1/insights"):
			fmt.Fprint(w, `{"data":[{"values":[{"value":88}]}]}`)
		case strings.HasSuffix(r.URL.Path, "/m1"):
			fmt.Fprint(w, `{"like_count":9,"comments_count":2,"media_type":"REELS"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	src := NewInstagramSource(InstagramOptions{
		AccountID:   "ig-1",
		AccessToken: "tok",
		BaseURL:     srv.URL,
		Client:      srv.Client(),
	})

	metrics, err := src.Fetch(context.Background(), 20)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(metrics))
	}
	m := metrics[0]
	if m.Likes == nil || *m.Likes != 9 {
		t.Errorf("likes = %v, want 9", m.Likes)
	}
	if m.Views == nil || *m.Views != 88 {
		t.Errorf("views = %v, want 88", m.Views)
	}
	if m.Shares != nil {
		t.Error("instagram exposes no share counter")
	}
}

type fakeSource struct {
	name       string
	configured bool
	metrics    []Metric
	err        error
	calls      int
}

func (f *fakeSource) Platform() string { return f.name }
func (f *fakeSource) Configured() bool { return f.configured }
func (f *fakeSource) Fetch(ctx context.Context, limit int) ([]Metric, error) {
	f.calls++
	return f.metrics, f.err
}

func TestFetcherSkipsUnconfiguredAndFailingSources(t *testing.T) {
	ok := &fakeSource{name: "YouTube", configured: true, metrics: []Metric{{Platform: "YouTube", PostID: "v1"}}}
	dark := &fakeSource{name: "Facebook"}
	broken := &fakeSource{name: "Twitter/X", configured: true, err: errors.New("rate limited")}

	f := NewFetcher([]Source{ok, dark, broken}, nil)

	merged := f.FetchAll(context.Background(), 10)
	if len(merged) != 1 || merged[0].PostID != "v1" {
		t.Fatalf("merged = %+v", merged)
	}
	if dark.calls != 0 {
		t.Error("unconfigured source should not be fetched")
	}
	if broken.calls != 1 {
		t.Error("failing source should be attempted once")
	}

	configured := f.Configured()
	if len(configured) != 2 {
		t.Errorf("configured = %v", configured)
	}
}

func TestUnconfiguredSourceFetchIsEmpty(t *testing.T) {
	sources := []Source{
		NewYouTubeSource(YouTubeOptions{}),
		NewFacebookSource(FacebookOptions{}),
		NewTwitterSource(TwitterOptions{}),
		NewInstagramSource(InstagramOptions{}),
	}
	for _, src := range sources {
		if src.Configured() {
			t.Errorf("%s should be unconfigured without credentials", src.Platform())
		}
		metrics, err := src.Fetch(context.Background(), 5)
		if err != nil || metrics != nil {
			t.Errorf("%s: metrics = %v, err = %v", src.Platform(), metrics, err)
		}
	}
}
