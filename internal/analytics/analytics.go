// Package analytics pulls engagement metrics for recently published
// posts from each platform's read API. Sources mirror the distribution
// adapters: one per platform, credential-gated, merged into a single
// table.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Metric is one published post's engagement counters. Counters a
// platform does not expose stay nil.
type Metric struct {
	Platform  string
	PostID    string
	Permalink string
	Likes     *int64
	Comments  *int64
	Views     *int64
	Shares    *int64
	CreatedAt string
}

// Source fetches recent post metrics for one platform.
type Source interface {
	Platform() string
	// Configured reports whether the source has the credentials it
	// needs; unconfigured sources are skipped, not errored.
	Configured() bool
	Fetch(ctx context.Context, limit int) ([]Metric, error)
}

// Doer is the request surface the sources need; satisfied by
// *http.Client and httputil.RetryClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Merge flattens per-platform batches into one table, dropping
// duplicate (platform, post id) rows and keeping the last occurrence.
func Merge(batches ...[]Metric) []Metric {
	index := make(map[string]int)
	var merged []Metric
	for _, batch := range batches {
		for _, m := range batch {
			key := m.Platform + "\x00" + m.PostID
			if at, ok := index[key]; ok {
				merged[at] = m
				continue
			}
			index[key] = len(merged)
			merged = append(merged, m)
		}
	}
	return merged
}

func count(n int64) *int64 { return &n }

// getJSON issues a GET and decodes the JSON body into out. Non-2xx
// responses become errors carrying the status code.
func getJSON(ctx context.Context, client Doer, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("metrics fetch returned %d: %s", resp.StatusCode, truncateBody(body))
	}
	return json.Unmarshal(body, out)
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return 20
	}
	if limit > max {
		return max
	}
	return limit
}
