package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"autoreel/internal/analytics"
	"autoreel/pkg/config"
)

var analyticsLimit int

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Fetch engagement metrics for published posts",
	Long:  `Pull likes, comments, views, and shares for recent posts from every platform with analytics credentials configured.`,
	RunE:  runAnalytics,
}

func init() {
	analyticsCmd.Flags().IntVarP(&analyticsLimit, "limit", "n", 20, "Posts to fetch per platform")
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	fetcher := analytics.NewFetcher([]analytics.Source{
		analytics.NewInstagramSource(analytics.InstagramOptions{
			AccountID:   cfg.InstagramAccountID,
			AccessToken: cfg.InstagramAccessToken,
		}),
		analytics.NewFacebookSource(analytics.FacebookOptions{
			PageID:      cfg.FacebookPageID,
			AccessToken: cfg.FacebookAccessToken,
		}),
		analytics.NewYouTubeSource(analytics.YouTubeOptions{
			APIKey:    cfg.YouTubeAPIKey,
			ChannelID: cfg.YouTubeChannelID,
		}),
		analytics.NewTwitterSource(analytics.TwitterOptions{
			BearerToken: cfg.TwitterBearerToken,
			Username:    cfg.TwitterUsername,
			UserID:      cfg.TwitterUserID,
		}),
	}, nil)

	configured := fetcher.Configured()
	if len(configured) == 0 {
		fmt.Println(dimStyle.Render("No analytics credentials configured."))
		fmt.Println(dimStyle.Render("Set YOUTUBE_API_KEY, TWITTER_BEARER_TOKEN, or the Graph API tokens in .env."))
		return nil
	}

	var metrics []analytics.Metric
	err = spinner.New().
		Title(fmt.Sprintf("Fetching metrics from %s", strings.Join(configured, ", "))).
		Action(func() {
			metrics = fetcher.FetchAll(ctx, analyticsLimit)
		}).
		Run()
	if err != nil {
		return err
	}

	printMetrics(metrics)
	return nil
}

func printMetrics(metrics []analytics.Metric) {
	if len(metrics) == 0 {
		fmt.Println(dimStyle.Render("No posts found."))
		return
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		if metrics[i].Platform != metrics[j].Platform {
			return metrics[i].Platform < metrics[j].Platform
		}
		return metrics[i].CreatedAt > metrics[j].CreatedAt
	})

	platform := ""
	for _, m := range metrics {
		if m.Platform != platform {
			platform = m.Platform
			fmt.Println()
			fmt.Println(sectionStyle.Render(platform))
		}
		fmt.Printf("  %-24s views %-8s likes %-8s comments %-8s shares %s\n",
			m.PostID,
			formatCount(m.Views),
			formatCount(m.Likes),
			formatCount(m.Comments),
			formatCount(m.Shares),
		)
		if m.Permalink != "" {
			fmt.Println(dimStyle.Render("    " + m.Permalink))
		}
	}
	fmt.Println()
}

// formatCount renders a counter the platform may not expose.
func formatCount(n *int64) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
