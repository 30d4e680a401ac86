package config

import (
	"context"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// fillFromSecretManager backfills credentials that are absent from the
// environment. Missing secrets are skipped; only client construction or
// transport failures abort the load.
func fillFromSecretManager(ctx context.Context, cfg *Config) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	targets := []struct {
		name string
		dest *string
	}{
		{"GROQ_API_KEY", &cfg.GroqAPIKey},
		{"VIDEO_API_KEY", &cfg.VideoAPIKey},
		{"TIKTOK_ACCESS_TOKEN", &cfg.TikTokAccessToken},
		{"YOUTUBE_CLIENT_ID", &cfg.YouTubeClientID},
		{"YOUTUBE_CLIENT_SECRET", &cfg.YouTubeClientSecret},
		{"LINKEDIN_ACCESS_TOKEN", &cfg.LinkedInAccessToken},
		{"FACEBOOK_ACCESS_TOKEN", &cfg.FacebookAccessToken},
		{"TWITTER_API_KEY", &cfg.TwitterAPIKey},
		{"TWITTER_API_SECRET", &cfg.TwitterAPISecret},
		{"TWITTER_ACCESS_TOKEN", &cfg.TwitterAccessToken},
		{"TWITTER_ACCESS_SECRET", &cfg.TwitterAccessSecret},
		{"YOUTUBE_API_KEY", &cfg.YouTubeAPIKey},
		{"TWITTER_BEARER_TOKEN", &cfg.TwitterBearerToken},
		{"INSTAGRAM_ACCESS_TOKEN", &cfg.InstagramAccessToken},
	}

	for _, target := range targets {
		if *target.dest != "" {
			continue
		}

		resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", cfg.GoogleCloudProject, target.name),
		})
		if err != nil {
			slog.Debug("Secret not available", "name", target.name, "error", err)
			continue
		}

		*target.dest = string(resp.GetPayload().GetData())
	}

	return nil
}
