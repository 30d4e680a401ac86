package app

import (
	"context"
	"log/slog"

	"autoreel/internal/distribution"
	"autoreel/internal/distribution/facebook"
	"autoreel/internal/distribution/linkedin"
	"autoreel/internal/distribution/tiktok"
	"autoreel/internal/distribution/twitter"
	"autoreel/internal/distribution/youtube"
	"autoreel/internal/history"
	"autoreel/internal/knowledge"
	"autoreel/internal/script/groq"
	"autoreel/internal/videogen"
	"autoreel/internal/workflow"
	"autoreel/pkg/config"
	"autoreel/pkg/prompts"
)

// BuildService wires the full dependency graph from config. Every
// platform adapter is constructed regardless of configured credentials;
// unconfigured ones surface auth failures in their upload results
// instead of being skipped.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	scriptClient, err := groq.NewClient(cfg.GroqAPIKey, cfg.Groq.Model, p)
	if err != nil {
		return nil, err
	}

	videoClient := videogen.NewClient(videogen.Options{
		BaseURL: cfg.VideoAPIBaseURL,
		APIKey:  cfg.VideoAPIKey,
		Timeout: cfg.VideoTimeout(),
	})
	if !videoClient.Configured() {
		slog.Info("no video provider configured, using deterministic mock renders")
	}

	ytAuth := youtube.NewAuth(youtube.AuthOptions{
		ClientID:     cfg.YouTubeClientID,
		ClientSecret: cfg.YouTubeClientSecret,
		TokenPath:    cfg.YouTubeTokenPath,
		RedirectURL:  cfg.YouTubeRedirectURL,
	})

	adapters := []distribution.Adapter{
		tiktok.NewClient(cfg.TikTokAccessToken),
		youtube.NewClient(youtube.Options{Auth: ytAuth, Privacy: cfg.Platforms.PrivacyStatus}),
		linkedin.NewClient(cfg.LinkedInAccessToken),
		facebook.NewClient(cfg.FacebookPageID, cfg.FacebookAccessToken),
		twitter.NewClient(twitter.Credentials{
			APIKey:       cfg.TwitterAPIKey,
			APISecret:    cfg.TwitterAPISecret,
			AccessToken:  cfg.TwitterAccessToken,
			AccessSecret: cfg.TwitterAccessSecret,
		}),
	}
	router := distribution.NewRouter(adapters, distribution.RouterOptions{
		Timeout: cfg.UploadTimeout(),
	})

	var store history.Store = history.Discard{}
	if !cfg.History.Disabled {
		store = history.NewLocalStore(cfg.History.Dir)
		if cfg.GCSBucket != "" {
			archive, err := history.NewGCSArchive(ctx, cfg.GCSBucket, "reels")
			if err != nil {
				return nil, err
			}
			store = history.Tee{Local: store, Remote: archive}
		}
	}

	graph := knowledge.NewLogGraph(nil)

	orchestrator := workflow.New(workflow.Options{
		Scripts:      scriptClient,
		Videos:       videoClient,
		Router:       router,
		Store:        store,
		Graph:        graph,
		PollInterval: cfg.VideoPollInterval(),
		VideoTimeout: cfg.VideoTimeout(),
	})

	return NewService(ServiceOptions{
		Config:       cfg,
		Orchestrator: orchestrator,
		Scripts:      scriptClient,
		Captions:     scriptClient,
		Videos:       videoClient,
		Router:       router,
		Store:        store,
		Graph:        graph,
		YouTubeAuth:  ytAuth,
	}), nil
}
