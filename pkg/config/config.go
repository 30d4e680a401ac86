package config

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath    = "config.yaml"
	defaultGroqModel     = "llama-3.1-8b-instant"
	defaultTone          = "Friendly"
	defaultLanguage      = "English"
	defaultDuration      = 60
	defaultVideoTimeout  = 120
	defaultPollInterval  = 3
	defaultUploadTimeout = 60
	defaultHistoryDir    = "./reels"
	defaultPrivacyStatus = "private"
	defaultTokenPath     = "./youtube_token.json"
	defaultRedirectURL   = "http://localhost:8090"
	defaultCaptionCount  = 3
)

// DefaultPlatforms are the targets offered when none are configured.
var DefaultPlatforms = []string{"Instagram", "TikTok", "YouTube", "LinkedIn", "Facebook", "Twitter/X"}

type Config struct {
	// Credentials, env only (never config.yaml).
	GroqAPIKey          string
	VideoAPIBaseURL     string
	VideoAPIKey         string
	TikTokAccessToken   string
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeTokenPath    string
	YouTubeRedirectURL  string
	LinkedInAccessToken string
	FacebookPageID      string
	FacebookAccessToken string
	TwitterAPIKey       string
	TwitterAPISecret    string
	TwitterAccessToken  string
	TwitterAccessSecret string
	GCSBucket           string
	GoogleCloudProject  string

	// Analytics credentials; read-only API access for post metrics.
	YouTubeAPIKey        string
	YouTubeChannelID     string
	TwitterBearerToken   string
	TwitterUsername      string
	TwitterUserID        string
	InstagramAccountID   string
	InstagramAccessToken string

	Groq      GroqConfig      `yaml:"groq"`
	Video     VideoConfig     `yaml:"video"`
	Content   ContentConfig   `yaml:"content"`
	Platforms PlatformsConfig `yaml:"platforms"`
	History   HistoryConfig   `yaml:"history"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type VideoConfig struct {
	TimeoutSeconds      int `yaml:"timeout_seconds"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

type ContentConfig struct {
	DefaultTone     string `yaml:"default_tone"`
	DefaultLanguage string `yaml:"default_language"`
	DefaultDuration int    `yaml:"default_duration"`
	CaptionOptions  int    `yaml:"caption_options"`
}

type PlatformsConfig struct {
	Default              []string `yaml:"default"`
	PrivacyStatus        string   `yaml:"privacy_status"`
	UploadTimeoutSeconds int      `yaml:"upload_timeout_seconds"`
}

type HistoryConfig struct {
	Disabled bool   `yaml:"disabled"`
	Dir      string `yaml:"dir"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		VideoAPIBaseURL:     os.Getenv("VIDEO_API_BASE_URL"),
		VideoAPIKey:         os.Getenv("VIDEO_API_KEY"),
		TikTokAccessToken:   os.Getenv("TIKTOK_ACCESS_TOKEN"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeTokenPath:    getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
		YouTubeRedirectURL:  getEnvOrDefault("YOUTUBE_REDIRECT_URL", defaultRedirectURL),
		LinkedInAccessToken: os.Getenv("LINKEDIN_ACCESS_TOKEN"),
		FacebookPageID:      os.Getenv("FACEBOOK_PAGE_ID"),
		FacebookAccessToken: os.Getenv("FACEBOOK_ACCESS_TOKEN"),
		TwitterAPIKey:       os.Getenv("TWITTER_API_KEY"),
		TwitterAPISecret:    os.Getenv("TWITTER_API_SECRET"),
		TwitterAccessToken:  os.Getenv("TWITTER_ACCESS_TOKEN"),
		TwitterAccessSecret: os.Getenv("TWITTER_ACCESS_SECRET"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
		GoogleCloudProject:  os.Getenv("GOOGLE_CLOUD_PROJECT"),

		YouTubeAPIKey:        os.Getenv("YOUTUBE_API_KEY"),
		YouTubeChannelID:     os.Getenv("YOUTUBE_CHANNEL_ID"),
		TwitterBearerToken:   os.Getenv("TWITTER_BEARER_TOKEN"),
		TwitterUsername:      os.Getenv("TWITTER_USERNAME"),
		TwitterUserID:        os.Getenv("TWITTER_USER_ID"),
		InstagramAccountID:   os.Getenv("INSTAGRAM_BUSINESS_ACCOUNT_ID"),
		InstagramAccessToken: os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	if cfg.GoogleCloudProject != "" {
		if err := fillFromSecretManager(ctx, cfg); err != nil {
			return nil, err
		}
	}

	// The page token doubles as the Instagram Graph token.
	if cfg.InstagramAccessToken == "" {
		cfg.InstagramAccessToken = cfg.FacebookAccessToken
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
	if cfg.Video.TimeoutSeconds == 0 {
		cfg.Video.TimeoutSeconds = defaultVideoTimeout
	}
	if cfg.Video.PollIntervalSeconds == 0 {
		cfg.Video.PollIntervalSeconds = defaultPollInterval
	}
	if cfg.Content.DefaultTone == "" {
		cfg.Content.DefaultTone = defaultTone
	}
	if cfg.Content.DefaultLanguage == "" {
		cfg.Content.DefaultLanguage = defaultLanguage
	}
	if cfg.Content.DefaultDuration == 0 {
		cfg.Content.DefaultDuration = defaultDuration
	}
	if cfg.Content.CaptionOptions == 0 {
		cfg.Content.CaptionOptions = defaultCaptionCount
	}
	if len(cfg.Platforms.Default) == 0 {
		cfg.Platforms.Default = append([]string(nil), DefaultPlatforms...)
	}
	if cfg.Platforms.PrivacyStatus == "" {
		cfg.Platforms.PrivacyStatus = defaultPrivacyStatus
	}
	if cfg.Platforms.UploadTimeoutSeconds == 0 {
		cfg.Platforms.UploadTimeoutSeconds = defaultUploadTimeout
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = defaultHistoryDir
	}
}

func (c *Config) VideoTimeout() time.Duration {
	return time.Duration(c.Video.TimeoutSeconds) * time.Second
}

func (c *Config) VideoPollInterval() time.Duration {
	return time.Duration(c.Video.PollIntervalSeconds) * time.Second
}

func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Platforms.UploadTimeoutSeconds) * time.Second
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
