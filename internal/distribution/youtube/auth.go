package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// uploadScopes are the minimum grants the upload path needs.
var uploadScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube",
}

// Auth holds the OAuth2 flow state for the YouTube Data API.
type Auth struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenPath string
}

type AuthOptions struct {
	ClientID     string
	ClientSecret string
	TokenPath    string
	// RedirectURL is where Google sends the authorization code; the auth
	// command binds its callback server to this address.
	RedirectURL string
}

func NewAuth(opts AuthOptions) *Auth {
	if opts.TokenPath == "" {
		opts.TokenPath = "./youtube_token.json"
	}
	if opts.RedirectURL == "" {
		opts.RedirectURL = "http://localhost:8090"
	}
	return &Auth{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Scopes:       uploadScopes,
			Endpoint:     google.Endpoint,
		},
		tokenPath: opts.TokenPath,
	}
}

// RedirectURL reports the callback address the flow was configured with.
func (a *Auth) RedirectURL() string {
	return a.config.RedirectURL
}

func (a *Auth) GetAuthURL() string {
	return a.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

func (a *Auth) Exchange(ctx context.Context, code string) error {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	a.token = token
	return a.SaveToken()
}

func (a *Auth) LoadToken() error {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	a.token = &token
	return nil
}

func (a *Auth) SaveToken() error {
	if a.token == nil {
		return fmt.Errorf("no token to save")
	}
	data, err := json.Marshal(a.token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(a.tokenPath, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// HasToken reports whether a usable token is available, loading it from
// disk on first call.
func (a *Auth) HasToken() bool {
	if a.token != nil {
		return true
	}
	return a.LoadToken() == nil
}

// Client returns an HTTP client that refreshes the token as needed and
// persists refreshed tokens back to disk.
func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	if a.token == nil {
		if err := a.LoadToken(); err != nil {
			return nil, fmt.Errorf("no token available: %w", err)
		}
	}
	source := a.config.TokenSource(ctx, a.token)
	refreshed, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if refreshed.AccessToken != a.token.AccessToken {
		a.token = refreshed
		if err := a.SaveToken(); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}
	}
	return oauth2.NewClient(ctx, source), nil
}
