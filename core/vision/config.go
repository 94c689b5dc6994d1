package vision

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// Auth modes for the analysis service.
const (
	AuthIDToken = "idtoken"
	AuthStatic  = "static"
	AuthNone    = "none"
)

// Config holds configuration for the video analysis service.
type Config struct {
	// Endpoint is the base URL of the analysis service.
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:8000"`
	// TimeoutSeconds bounds one analysis call. Analysis runs a model over a whole
	// video, so this is generous.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"300"`
	// Scheme prefixes the object URI sent to the service (gs, s3).
	Scheme string `mapstructure:"scheme" default:"gs"`
	// Auth is idtoken, static or none.
	Auth string `mapstructure:"auth" default:"none"`
	// Token is the bearer token for static auth.
	Token string `mapstructure:"token" default:""`
	// Audience overrides the ID token audience. Defaults to Endpoint.
	Audience string `mapstructure:"audience" default:""`
}

// NewTokenSource builds the token source selected by cfg.Auth. It returns nil
// for unauthenticated calls.
func NewTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Auth)) {
	case AuthNone, "":
		return nil, nil
	case AuthStatic:
		if cfg.Token == "" {
			return nil, fmt.Errorf("vision auth %q requires vision.token", AuthStatic)
		}
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}), nil
	case AuthIDToken:
		audience := cfg.Audience
		if audience == "" {
			audience = strings.TrimRight(cfg.Endpoint, "/")
		}
		ts, err := idtoken.NewTokenSource(ctx, audience)
		if err != nil {
			return nil, fmt.Errorf("failed to create id token source: %w", err)
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("unknown vision auth mode: %s", cfg.Auth)
	}
}
