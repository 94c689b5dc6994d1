package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inventory-ledger/core/reconcile"

	"golang.org/x/oauth2"
)

const (
	analyzePath        = "analyze_movement"
	defaultHTTPTimeout = 300 * time.Second
	maxErrorBody       = 512
)

// Analyzer reports what moved in a stored video.
type Analyzer interface {
	Analyze(ctx context.Context, objectURI string) (*Movement, error)
}

// Movement is the analysis result for one video.
type Movement struct {
	Added   []reconcile.Observation `json:"added"`
	Removed []reconcile.Observation `json:"removed"`
	// Discarded counts reported items without a name. They are never resolved
	// but still count toward the alert threshold.
	Discarded int `json:"discarded,omitempty"`
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vision request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// ErrServiceReported is wrapped when the service returns an "error" field.
var ErrServiceReported = errors.New("vision service reported an error")

// Client calls the analysis service over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	tokens     oauth2.TokenSource
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client. ts may be nil for unauthenticated services.
func NewClient(cfg Config, ts oauth2.TokenSource, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     ts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type analyzeRequest struct {
	GCSPath string `json:"gcsPath"`
}

type analyzeResponse struct {
	Added   []item `json:"added"`
	Removed []item `json:"removed"`
	Error   string `json:"error"`
}

// item accepts both {"name":..,"category":..} and a bare name string.
type item reconcile.Observation

func (i *item) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*i = item{Name: name, Category: reconcile.DefaultCategory}
		return nil
	}
	var obj struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}
	*i = item{Name: obj.Name, Category: obj.Category}
	return nil
}

// Analyze sends objectURI to the service and decodes the movement. Items with an
// empty name are dropped and counted in Discarded. No retry is attempted.
func (c *Client) Analyze(ctx context.Context, objectURI string) (*Movement, error) {
	if strings.TrimSpace(objectURI) == "" {
		return nil, errors.New("vision analyze: object uri required")
	}
	endpoint, err := url.JoinPath(c.endpoint, analyzePath)
	if err != nil {
		return nil, fmt.Errorf("vision request: build url: %w", err)
	}
	encoded, err := json.Marshal(analyzeRequest{GCSPath: objectURI})
	if err != nil {
		return nil, fmt.Errorf("vision request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("vision request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("vision request: fetch token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vision request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("vision response: decode: %w", err)
	}
	if strings.TrimSpace(parsed.Error) != "" {
		return nil, fmt.Errorf("%w: %s", ErrServiceReported, parsed.Error)
	}

	added, droppedAdded := toObservations(parsed.Added)
	removed, droppedRemoved := toObservations(parsed.Removed)
	return &Movement{
		Added:     added,
		Removed:   removed,
		Discarded: droppedAdded + droppedRemoved,
	}, nil
}

func toObservations(items []item) ([]reconcile.Observation, int) {
	out := make([]reconcile.Observation, 0, len(items))
	dropped := 0
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			dropped++
			continue
		}
		out = append(out, reconcile.Observation(it))
	}
	return out, dropped
}
