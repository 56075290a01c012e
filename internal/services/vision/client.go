package vision

import (
	"context"
	"strings"

	"clipline/internal/services"
	"clipline/internal/services/provider"
)

// Tag is a single label detected by the vision provider.
type Tag struct {
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence,omitempty"`
	Timestamp  *float64 `json:"timestamp,omitempty"`
}

// Client talks to the visual-analysis provider API.
type Client struct {
	http *provider.Client
}

// NewClient constructs a vision client using the supplied configuration.
func NewClient(cfg provider.Config, opts ...provider.Option) *Client {
	return &Client{http: provider.NewClient(cfg, opts...)}
}

type analyzeRequest struct {
	MediaURL string `json:"media_url"`
}

type analyzeResponse struct {
	Tags []Tag `json:"tags"`
}

// Analyze submits mediaURL for visual analysis and returns the detected tags.
// An empty tag list is a valid outcome for footage with nothing recognizable.
func (c *Client) Analyze(ctx context.Context, mediaURL string) ([]Tag, error) {
	if c == nil || c.http == nil {
		return nil, services.Wrap(services.ErrProviderFailure, "vision", "analyze", "client not configured", nil)
	}
	if strings.TrimSpace(mediaURL) == "" {
		return nil, services.Wrap(services.ErrValidation, "vision", "analyze", "media url is required", nil)
	}

	var resp analyzeResponse
	if err := c.http.PostJSON(ctx, "/v1/analyze", analyzeRequest{MediaURL: mediaURL}, &resp); err != nil {
		return nil, services.Wrap(services.ErrProviderFailure, "vision", "analyze", "analysis request failed", err)
	}
	return resp.Tags, nil
}
