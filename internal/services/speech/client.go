package speech

import (
	"context"
	"strings"

	"clipline/internal/services"
	"clipline/internal/services/provider"
)

// Segment is one timed span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result holds the transcript produced for a single language.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Client talks to the speech-to-text provider API.
type Client struct {
	http *provider.Client
}

// NewClient constructs a speech client using the supplied configuration.
func NewClient(cfg provider.Config, opts ...provider.Option) *Client {
	return &Client{http: provider.NewClient(cfg, opts...)}
}

type transcribeRequest struct {
	MediaURL  string   `json:"media_url"`
	Languages []string `json:"languages"`
}

type transcribeResponse struct {
	Results map[string]Result `json:"results"`
}

type languagesResponse struct {
	Languages []string `json:"languages"`
}

// Transcribe requests transcripts for mediaURL in the given languages and
// returns the provider's per-language results keyed by language code.
func (c *Client) Transcribe(ctx context.Context, mediaURL string, languages []string) (map[string]Result, error) {
	if c == nil || c.http == nil {
		return nil, services.Wrap(services.ErrProviderFailure, "speech", "transcribe", "client not configured", nil)
	}
	if strings.TrimSpace(mediaURL) == "" {
		return nil, services.Wrap(services.ErrValidation, "speech", "transcribe", "media url is required", nil)
	}
	if len(languages) == 0 {
		return nil, services.Wrap(services.ErrValidation, "speech", "transcribe", "at least one language is required", nil)
	}

	var resp transcribeResponse
	req := transcribeRequest{MediaURL: mediaURL, Languages: languages}
	if err := c.http.PostJSON(ctx, "/v1/transcripts", req, &resp); err != nil {
		return nil, services.Wrap(services.ErrProviderFailure, "speech", "transcribe", "transcription request failed", err)
	}
	if len(resp.Results) == 0 {
		return nil, services.Wrap(services.ErrProviderFailure, "speech", "transcribe", "provider returned no results", nil)
	}
	return resp.Results, nil
}

// SupportedLanguages reports the language codes the provider can transcribe.
func (c *Client) SupportedLanguages(ctx context.Context) ([]string, error) {
	if c == nil || c.http == nil {
		return nil, services.Wrap(services.ErrProviderFailure, "speech", "languages", "client not configured", nil)
	}
	var resp languagesResponse
	if err := c.http.GetJSON(ctx, "/v1/languages", &resp); err != nil {
		return nil, services.Wrap(services.ErrProviderFailure, "speech", "languages", "language listing failed", err)
	}
	return resp.Languages, nil
}
