package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	genai "google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-3-pro-preview"

var ErrMissingAPIKey = errors.New("llm: api key is empty")

// GeminiClient calls the Gemini API through the official genai client.
// A fresh genai.Client is opened per call with the key carried by the
// request, so a rotated key applies to the very next call. It makes one
// attempt per call; logging and tracing come from Middleware.
type GeminiClient struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

type GeminiOption func(*GeminiClient)

// WithBaseURL points the client at a non-default endpoint (proxies, tests).
func WithBaseURL(u string) GeminiOption {
	return func(g *GeminiClient) { g.baseURL = strings.TrimSpace(u) }
}

func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) { g.httpClient = c }
}

func NewGeminiClient(model string, opts ...GeminiOption) *GeminiClient {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	g := &GeminiClient{model: model}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	cfg := &genai.ClientConfig{
		APIKey:     req.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("init gemini client: %w", err)
	}

	resp, err := cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Schema,
		},
	)
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate. An empty reply
// is returned as "" and left for the caller's decoder to reject.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
