package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fuelapi/internal/apperr"
	"fuelapi/internal/model"
)

const (
	defaultBaseURL   = "https://api.mistral.ai/v1"
	defaultModel     = "pixtral-12b-2409"
	defaultMaxTokens = 300
)

type chatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// settings are shared by every provider.
type settings struct {
	baseURL   string
	model     string
	maxTokens int
	http      *http.Client
	limiter   *rate.Limiter
}

// Option configures a provider client.
type Option func(*settings)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		if url != "" {
			s.baseURL = url
		}
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(s *settings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithMaxTokens overrides the completion token limit.
func WithMaxTokens(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithHTTPClient overrides the http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithRateLimit caps outbound model calls at perSecond with the given burst.
// A non-positive rate leaves calls unthrottled.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *settings) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// wait blocks until the limiter admits one call or ctx ends.
func (s *settings) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return apperr.ExternalService(eris.Wrap(err, "vision: rate limit wait"))
	}
	return nil
}

func newSettings(baseURL, model string, opts []Option) settings {
	s := settings{
		baseURL:   baseURL,
		model:     model,
		maxTokens: defaultMaxTokens,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// ChatClient extracts receipts through an OpenAI-style chat completions API
// that accepts image_url content parts.
type ChatClient struct {
	settings
	apiKey string
	images ImageSource
}

var _ Extractor = (*ChatClient)(nil)

// NewChatClient builds a client that reads receipt bytes from images.
func NewChatClient(apiKey string, images ImageSource, opts ...Option) *ChatClient {
	return &ChatClient{
		settings: newSettings(defaultBaseURL, defaultModel, opts),
		apiKey:   apiKey,
		images:   images,
	}
}

// Extract downloads the receipt behind imageURL and asks the model to read it.
func (c *ChatClient) Extract(ctx context.Context, imageURL string) (*model.ExtractedData, error) {
	dataURI, err := loadDataURI(ctx, c.images, imageURL)
	if err != nil {
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	resp, body, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: []ContentPart{TextPart(receiptPrompt), ImagePart(dataURI)},
		}},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		zap.L().Warn("vision_no_choices", zap.String("model", c.model))
		return Degraded(string(body)), nil
	}
	content := resp.Choices[0].Message.Content
	zap.L().Debug("vision_response", zap.String("model", c.model), zap.String("content", content))
	return ParseReceipt(content), nil
}

func (c *ChatClient) complete(ctx context.Context, req chatRequest) (*chatResponse, []byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, apperr.ExternalService(eris.Wrap(err, "vision: marshal request"))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, apperr.ExternalService(eris.Wrap(err, "vision: create request"))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, nil, apperr.ExternalService(eris.Wrap(err, "vision: send request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperr.ExternalService(eris.Wrap(err, "vision: read response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		zap.L().Error("vision_api_error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return nil, body, apperr.ExternalService(eris.Errorf("vision: API returned %d: %s", resp.StatusCode, string(body)))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, body, apperr.ExternalService(eris.Wrap(err, "vision: unmarshal response"))
	}
	return &out, body, nil
}
