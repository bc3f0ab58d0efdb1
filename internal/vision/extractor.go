// Package vision reads fuel receipts with an external multimodal model.
package vision

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"fuelapi/internal/config"
	"fuelapi/internal/model"
)

// Extractor turns a stored receipt image into structured data.
type Extractor interface {
	Extract(ctx context.Context, imageURL string) (*model.ExtractedData, error)
}

// ImageSource resolves a stored image URL to its bytes. Unknown URLs fail
// with an invalid reference error.
type ImageSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// New selects the provider named in cfg.
func New(cfg config.VisionConfig, images ImageSource) (Extractor, error) {
	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	switch cfg.Provider {
	case config.VisionProviderMistral, "":
		return NewChatClient(cfg.APIKey, images,
			WithBaseURL(cfg.BaseURL),
			WithModel(cfg.Model),
			WithMaxTokens(cfg.MaxTokens),
			WithHTTPClient(hc),
			WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		), nil
	case config.VisionProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, images,
			WithBaseURL(cfg.BaseURL),
			WithModel(cfg.Model),
			WithMaxTokens(cfg.MaxTokens),
			WithHTTPClient(hc),
			WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		), nil
	default:
		return nil, eris.Errorf("vision: unknown provider %q", cfg.Provider)
	}
}

// imageFormat infers the MIME subtype from the URL.
func imageFormat(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, ".png"):
		return "png"
	case strings.Contains(lower, ".gif"):
		return "gif"
	case strings.Contains(lower, ".webp"):
		return "webp"
	default:
		return "jpeg"
	}
}

func loadImage(ctx context.Context, images ImageSource, url string) (mediaType, encoded string, err error) {
	data, err := images.Fetch(ctx, url)
	if err != nil {
		return "", "", err
	}
	return "image/" + imageFormat(url), base64.StdEncoding.EncodeToString(data), nil
}

func loadDataURI(ctx context.Context, images ImageSource, url string) (string, error) {
	mediaType, encoded, err := loadImage(ctx, images, url)
	if err != nil {
		return "", err
	}
	return "data:" + mediaType + ";base64," + encoded, nil
}
