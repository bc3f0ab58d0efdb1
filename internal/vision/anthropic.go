package vision

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"fuelapi/internal/apperr"
	"fuelapi/internal/model"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicClient extracts receipts with the Anthropic Messages API.
type AnthropicClient struct {
	settings
	client sdk.Client
	images ImageSource
}

var _ Extractor = (*AnthropicClient)(nil)

// NewAnthropicClient builds an Anthropic-backed extractor. The SDK's own
// retries are disabled; a failed call degrades the record instead.
func NewAnthropicClient(apiKey string, images ImageSource, opts ...Option) *AnthropicClient {
	s := newSettings("", defaultAnthropicModel, opts)
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(s.http),
		option.WithMaxRetries(0),
	}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	return &AnthropicClient{
		settings: s,
		client:   sdk.NewClient(reqOpts...),
		images:   images,
	}
}

// Extract downloads the receipt behind imageURL and asks the model to read it.
func (c *AnthropicClient) Extract(ctx context.Context, imageURL string) (*model.ExtractedData, error) {
	mediaType, encoded, err := loadImage(ctx, c.images, imageURL)
	if err != nil {
		return nil, err
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewTextBlock(receiptPrompt),
				sdk.NewImageBlockBase64(mediaType, encoded),
			),
		},
	})
	if err != nil {
		return nil, apperr.ExternalService(eris.Wrap(err, "vision: anthropic create message"))
	}

	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		zap.L().Warn("vision_no_text", zap.String("model", c.model), zap.String("stop_reason", string(msg.StopReason)))
		return Degraded(msg.RawJSON()), nil
	}
	return ParseReceipt(sb.String()), nil
}
