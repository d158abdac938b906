// Package claude wraps the Anthropic messages API as the model backend for
// app generation. It returns raw text only; parsing is the extractor's job.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestLogger records outbound model calls for quota/audit purposes. This
// is best-effort telemetry: a failure to log never fails the invocation, and
// a "pending" record left behind by a crashed call is acceptable.
type RequestLogger interface {
	LogRequestPending(ctx context.Context, userID uuid.UUID, promptChars int, useWebContext bool) (uuid.UUID, error)
	LogRequestCompleted(ctx context.Context, requestID uuid.UUID) error
	LogRequestFailed(ctx context.Context, requestID uuid.UUID, errMsg string) error
}

type InvokeRequest struct {
	UserID uuid.UUID
	Prompt string
	// FileURLs and UseWebContext are recorded with the request log; the
	// current backend does not fetch them server-side.
	FileURLs      []string
	UseWebContext bool
}

type Client struct {
	api         anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
	logger      RequestLogger
}

func NewClient(apiKey, model string, maxTokens int64, temperature float64, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		api:         anthropic.NewClient(opts...),
		model:       anthropic.Model(model),
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// SetRequestLogger attaches best-effort request telemetry.
func (c *Client) SetRequestLogger(logger RequestLogger) {
	c.logger = logger
}

// Invoke sends the built prompt to the model and returns the raw text
// payload. Transport and API failures are returned as errors so the caller
// can decide how to surface them; the text is never assumed to be JSON.
func (c *Client) Invoke(ctx context.Context, req InvokeRequest) (string, error) {
	var requestID uuid.UUID
	if c.logger != nil {
		id, err := c.logger.LogRequestPending(ctx, req.UserID, len(req.Prompt), req.UseWebContext)
		if err != nil {
			logrus.WithError(err).Warn("failed to record pending llm request")
		} else {
			requestID = id
		}
	}

	message, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		c.markFailed(ctx, requestID, err)
		return "", fmt.Errorf("claude request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := b.String()
	if text == "" {
		err := fmt.Errorf("claude returned no text content")
		c.markFailed(ctx, requestID, err)
		return "", err
	}

	if c.logger != nil && requestID != uuid.Nil {
		if err := c.logger.LogRequestCompleted(ctx, requestID); err != nil {
			logrus.WithError(err).Warn("failed to mark llm request completed")
		}
	}

	return text, nil
}

func (c *Client) markFailed(ctx context.Context, requestID uuid.UUID, cause error) {
	if c.logger == nil || requestID == uuid.Nil {
		return
	}
	if err := c.logger.LogRequestFailed(ctx, requestID, cause.Error()); err != nil {
		logrus.WithError(err).Warn("failed to mark llm request failed")
	}
}
