package triage

import (
	"context"

	"github.com/acutecare/triage-assistant/pkg/logging"
)

// FallbackLLMClient wraps a primary LLM client with a secondary provider.
// If the primary fails, it retries with the secondary before the classifier's
// deterministic fallback record kicks in.
type FallbackLLMClient struct {
	primary   LLMClient
	secondary LLMClient
	logger    *logging.Logger
}

// NewFallbackLLMClient creates a fallback-enabled LLM client. If secondary is
// nil, the client only uses the primary provider.
func NewFallbackLLMClient(primary, secondary LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Complete sends a completion request to the primary LLM, retrying with the
// secondary provider on failure.
func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary LLM failed, attempting secondary",
		"error", err.Error(),
		"secondary_available", c.secondary != nil,
	)

	if c.secondary == nil {
		return LLMResponse{}, err
	}

	secondResp, secondErr := c.secondary.Complete(ctx, req)
	if secondErr != nil {
		c.logger.Error("secondary LLM also failed",
			"primary_error", err.Error(),
			"secondary_error", secondErr.Error(),
		)
		return LLMResponse{}, secondErr
	}

	c.logger.Info("secondary LLM succeeded after primary failure")
	return secondResp, nil
}
