package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/common/logger"
	"vehicle-finance-bot/internal/common/metrics"
)

var (
	ErrResponderTimeout = errors.New("AI_RESPONDER_TIMEOUT")
	ErrResponderFailed  = errors.New("AI_RESPONDER_FAILED")
)

// Config for the GenAI-backed responder.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

// GenAIResponder answers off-script messages. Scripted FAQ matches are
// served locally; everything else is posted to the GenAI endpoint with a
// bounded number of retries and exponential backoff.
type GenAIResponder struct {
	config *Config
	client *http.Client
	faq    FAQ
	logger logger.Logger
}

func NewGenAIResponder(config *Config, faq FAQ, log logger.Logger) *GenAIResponder {
	return &GenAIResponder{
		config: config,
		client: &http.Client{},
		faq:    faq,
		logger: log.WithFields(map[string]interface{}{"component": "ai-responder"}),
	}
}

func (r *GenAIResponder) Respond(ctx context.Context, message string) (string, error) {
	if answer, ok := scriptedAnswer(message, r.faq); ok {
		return answer, nil
	}

	metrics.AIFallbacks.Inc()

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	requestBody := map[string]interface{}{
		"prompt":      message,
		"max_tokens":  r.config.MaxTokens,
		"temperature": r.config.Temperature,
	}
	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.AIFailures.Inc()
				return "", ErrResponderTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", r.config.BaseURL+"/api/ai/generate", bytes.NewBuffer(body))
		if err != nil {
			metrics.AIFailures.Inc()
			return "", fmt.Errorf("%w: %v", ErrResponderFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = r.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			metrics.AIFailures.Inc()
			return "", ErrResponderTimeout
		}
	}

	if lastErr != nil {
		metrics.AIFailures.Inc()
		r.logger.Warn("genai call failed", map[string]interface{}{
			"error":    lastErr.Error(),
			"attempts": r.config.MaxRetries + 1,
		})
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrResponderTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrResponderFailed, lastErr)
	}

	if resp == nil {
		metrics.AIFailures.Inc()
		return "", fmt.Errorf("%w: no successful response after retries", ErrResponderFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		metrics.AIFailures.Inc()
		return "", fmt.Errorf("%w: decode response: %v", ErrResponderFailed, err)
	}
	if apiResponse.Text == "" {
		metrics.AIFailures.Inc()
		return "", apperrors.NewAIResponderFailed(errors.New("empty text in response"))
	}

	return apiResponse.Text, nil
}
