// Package client is a typed request/response client for the remote interview service.
// It performs no retries; callers decide whether to re-invoke a failed call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/metrics"
	"github.com/AhmedIzaan/ai-interview-coach/internal/schema"
)

const (
	opStart    = "start_interview"
	opSubmit   = "process_answer"
	opFeedback = "get_feedback"

	maxErrorBody = 4 << 10
)

// Config holds client configuration.
type Config struct {
	BaseURL string        // e.g. http://127.0.0.1:8000/api
	Timeout time.Duration // 0 keeps the transport default
}

// Client talks to the interview service over JSON/HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validator  *schema.Validator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records call latency and failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("missing parameter: cfg.BaseURL")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	validator, err := schema.New()
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		validator: validator,
		logger:    logging.WithComponent("session-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StartInterview asks the service for a new session and its first question.
func (c *Client) StartInterview(ctx context.Context, role string, tone models.Tone) (*StartResult, error) {
	var resp questionResponse
	err := c.do(ctx, opStart, schema.KindStartInterview, http.MethodPost, "/start_interview",
		startRequest{Role: role, Tone: string(tone)}, &resp)
	if err != nil {
		return nil, err
	}

	current := 0
	if resp.CurrentQuestion != nil {
		current = *resp.CurrentQuestion
	}
	return &StartResult{
		SessionID:       resp.SessionID,
		FirstQuestion:   resp.NextQuestion,
		TotalQuestions:  resp.TotalQuestions,
		CurrentQuestion: current,
	}, nil
}

// SubmitAnswer sends the answer for req.Step.
func (c *Client) SubmitAnswer(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	var resp questionResponse
	err := c.do(ctx, opSubmit, schema.KindProcessAnswer, http.MethodPost, "/process_answer", answerRequest{
		Answer:           req.Answer,
		Step:             req.Step,
		Role:             req.Role,
		Tone:             string(req.Tone),
		SessionID:        req.SessionID,
		PreviousQuestion: req.PreviousQuestion,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		IsComplete:   resp.IsComplete,
		NextQuestion: resp.NextQuestion,
		NextStep:     resp.CurrentQuestion,
	}, nil
}

// GetFinalFeedback fetches the aggregated evaluation for a completed session.
func (c *Client) GetFinalFeedback(ctx context.Context, sessionID string) (*FeedbackResult, error) {
	var resp feedbackResponse
	err := c.do(ctx, opFeedback, schema.KindGetFeedback, http.MethodGet,
		"/get_feedback/"+url.PathEscape(sessionID), nil, &resp)
	if err != nil {
		return nil, err
	}

	return &FeedbackResult{
		SessionID: resp.SessionID,
		Role:      resp.Role,
		Record: models.FeedbackRecord{
			OverallScore:     resp.Feedback.OverallScore,
			Sentiment:        resp.Feedback.Sentiment,
			Strengths:        resp.Feedback.Strengths,
			Improvements:     resp.Feedback.Improvements,
			DetailedFeedback: resp.Feedback.DetailedFeedback,
			FinalVerdict:     resp.Feedback.FinalVerdict,
			Answers:          resp.Answers,
		},
	}, nil
}

func (c *Client) do(ctx context.Context, op string, kind schema.Kind, method, path string, in, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	defer func() {
		c.metrics.RecordServiceCall(op, err, time.Since(start).Seconds())
		if err != nil {
			c.logger.Warn().Err(err).Str("op", op).Str("requestId", requestID).Msg("Interview service call failed")
		}
	}()

	var body io.Reader
	if in != nil {
		payload, mErr := json.Marshal(in)
		if mErr != nil {
			return &ServiceError{Op: op, Err: mErr}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", bytes.TrimSpace(msg))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if err := c.validator.Validate(kind, raw); err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Str("op", op).
		Str("requestId", requestID).
		Dur("duration", time.Since(start)).
		Msg("Interview service call completed")
	return nil
}
