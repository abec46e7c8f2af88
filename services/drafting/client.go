// Package drafting requests legal document text from a chat-completion service.
package drafting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// SystemPrompt frames every request as formal legal drafting.
const SystemPrompt = "Você é um assistente jurídico especializado. Responda com linguagem técnica formal."

const (
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 30 * time.Second
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "law_office_drafting_request_seconds",
	Help:    "Latency of each drafting attempt by outcome.",
	Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
}, []string{"outcome"})

// RetryPolicy controls how Generate repeats failed attempts.
type RetryPolicy struct {
	MaxAttempts     int
	Delay           time.Duration // wait between attempts
	RetryIncomplete bool          // also retry responses without choices
}

// DefaultRetryPolicy is three immediate attempts, retrying timeouts and transport errors only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3}
}

// Options configures a Client.
type Options struct {
	APIKey    string
	Endpoint  string
	Model     string
	Timeout   time.Duration // per attempt
	Retry     RetryPolicy
	Transport http.RoundTripper
}

// Request is one drafting call.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

func (r Request) validate() error {
	if r.Temperature < 0 || r.Temperature > 1 {
		return fmt.Errorf("%w: temperature %.2f outside [0, 1]", ErrInvalidRequest, r.Temperature)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", ErrInvalidRequest)
	}
	return nil
}

// Result is the generated text plus telemetry. Latency sums every attempt.
type Result struct {
	Text     string
	Latency  time.Duration
	Attempts int
}

// Client calls the drafting service.
type Client struct {
	http     *resty.Client
	endpoint string
	model    string
	retry    RetryPolicy
}

// New creates a drafting client.
func New(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry.MaxAttempts = 1
	}

	c := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(opts.APIKey)
	if opts.Transport != nil {
		c.SetTransport(opts.Transport)
	}

	return &Client{http: c, endpoint: opts.Endpoint, model: opts.Model, retry: opts.Retry}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate returns the text of the first choice. Timeouts and transport errors are
// retried up to the policy's MaxAttempts; HTTP error statuses are returned at once.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var result Result
	operation := func() error {
		result.Attempts++
		start := time.Now()
		text, err := c.attempt(ctx, &body)
		elapsed := time.Since(start)
		result.Latency += elapsed

		if err == nil {
			requestDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
			result.Text = text
			return nil
		}

		var derr *DraftError
		errors.As(err, &derr)
		requestDuration.WithLabelValues(derr.Kind.String()).Observe(elapsed.Seconds())

		switch {
		case derr.Kind == HTTPStatus:
			return backoff.Permanent(err)
		case derr.Kind == IncompleteResponse && !c.retry.RetryIncomplete:
			return backoff.Permanent(err)
		case ctx.Err() != nil:
			return backoff.Permanent(err)
		}

		log.Warn().
			Int("attempt", result.Attempts).
			Int("max_attempts", c.retry.MaxAttempts).
			Str("kind", derr.Kind.String()).
			Msg("Drafting attempt failed")
		return err
	}

	var policy backoff.BackOff = &backoff.ZeroBackOff{}
	if c.retry.Delay > 0 {
		policy = backoff.NewConstantBackOff(c.retry.Delay)
	}
	policy = backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.retry.MaxAttempts-1)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		var derr *DraftError
		if errors.As(err, &derr) {
			derr.Attempts = result.Attempts
		} else {
			err = &DraftError{Kind: Transport, Attempts: result.Attempts, Err: err}
		}
		log.Error().Err(err).Int("attempts", result.Attempts).Msg("Drafting request failed")
		return Result{Latency: result.Latency, Attempts: result.Attempts}, err
	}

	log.Info().
		Int("attempts", result.Attempts).
		Dur("latency", result.Latency).
		Msg("Draft generated")
	return result, nil
}

func (c *Client) attempt(ctx context.Context, body *chatRequest) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.endpoint)
	if err != nil {
		if isTimeout(err) {
			return "", &DraftError{Kind: Timeout, Err: err}
		}
		return "", &DraftError{Kind: Transport, Err: err}
	}
	if resp.IsError() {
		return "", &DraftError{Kind: HTTPStatus, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &DraftError{Kind: IncompleteResponse, Body: resp.String(), Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &DraftError{Kind: IncompleteResponse, Body: resp.String()}
	}
	return out.Choices[0].Message.Content, nil
}
