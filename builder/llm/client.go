package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/net"
)

type Request struct {
	System    string
	User      string
	MaxTokens int
}

// Client sends one prompt to a hosted model and returns its text reply.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Options struct {
	Timeout time.Duration
	// MaxRetries bounds retries of transport failures, 429 and 5xx replies.
	// Zero means a single attempt.
	MaxRetries uint64
}

// NewClient builds the client matching the endpoint's provider.
func NewClient(ep EndpointInfo, opts Options) (Client, error) {
	if ep.APIKey == "" {
		return nil, fmt.Errorf("endpoint %s has no api key", ep.Name)
	}
	hc := &http.Client{Timeout: opts.Timeout}
	var c Client
	switch ep.Provider {
	case ProviderAnthropic:
		c = &AnthropicClient{ep: ep, http: hc}
	case ProviderOpenAI:
		c = &OpenAIClient{ep: ep, http: hc}
	default:
		return nil, fmt.Errorf("unsupported provider %v", ep.Provider)
	}
	if opts.MaxRetries > 0 {
		c = &retryClient{inner: c, maxRetries: opts.MaxRetries}
	}
	return c, nil
}

type retryClient struct {
	inner      Client
	maxRetries uint64
}

func (r *retryClient) Complete(ctx context.Context, req Request) (string, error) {
	var res string
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second

	op := func() error {
		out, err := r.inner.Complete(ctx, req)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			log.Warnf("LLM request failed, retrying: %v", err)
			return err
		}
		res = out
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return res, nil
}

func retryable(err error) bool {
	var se *net.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	var de *DecodeError
	return !errors.As(err, &de)
}

// DecodeError marks a reply that arrived but could not be understood.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
