package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cha-ryne/ratings-sync/internal/logging"
)

// DefaultAttemptTimeout bounds a single candidate attempt.
const DefaultAttemptTimeout = 10 * time.Second

// Fetcher performs one logical request against the upstream ratings API by
// trying candidate targets in order, stopping at the first success. It holds
// no state of its own; failures are absorbed per attempt and only total
// exhaustion is surfaced.
type Fetcher struct {
	resolver       *Resolver
	client         *http.Client
	attemptTimeout time.Duration
}

// NewFetcher creates a Fetcher over the given resolver. The timeout applies
// per candidate attempt, not to the whole logical call.
func NewFetcher(resolver *Resolver, attemptTimeout time.Duration) *Fetcher {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Fetcher{
		resolver:       resolver,
		client:         &http.Client{},
		attemptTimeout: attemptTimeout,
	}
}

// Do issues method+logicalPath with an optional JSON body and returns the raw
// JSON response of the first candidate that answers 2xx.
//
// A 2xx answer with an unparsable body is handled two ways: for requests that
// carried a body the remote accepted the write, so the request payload is
// returned as a synthesized fallback; for bodyless reads the response is
// useless and the next candidate is tried.
func (f *Fetcher) Do(ctx context.Context, method, logicalPath string, body interface{}) (json.RawMessage, error) {
	logger := logging.New(ctx)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	candidates := f.resolver.Candidates(logicalPath)
	for i, candidate := range candidates {
		raw, err := f.attempt(ctx, method, candidate, payload)
		if err != nil {
			logger.Warnf("fetch", "candidate %d/%d failed: %v", i+1, len(candidates), err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if !json.Valid(raw) {
			if payload != nil {
				// The remote accepted the write; a broken body is a
				// backend quirk, not a failure.
				logger.Warnf("fetch", "candidate %d returned unparsable body, using request data", i+1)
				return json.RawMessage(payload), nil
			}
			logger.Warnf("fetch", "candidate %d/%d returned unparsable body", i+1, len(candidates))
			continue
		}

		return json.RawMessage(raw), nil
	}

	return nil, fmt.Errorf("%s %s: %w", method, logicalPath, ErrAllEndpointsFailed)
}

func (f *Fetcher) attempt(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}
