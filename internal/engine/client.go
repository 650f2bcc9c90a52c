package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

type Client struct {
	httpClient       *http.Client
	fitClient        *http.Client
	baseURL          string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
}

// NewClient builds an engine client. httpTimeout bounds health and summary
// calls; fitTimeout bounds the blocking fit call, which can run for hours.
func NewClient(baseURL string, httpTimeout, fitTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8089"
	}
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if fitTimeout <= 0 {
		fitTimeout = 6 * time.Hour
	}
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &Client{
		httpClient:       &http.Client{Timeout: httpTimeout},
		fitClient:        &http.Client{Timeout: fitTimeout},
		baseURL:          baseURL,
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
	}
}

// Health checks engine liveness and returns its version.
func (c *Client) Health(ctx context.Context) (*HealthInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UnreachableError{Host: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp)
	}
	var out HealthInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// Fit asks the engine to build the model and sample the posterior. The call
// blocks for the whole sampling run and is never retried: a fit is expensive
// and not idempotent from the caller's point of view.
func (c *Client) Fit(ctx context.Context, req FitRequest) (*FitResult, error) {
	if err := validateFit(req); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/fit", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.fitClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UnreachableError{Host: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp)
	}
	var out FitResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Model) == 0 {
		return nil, errors.New("engine returned an empty model blob")
	}
	return &out, nil
}

// Summarize asks the engine to summarize a previously fitted model. Retries on
// 429/5xx/transient network errors with exponential backoff and jitter.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (*Summary, error) {
	if len(req.Model) == 0 {
		return nil, errors.New("model blob cannot be empty")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/v1/summary"
	backoff := c.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if isRetryableNetErr(err) && attempt < c.retryMaxAttempts {
				lastErr = err
				time.Sleep(backoff)
				backoff *= 2
				continue
			}
			return nil, &UnreachableError{Host: c.baseURL, Err: err}
		}

		out, retry, err := func() (*Summary, bool, error) {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				errResp := c.decodeError(resp)
				if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < c.retryMaxAttempts {
					var busy *BusyError
					if errors.As(errResp, &busy) && busy.RetryAfter > 0 {
						time.Sleep(busy.RetryAfter)
						return nil, true, errResp
					}
					sleep := withJitter(backoff)
					if c.retryMaxDelay > 0 && sleep > c.retryMaxDelay {
						sleep = c.retryMaxDelay
					}
					time.Sleep(sleep)
					backoff *= 2
					return nil, true, errResp
				}
				return nil, false, errResp
			}
			var s Summary
			if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
				return nil, false, fmt.Errorf("decode response: %w", err)
			}
			return &s, false, nil
		}()
		lastErr = err
		if retry {
			continue
		}
		if err == nil {
			return out, nil
		}
		break
	}
	return nil, lastErr
}

func validateFit(req FitRequest) error {
	n := len(req.Times)
	if n == 0 {
		return errors.New("fit request has no time periods")
	}
	if len(req.KPI) != n {
		return fmt.Errorf("kpi has %d values for %d periods", len(req.KPI), n)
	}
	if len(req.Media) == 0 {
		return errors.New("fit request has no media channels")
	}
	for ch, series := range req.Media {
		if len(series) != n {
			return fmt.Errorf("media channel %q has %d values for %d periods", ch, len(series), n)
		}
		if _, ok := req.Spend[ch]; !ok {
			return fmt.Errorf("media channel %q has no spend series", ch)
		}
	}
	if req.Sampling.NChains <= 0 {
		return errors.New("sampling requires at least one chain")
	}
	return nil
}

// decodeError reads an error body and maps it to a typed error.
func (c *Client) decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw}
	if v, ok := raw["error"].(map[string]any); ok {
		if msg, ok := v["message"].(string); ok {
			apiErr.Message = msg
		}
		if code, ok := v["code"].(string); ok {
			apiErr.Code = code
		}
	} else {
		if msg, ok := raw["message"].(string); ok {
			apiErr.Message = msg
		}
		if code, ok := raw["code"].(string); ok {
			apiErr.Code = code
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		var ra time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := parseRetryAfterSeconds(v); err == nil && secs > 0 {
				ra = time.Duration(secs) * time.Second
			}
		}
		return &BusyError{APIError: apiErr, RetryAfter: ra}
	case resp.StatusCode == http.StatusBadRequest:
		return &BadRequestError{APIError: apiErr}
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return true
		}
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	return false
}

// parseRetryAfterSeconds tries to interpret Retry-After header value as seconds or HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// withJitter returns a backoff duration with +/- 20% jitter applied.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
