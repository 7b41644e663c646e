// Package nlp is the client of the external text-analysis service that
// scores sentiment and renders word clouds.
package nlp

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_dashboard/internal/adapters/observability"
)

const maxAttempts = 4

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("nlp base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// ScoreText returns a compound sentiment score in [-1, 1].
func (c *Client) ScoreText(ctx context.Context, text string) (float64, error) {
	var out struct {
		Score *float64 `json:"score"`
	}
	_, body, err := c.post(ctx, "/v1/sentiment", map[string]string{"text": text})
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("decode sentiment: %w", err)
	}
	if out.Score == nil {
		return 0, errors.New("nlp: sentiment response without score")
	}
	return *out.Score, nil
}

// RenderCloud posts the corpus and returns the rendered image.
func (c *Client) RenderCloud(ctx context.Context, texts []string) ([]byte, string, error) {
	ctype, body, err := c.post(ctx, "/v1/wordcloud", map[string]any{"texts": texts})
	if err != nil {
		return nil, "", err
	}
	if ctype == "" {
		ctype = http.DetectContentType(body)
	}
	return body, ctype, nil
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("nlp: not found")
	ErrUnauthorized = errors.New("nlp: unauthorized")
	ErrForbidden    = errors.New("nlp: forbidden")
)

// post sends a JSON body with client-side rate limiting and retries on 429
// and transient 5xx, honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, endpoint string, payload any) (string, []byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	if err := c.rl.Wait(ctx); err != nil {
		return "", nil, err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return "", nil, err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "review-dashboard/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("nlp", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}
			return "", nil, lastErr
		}
		observability.ObserveExternal("nlp", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			return resp.Header.Get("Content-Type"), b, err

		case http.StatusNotFound:
			resp.Body.Close()
			return "", nil, ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return "", nil, ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return "", nil, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}
			return "", nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return "", nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return "", nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date); 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 100ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
