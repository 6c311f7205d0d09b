// Package riot provides a client for the Riot account-v1 and match-v5
// APIs with regional routing, pagination and rate limiting.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client defines the Riot API operations the pipeline uses.
type Client interface {
	// ResolvePUUID resolves a "GameName#TAG" Riot ID to a PUUID.
	ResolvePUUID(ctx context.Context, riotID string) (string, error)
	// ListMatchIDs pages through the player's match ids inside the
	// calendar-year window, de-duplicated, in API order.
	ListMatchIDs(ctx context.Context, puuid string, year int) ([]string, error)
	// GetMatch fetches one raw match document.
	GetMatch(ctx context.Context, matchID string) (json.RawMessage, error)
	// GetTimeline fetches one raw timeline document.
	GetTimeline(ctx context.Context, matchID string) (json.RawMessage, error)
}

const matchIDPageSize = 100

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the regional API host (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMaxRetries overrides the retry budget per request.
func WithMaxRetries(n int) Option {
	return func(c *httpClient) {
		c.maxRetries = n
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates a client routed to the given regional cluster
// ("americas", "europe", "asia", "sea").
func NewClient(apiKey, cluster string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("https://%s.api.riotgames.com", cluster),
		client:  &http.Client{Timeout: 40 * time.Second},
		// Development keys allow 20 requests per second; stay under it.
		limiter:    rate.NewLimiter(15, 15),
		maxRetries: 5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ResolvePUUID(ctx context.Context, riotID string) (string, error) {
	game, tag, ok := strings.Cut(riotID, "#")
	if !ok {
		return "", eris.Errorf("riot: id must be GameName#TAG, got %q", riotID)
	}

	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(game), url.PathEscape(tag))

	var account struct {
		PUUID string `json:"puuid"`
	}
	if err := c.getJSON(ctx, path, nil, &account); err != nil {
		return "", eris.Wrapf(err, "riot: resolve %s", riotID)
	}
	if account.PUUID == "" {
		return "", eris.Errorf("riot: empty puuid for %s", riotID)
	}
	return account.PUUID, nil
}

func (c *httpClient) ListMatchIDs(ctx context.Context, puuid string, year int) ([]string, error) {
	startTS := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	endTS := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()

	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids", url.PathEscape(puuid))

	var all []string
	for start := 0; ; {
		query := url.Values{
			"start":     {strconv.Itoa(start)},
			"count":     {strconv.Itoa(matchIDPageSize)},
			"startTime": {strconv.FormatInt(startTS, 10)},
			"endTime":   {strconv.FormatInt(endTS, 10)},
		}

		var batch []string
		if err := c.getJSON(ctx, path, query, &batch); err != nil {
			return nil, eris.Wrapf(err, "riot: list match ids page %d", start)
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		start += len(batch)
		if len(batch) < matchIDPageSize {
			break
		}
	}

	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for _, id := range all {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *httpClient) GetMatch(ctx context.Context, matchID string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/lol/match/v5/matches/"+url.PathEscape(matchID), nil)
	return body, eris.Wrapf(err, "riot: get match %s", matchID)
}

func (c *httpClient) GetTimeline(ctx context.Context, matchID string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/lol/match/v5/matches/"+url.PathEscape(matchID)+"/timeline", nil)
	return body, eris.Wrapf(err, "riot: get timeline %s", matchID)
}

func (c *httpClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	return eris.Wrap(json.Unmarshal(body, out), "decode response")
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("riot: request failed, retrying",
				zap.String("url", reqURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if err := sleep(ctx, time.Duration(attempt+1)*time.Second); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp)
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http 429 from %s", reqURL)
			zap.L().Warn("riot: rate limited, honoring Retry-After",
				zap.String("url", reqURL),
				zap.Duration("wait", wait),
			)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, reqURL)
			zap.L().Warn("riot: server error, retrying",
				zap.String("url", reqURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			if err := sleep(ctx, time.Duration(attempt+1)*time.Second); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			_ = resp.Body.Close()
			return nil, eris.Errorf("http %d from %s: %s", resp.StatusCode, reqURL, body)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "read response body")
		}
		return body, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

// retryAfter parses the Retry-After header, defaulting to 2s.
func retryAfter(resp *http.Response) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 2 * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "wait interrupted")
	case <-t.C:
		return nil
	}
}
