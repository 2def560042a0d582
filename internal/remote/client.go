// Package remote fetches quota state from the usage-reporting endpoint.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ccbar/ccbar/internal/metrics"
	"github.com/ccbar/ccbar/internal/model"
)

const (
	usagePath       = "/api/oauth/usage"
	anthropicBeta   = "oauth-2025-04-20"
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
)

// Client calls the usage endpoint with bounded retries.
type Client struct {
	BaseURL     string
	HTTP        *http.Client
	MaxAttempts int           // total attempts for transport failures
	BaseDelay   time.Duration // first retry delay, doubled per attempt
}

// NewClient returns a client with the given base URL and request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		HTTP:        &http.Client{Timeout: timeout},
		MaxAttempts: defaultAttempts,
		BaseDelay:   defaultDelay,
	}
}

// usageResponse is the wire shape of the usage endpoint. Missing windows
// decode as zero values and are never fatal.
type usageResponse struct {
	FiveHour       windowBody `json:"five_hour"`
	SevenDay       windowBody `json:"seven_day"`
	SevenDayOpus   windowBody `json:"seven_day_opus"`
	SevenDaySonnet windowBody `json:"seven_day_sonnet"`
}

type windowBody struct {
	Utilization float64   `json:"utilization"`
	ResetsAt    time.Time `json:"resets_at"`
}

// FetchUsage retrieves the current usage snapshot. Failures are always
// *FetchError; only transport failures are retried, with the delay
// doubling per attempt up to MaxAttempts.
func (c *Client) FetchUsage(ctx context.Context, token string) (model.UsageSnapshot, error) {
	if token == "" {
		return model.UsageSnapshot{}, newError(KindCredentialUnavailable, 0,
			fmt.Errorf("empty bearer token"))
	}

	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := c.BaseDelay
	if delay <= 0 {
		delay = defaultDelay
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = delay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0

	operation := func() (model.UsageSnapshot, error) {
		snap, err := c.fetchOnce(ctx, token)
		if err != nil {
			if fe, ok := err.(*FetchError); ok && fe.Retryable() {
				return model.UsageSnapshot{}, err
			}
			return model.UsageSnapshot{}, backoff.Permanent(err)
		}
		return snap, nil
	}

	snap, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(attempts)),
	)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return model.UsageSnapshot{}, fe
		}
		// Context cancellation while sleeping between attempts.
		return model.UsageSnapshot{}, newError(KindUnreachable, 0, err)
	}
	return snap, nil
}

func (c *Client) fetchOnce(ctx context.Context, token string) (model.UsageSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+usagePath, nil)
	if err != nil {
		return model.UsageSnapshot{}, newError(KindUnreachable, 0, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("anthropic-beta", anthropicBeta)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return model.UsageSnapshot{}, newError(KindUnreachable, 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.UsageSnapshot{}, newError(KindAuthRejected, resp.StatusCode,
			fmt.Errorf("authentication rejected"))
	case resp.StatusCode == http.StatusTooManyRequests:
		return model.UsageSnapshot{}, newError(KindRateLimited, resp.StatusCode,
			fmt.Errorf("rate limited"))
	case resp.StatusCode >= 500:
		return model.UsageSnapshot{}, newError(KindServiceError, resp.StatusCode,
			fmt.Errorf("server error"))
	case resp.StatusCode != http.StatusOK:
		return model.UsageSnapshot{}, newError(KindServiceError, resp.StatusCode,
			fmt.Errorf("unexpected status"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.UsageSnapshot{}, newError(KindUnreachable, 0, err)
	}

	var usage usageResponse
	if err := json.Unmarshal(body, &usage); err != nil {
		return model.UsageSnapshot{}, newError(KindServiceError, resp.StatusCode,
			fmt.Errorf("malformed body: %w", err))
	}

	return toSnapshot(usage), nil
}

// toSnapshot converts the wire shape, clamping out-of-range utilization.
func toSnapshot(usage usageResponse) model.UsageSnapshot {
	snap := model.UsageSnapshot{
		Short: toStatus(usage.FiveHour),
		Long:  toStatus(usage.SevenDay),
	}

	byTier := make(map[model.Tier]model.WindowStatus)
	if usage.SevenDayOpus != (windowBody{}) {
		byTier[model.TierOpus] = toStatus(usage.SevenDayOpus)
	}
	if usage.SevenDaySonnet != (windowBody{}) {
		byTier[model.TierSonnet] = toStatus(usage.SevenDaySonnet)
	}
	if len(byTier) > 0 {
		snap.ByTier = byTier
	}

	return snap
}

func toStatus(w windowBody) model.WindowStatus {
	return model.WindowStatus{
		Utilization: metrics.ClampPercent(w.Utilization),
		ResetsAt:    w.ResetsAt,
	}
}
