package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const healthPollInterval = 100 * time.Millisecond

// WaitForHealthy polls baseURL's /health endpoint until it answers 200 OK.
// When ctx ends first, the last failure is included in the error.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	client := &http.Client{Timeout: time.Second}
	healthURL := baseURL + "/health"

	var lastErr error
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		if lastErr = checkHealth(ctx, client, healthURL); lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s not healthy: %w (last error: %v)", baseURL, ctx.Err(), lastErr)
		case <-ticker.C:
		}
	}
}

func checkHealth(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}
	return nil
}
