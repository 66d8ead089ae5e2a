package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	ngrokProbeAttempts = 10
	ngrokProbeDelay    = 3 * time.Second
)

// ngrokTunnelsResponse matches the /api/tunnels response from the ngrok local API.
type ngrokTunnelsResponse struct {
	Tunnels []ngrokTunnel `json:"tunnels"`
}

type ngrokTunnel struct {
	PublicURL string `json:"public_url"`
	Proto     string `json:"proto"`
}

// detectNgrokURL polls the ngrok local API for an HTTPS tunnel to use as the
// webhook base. Telegram rejects plain HTTP webhook URLs, so only HTTPS
// tunnels qualify. Polling covers the window where the ngrok container is
// still starting.
func detectNgrokURL(ctx context.Context, ngrokAPIBase string) (string, error) {
	url := ngrokAPIBase + "/api/tunnels"
	client := &http.Client{Timeout: 5 * time.Second}

	for attempt := 1; attempt <= ngrokProbeAttempts; attempt++ {
		publicURL, err := fetchHTTPSTunnel(ctx, client, url)
		if err == nil && publicURL != "" {
			return publicURL, nil
		}

		if attempt == ngrokProbeAttempts {
			if err != nil {
				return "", fmt.Errorf("ngrok API not reachable after %d attempts: %w", ngrokProbeAttempts, err)
			}
			return "", fmt.Errorf("ngrok has no HTTPS tunnel after %d attempts", ngrokProbeAttempts)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(ngrokProbeDelay):
		}
	}

	return "", fmt.Errorf("ngrok has no HTTPS tunnel after %d attempts", ngrokProbeAttempts)
}

func fetchHTTPSTunnel(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create ngrok API request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tunnels ngrokTunnelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tunnels); err != nil {
		return "", fmt.Errorf("failed to decode ngrok API response: %w", err)
	}

	for _, t := range tunnels.Tunnels {
		if t.Proto == "https" {
			return t.PublicURL, nil
		}
	}
	return "", nil
}
