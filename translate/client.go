package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"slotforge/safeweb"
)

// Client talks to the external translation service. All calls are
// best-effort relative to the styling flow: a slow or failed request
// degrades the translation affordance only, never style application.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient vets the base URL once at construction so a misconfigured
// (or SSRF-bait) endpoint fails at startup.
func NewClient(baseURL string, logger *slog.Logger) (*Client, error) {
	if err := safeweb.CheckURL(baseURL); err != nil {
		return nil, fmt.Errorf("translate: base URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}, nil
}

// FetchLabels retrieves the label dictionary for a locale, used by the
// reverse-lookup binding heuristic.
func (c *Client) FetchLabels(ctx context.Context, locale string) (map[string]string, error) {
	u := fmt.Sprintf("%s/labels?locale=%s", c.baseURL, url.QueryEscape(locale))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate: fetch labels: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate: fetch labels: status %d", resp.StatusCode)
	}
	body, err := safeweb.ReadAll(resp.Body, safeweb.MaxResponseBody)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string)
	if err := json.Unmarshal(body, &labels); err != nil {
		return nil, fmt.Errorf("translate: decode labels: %w", err)
	}
	return labels, nil
}

// MakeTranslatable registers content under a translation key. The
// translation service owns the persistence; the editor only delegates.
func (c *Client) MakeTranslatable(ctx context.Context, key, content string) error {
	payload, err := json.Marshal(map[string]string{"key": key, "content": content})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/keys", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("translate: make translatable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("translate: make translatable: status %d", resp.StatusCode)
	}
	return nil
}

// AutoTranslate requests machine translation for a key in the background.
// Fire-and-forget: failures are logged, never surfaced to the styling
// path.
func (c *Client) AutoTranslate(key string, locales []string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		payload, err := json.Marshal(map[string]any{"key": key, "locales": locales})
		if err != nil {
			c.logger.Error("translate: auto-translate payload", "error", err)
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auto", bytes.NewReader(payload))
		if err != nil {
			c.logger.Error("translate: auto-translate request", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warn("translate: auto-translate", "key", key, "error", err)
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			c.logger.Warn("translate: auto-translate", "key", key, "status", resp.StatusCode)
		}
	}()
}
