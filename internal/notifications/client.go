// Package notifications pushes an ntfy message when a time entry is
// recorded. It is optional and strictly fire-and-forget: a failed push is
// logged and never surfaces to the request that triggered it.
package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
}

func NewClient(baseURL, topic string, enabled bool) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		topic:   topic,
		enabled: enabled,
	}
}

// NotifyRecordCreated pushes a short summary of the new entry. The push runs
// in the background so the HTTP response is not held up by ntfy.
func (c *Client) NotifyRecordCreated(ctx context.Context, date, hours, content string) {
	if !c.enabled {
		log.Debug().Msg("Notifications disabled, skipping")
		return
	}

	message := fmt.Sprintf("記録しました: %s / %s時間 / %s", date, hours, content)

	// Detach from the request context: the push should finish even after
	// the response is written.
	go func() {
		if err := c.send(context.WithoutCancel(ctx), message); err != nil {
			log.Warn().Err(err).Msg("Failed to send record notification")
		}
	}()
}

func (c *Client) send(ctx context.Context, message string) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(message))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Title", "Timesheet")
	req.Header.Set("Tags", "stopwatch")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification rejected: HTTP %d", resp.StatusCode)
	}

	log.Debug().Str("topic", c.topic).Msg("Notification sent")
	return nil
}
