// Package notify pushes the composed report to a Telegram chat, as an
// alternative to pasting it by hand. One attempt per send; a failure is
// reported to the operator and the session stays usable.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"metrowatch/internal/metrics"
)

const apiBase = "https://api.telegram.org"

type Telegram struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// NewTelegram returns nil when token or chat id is missing; callers treat
// a nil sender as "sending not configured".
func NewTelegram(token, chatID string, timeout time.Duration) *Telegram {
	if token == "" || chatID == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Telegram{
		token:      token,
		chatID:     chatID,
		baseURL:    apiBase,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts text to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"chat_id":                  t.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API: status %d", resp.StatusCode)
	}

	metrics.Global.IncrementMessagesSent()
	return nil
}
