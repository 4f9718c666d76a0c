// Package telegram delivers operational alerts to the configured chat.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/course-backoffice-api/pkg/config"
)

const (
	apiBase      = "https://api.telegram.org"
	sendTries    = 3
	retryPause   = 100 * time.Millisecond
	sendDeadline = 5 * time.Second
)

// Client posts messages through the bot API.
type Client struct {
	baseURL   string
	botToken  string
	chatID    string
	parseMode string
	http      *http.Client
}

// NewClient constructs a telegram client.
func NewClient(cfg config.TelegramConfig) *Client {
	return &Client{
		baseURL:   apiBase,
		botToken:  cfg.BotToken,
		chatID:    cfg.ChatID,
		parseMode: cfg.ParseMode,
		http:      &http.Client{Timeout: sendDeadline},
	}
}

// SendMessage posts text to the configured chat, retrying transient
// failures a few times before giving up.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)
	if c.parseMode != "" {
		form.Set("parse_mode", c.parseMode)
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	var lastErr error
	for attempt := 0; attempt < sendTries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryPause):
			}
		}
		lastErr = c.post(ctx, endpoint, form)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("send telegram message: %w", lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
