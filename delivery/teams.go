package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Webhook posts report cards to a Microsoft Teams incoming webhook.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhookFromEnv() *Webhook {
	return &Webhook{
		url: os.Getenv("TEAMS_WEBHOOK_URL"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a webhook URL is set. Teams delivery is
// optional; callers skip the post when it is not.
func (w *Webhook) Configured() bool {
	return w.url != ""
}

// Card is one MessageCard to post. Text carries the already-rendered
// summary; Facts become the card's key/value section.
type Card struct {
	Title    string
	Subtitle string
	Text     string
	Facts    map[string]string
	LinkText string
	LinkURL  string
}

// SendCard posts a MessageCard and fails on any non-2xx answer, quoting
// the response body. Teams answers 200 with body "1" on success.
func (w *Webhook) SendCard(ctx context.Context, card Card) error {
	if !w.Configured() {
		return errors.New("teams webhook is not configured")
	}

	section := map[string]any{
		"activityTitle": card.Subtitle,
		"text":          card.Text,
		"markdown":      true,
	}
	if len(card.Facts) > 0 {
		facts := make([]map[string]string, 0, len(card.Facts))
		for name, value := range card.Facts {
			facts = append(facts, map[string]string{"name": name, "value": value})
		}
		section["facts"] = facts
	}

	payload := map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "0076D7",
		"summary":    card.Title,
		"title":      card.Title,
		"sections":   []any{section},
	}
	if card.LinkURL != "" {
		payload["potentialAction"] = []any{
			map[string]any{
				"@type": "OpenUri",
				"name":  card.LinkText,
				"targets": []any{
					map[string]string{"os": "default", "uri": card.LinkURL},
				},
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		answer, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("teams webhook answered %d: %s", resp.StatusCode, string(answer))
	}
	return nil
}
