package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/pkg/errors"
)

// TelegramSink posts messages through the Bot API sendMessage method
type TelegramSink struct {
	apiURL string
	token  string
	chatID string
	client *http.Client
}

// TelegramOption configures a TelegramSink
type TelegramOption func(*TelegramSink)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(t *TelegramSink) {
		t.client = c
	}
}

// WithAPIURL overrides the Bot API base URL
func WithAPIURL(url string) TelegramOption {
	return func(t *TelegramSink) {
		t.apiURL = url
	}
}

// NewTelegramSink creates a sink for chatID
func NewTelegramSink(token, chatID string, opts ...TelegramOption) *TelegramSink {
	t := &TelegramSink{
		apiURL: "https://api.telegram.org",
		token:  token,
		chatID: chatID,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type sendMessagePayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts text as Markdown. Any status other than 200 is an error.
func (t *TelegramSink) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessagePayload{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return errors.NewNotify("telegram", "failed to encode payload", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.NewNotify("telegram", "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// the URL embeds the token; keep it out of logs
		return errors.NewNotify("telegram", "failed to reach Bot API", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.NewNotify("telegram",
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody)), nil)
	}

	logger.ForNotifier().Debug().Str("chat_id", t.chatID).Msg("Message sent")
	return nil
}

func redactURLError(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
