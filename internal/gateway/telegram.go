// Telegram Bot API client.
//
// The bridge needs exactly two Bot API methods: createForumTopic (one
// discussion thread per distinct error) and sendMessage (the alert text into
// that thread). Both are plain JSON POSTs against the Bot API; no SDK or bot
// runtime is involved.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTelegramAPIBase is the public Bot API endpoint.
const DefaultTelegramAPIBase = "https://api.telegram.org"

// TelegramClient calls the Telegram Bot API on behalf of the bridge bot.
// It is safe for concurrent use; all state is immutable after construction.
type TelegramClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewTelegramClient constructs a client for the given bot token. baseURL may
// be empty to use the public API; tests point it at a local httptest server.
func NewTelegramClient(baseURL, token string, timeout time.Duration) *TelegramClient {
	if baseURL == "" {
		baseURL = DefaultTelegramAPIBase
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiResponse is the uniform Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// forumTopic is the result payload of createForumTopic.
type forumTopic struct {
	MessageThreadID int64  `json:"message_thread_id"`
	Name            string `json:"name"`
}

// call posts a Bot API method and decodes the response envelope. The request
// body is always JSON; the bot token is part of the URL path per the Bot API
// convention.
func (c *TelegramClient) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env apiResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if !env.OK {
		return nil, fmt.Errorf("telegram API error: %s", env.Description)
	}
	return env.Result, nil
}

// CreateForumTopic opens a new forum topic in the supergroup chatID and
// returns its message_thread_id. One attempt only; failures are wrapped in
// *GatewayError and logged at warn level.
func (c *TelegramClient) CreateForumTopic(ctx context.Context, chatID int64, title string) (int64, error) {
	res, err := c.call(ctx, "createForumTopic", map[string]any{
		"chat_id": chatID,
		"name":    title,
	})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Str("title", title).
			Msg("createForumTopic failed")
		return 0, &GatewayError{Op: "telegram.createForumTopic", Err: err}
	}

	var topic forumTopic
	if err := json.Unmarshal(res, &topic); err != nil {
		return 0, &GatewayError{Op: "telegram.createForumTopic", Err: fmt.Errorf("parse result: %w", err)}
	}
	return topic.MessageThreadID, nil
}

// SendMessage posts text into chatID. When threadID is non-zero the message
// lands in that forum topic, otherwise in the general chat.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, threadID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if threadID != 0 {
		payload["message_thread_id"] = threadID
	}

	if _, err := c.call(ctx, "sendMessage", payload); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Int64("thread_id", threadID).
			Msg("sendMessage failed")
		return &GatewayError{Op: "telegram.sendMessage", Err: err}
	}
	return nil
}
