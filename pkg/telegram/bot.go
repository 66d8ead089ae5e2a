package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Bot is the Telegram Bot API client.
type Bot struct {
	token      string
	apiURL     string
	httpClient *http.Client
	limiter    *sendLimiter
}

// NewBot creates a new Telegram Bot client with the given token.
func NewBot(token string) *Bot {
	return &Bot{
		token:      token,
		apiURL:     fmt.Sprintf("https://api.telegram.org/bot%s", token),
		httpClient: &http.Client{},
		limiter:    newSendLimiter(),
	}
}

// SetAPIURL overrides the default Telegram API URL for testing purposes.
func (b *Bot) SetAPIURL(url string) {
	b.apiURL = url
}

// SetWebhook registers the webhook URL with Telegram. secretToken, when
// non-empty, is echoed back by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header of every webhook request.
func (b *Bot) SetWebhook(webhookURL, secretToken string) error {
	payload := map[string]string{"url": webhookURL}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}

	var apiResp APIResponse
	if err := b.call(context.Background(), "setWebhook", payload, &apiResp); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram setWebhook failed: %s", apiResp.Description)
	}
	return nil
}

// SendMessage sends a plain text message to a Telegram chat.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := b.Send(ctx, SendMessageRequest{ChatID: chatID, Text: text})
	return err
}

// SendMessageWithMode sends a message with optional parse mode (e.g. "Markdown").
func (b *Bot) SendMessageWithMode(ctx context.Context, chatID int64, text, parseMode string) error {
	_, err := b.Send(ctx, SendMessageRequest{ChatID: chatID, Text: text, ParseMode: parseMode})
	return err
}

// Send sends a message with full request control (keyboards, parse mode)
// and returns the sent message so callers can edit it later.
func (b *Bot) Send(ctx context.Context, req SendMessageRequest) (*Message, error) {
	b.limiter.wait(ctx, req.ChatID)

	var apiResp APIResponse
	if err := b.call(ctx, "sendMessage", req, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("telegram sendMessage failed: %s", apiResp.Description)
	}
	return apiResp.Result, nil
}

// EditMessageText edits the text (and optionally the inline keyboard) of a
// previously sent message.
func (b *Bot) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	b.limiter.wait(ctx, req.ChatID)

	var apiResp APIResponse
	if err := b.call(ctx, "editMessageText", req, &apiResp); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram editMessageText failed: %s", apiResp.Description)
	}
	return nil
}

// AnswerCallbackQuery acknowledges a callback query so the client stops
// showing the loading indicator.
func (b *Bot) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	var apiResp APIResponse
	if err := b.call(ctx, "answerCallbackQuery", AnswerCallbackQueryRequest{CallbackQueryID: callbackID}, &apiResp); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram answerCallbackQuery failed: %s", apiResp.Description)
	}
	return nil
}

// call POSTs a JSON payload to the named Bot API method and decodes the
// response envelope. Non-200 statuses still carry a JSON body with the
// failure description, so decoding is attempted regardless.
func (b *Bot) call(ctx context.Context, method string, payload any, out *APIResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/%s", b.apiURL, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	return nil
}
