// Package telegram is the Bot API client used to notify members about loan
// requests, receipt reviews and due installments.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("telegram")

// Client wraps HTTP calls to the Telegram Bot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a Telegram Bot API client.
func NewClient(httpClient *http.Client, baseURL, token string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// call executes one Bot API method.
func (c *Client) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, resilience.Permanent(fmt.Errorf("encode request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("telegram: request failed",
			zap.String("api_method", method),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("decode telegram response: %w", err)
	}
	if !api.OK {
		c.logger.Warn("telegram: API error",
			zap.String("api_method", method),
			zap.Int("status", resp.StatusCode),
			zap.String("description", api.Description),
		)
		err := fmt.Errorf("telegram API error: %s", api.Description)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, resilience.Permanent(err)
		}
		return nil, err
	}

	return api.Result, nil
}

// SendMessage sends a plain-text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	ctx, span := tracer.Start(ctx, "Telegram.SendMessage")
	defer span.End()
	span.SetAttributes(attribute.String("chat.id", chatID))

	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			_, err := c.call(ctx, "sendMessage", payload)
			return err
		})
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "telegram", Err: err}
	}

	c.logger.Debug("telegram: message sent", zap.String("chat_id", chatID))
	return nil
}

// Check verifies bot connectivity via getMe. A failure is reported in the
// result, not as an error, so the admin page can render the state.
func (c *Client) Check(ctx context.Context) (*domain.BotInfo, error) {
	ctx, span := tracer.Start(ctx, "Telegram.Check")
	defer span.End()

	if c.token == "" {
		return &domain.BotInfo{
			Connected: false,
			Message:   "توکن ربات تنظیم نشده است.",
		}, nil
	}

	var result json.RawMessage
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			r, err := c.call(ctx, "getMe", nil)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	})
	if err != nil {
		return &domain.BotInfo{
			Connected: false,
			Message:   "ربات در دسترس نیست.",
		}, nil
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(result, &me); err != nil {
		return nil, fmt.Errorf("decode getMe result: %w", err)
	}

	return &domain.BotInfo{
		Connected: true,
		Username:  me.Username,
		Message:   "ربات متصل است.",
	}, nil
}
