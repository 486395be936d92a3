// Package notify delivers best-effort WhatsApp messages through the local
// relay process.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

// Sender delivers a message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// WhatsAppClient posts messages to the WhatsApp relay.
type WhatsAppClient struct {
	url         string
	countryCode string
	httpClient  *http.Client
	logger      *logging.Logger
}

// ClientOption is a functional option for configuring the WhatsAppClient.
type ClientOption func(*WhatsAppClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *WhatsAppClient) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *WhatsAppClient) {
		c.logger = logger
	}
}

// WithCountryCode sets the prefix applied to national numbers.
func WithCountryCode(cc string) ClientOption {
	return func(c *WhatsAppClient) {
		c.countryCode = cc
	}
}

// NewWhatsAppClient creates a relay client for the given send URL
// (e.g. "http://localhost:8080/api/send").
func NewWhatsAppClient(url string, opts ...ClientOption) *WhatsAppClient {
	c := &WhatsAppClient{
		url:         url,
		countryCode: "91",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send hands the message to the relay. Only transport success matters; the
// response body is drained and ignored.
func (c *WhatsAppClient) Send(ctx context.Context, phone, message string) error {
	recipient := NormalizeRecipient(phone, c.countryCode)
	if recipient == "" {
		return fmt.Errorf("notify: empty recipient")
	}

	body, err := json.Marshal(sendRequest{Recipient: recipient, Message: message})
	if err != nil {
		return fmt.Errorf("notify: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: relay request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: relay returned status %d", resp.StatusCode)
	}

	c.logger.Debug("whatsapp message handed to relay", "recipient_suffix", lastDigits(recipient, 4))
	return nil
}

func lastDigits(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
