// Package whatsapp sends outbound messages through a Twilio-compatible
// WhatsApp gateway. Used only when the webhook runs in async mode.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"carbot_backend/platform/config"
	"carbot_backend/platform/logger"
	"carbot_backend/platform/phone"
)

// Client posts messages to the gateway's message endpoint. A nil client is
// valid and drops messages silently, so callers never branch on enablement.
type Client struct {
	gatewayURL string
	accountSID string
	authToken  string
	from       string
	http       *http.Client
	log        *logger.Logger
}

// NewClient returns nil when the gateway is not configured.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if !cfg.IsWhatsAppEnabled() {
		return nil
	}

	return &Client{
		gatewayURL: strings.TrimRight(cfg.GetWhatsAppGatewayURL(), "/"),
		accountSID: cfg.GetWhatsAppAccountSID(),
		authToken:  cfg.GetWhatsAppAuthToken(),
		from:       cfg.GetWhatsAppFromNumber(),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// SendMessage delivers one message to the given phone number. The gateway
// follows Twilio's form-encoded Messages API.
func (c *Client) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if c == nil {
		return nil
	}

	to := phone.NormalizeE164(strings.TrimPrefix(phoneNumber, "whatsapp:"))

	form := url.Values{}
	form.Set("From", "whatsapp:"+c.from)
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.gatewayURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("whatsapp message sent", "to", to)
	return nil
}
