package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

const defaultResendURL = "https://api.resend.com/emails"

type resendSender struct {
	apiKey     string
	from       string
	endpoint   string
	logger     logger.Logger
	httpClient *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// NewResendSender delivers mail through the Resend HTTP API.
func NewResendSender(apiKey, from string, timeout time.Duration, log logger.Logger) outbound.EmailSender {
	return &resendSender{
		apiKey:     apiKey,
		from:       from,
		endpoint:   defaultResendURL,
		logger:     log,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *resendSender) Send(ctx context.Context, msg outbound.EmailMessage) error {
	payload, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email provider unavailable: %w", err)
	}
	defer resp.Body.Close()
	logger.LogPerformance(ctx, s.logger, "resend_send", time.Since(start), nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// the mail was accepted; a malformed receipt is not a delivery failure
		s.logger.Warn(ctx, "Failed to decode email provider response", map[string]interface{}{"error": err.Error()})
		return nil
	}
	s.logger.Info(ctx, "Email sent", map[string]interface{}{
		"message_id": result.ID,
		"subject":    msg.Subject,
	})
	return nil
}
