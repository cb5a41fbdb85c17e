package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

const defaultSiteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Options configures the siteverify client.
type Options struct {
	Secret  string
	Enabled bool
	// Skip turns verification off without unsetting the secret (local development).
	Skip    bool
	Timeout time.Duration
	// MinScore rejects v3 tokens scoring below it. Zero accepts any score.
	MinScore float64
}

type siteVerifier struct {
	opts      Options
	verifyURL string
	client    *http.Client
	logger    logger.Logger
}

type verdict struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// NewRecaptchaService verifies submitter tokens of the public workflow routes.
func NewRecaptchaService(opts Options, log logger.Logger) inbound.RecaptchaService {
	return &siteVerifier{
		opts:      opts,
		verifyURL: defaultSiteVerifyURL,
		client:    &http.Client{Timeout: opts.Timeout},
		logger:    log,
	}
}

func (s *siteVerifier) IsEnabled() bool {
	return s.opts.Enabled && !s.opts.Skip
}

func (s *siteVerifier) VerifyToken(ctx context.Context, token string) (bool, error) {
	if !s.IsEnabled() {
		return true, nil
	}
	if strings.TrimSpace(token) == "" {
		return false, fmt.Errorf("recaptcha token is required")
	}

	v, err := s.siteverify(ctx, token)
	if err != nil {
		s.logger.Error(ctx, "reCAPTCHA siteverify failed", err, nil)
		return false, err
	}

	fields := map[string]interface{}{
		"success":     v.Success,
		"score":       v.Score,
		"action":      v.Action,
		"hostname":    v.Hostname,
		"error_codes": v.ErrorCodes,
	}
	switch {
	case !v.Success:
		s.logger.Warn(ctx, "reCAPTCHA token rejected", fields)
		return false, nil
	case s.opts.MinScore > 0 && v.Score < s.opts.MinScore:
		fields["min_score"] = s.opts.MinScore
		s.logger.Warn(ctx, "reCAPTCHA score below threshold", fields)
		return false, nil
	}
	s.logger.Debug(ctx, "reCAPTCHA token accepted", fields)
	return true, nil
}

func (s *siteVerifier) siteverify(ctx context.Context, token string) (*verdict, error) {
	form := url.Values{"secret": {s.opts.Secret}, "response": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var v verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode siteverify response: %w", err)
	}
	return &v, nil
}
