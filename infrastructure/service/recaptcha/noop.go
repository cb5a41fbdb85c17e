package recaptcha

import (
	"context"

	"github.com/fixora/complaintdesk/application/port/inbound"
)

// noopRecaptchaService is wired when reCAPTCHA is off. It accepts every token.
type noopRecaptchaService struct{}

func NewNoopRecaptchaService() inbound.RecaptchaService {
	return noopRecaptchaService{}
}

func (noopRecaptchaService) VerifyToken(ctx context.Context, token string) (bool, error) {
	return true, nil
}

func (noopRecaptchaService) IsEnabled() bool {
	return false
}
