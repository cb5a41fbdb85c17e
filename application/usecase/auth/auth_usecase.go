package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/domain/valueobject"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
	"github.com/fixora/complaintdesk/pkg/requestctx"
)

// LoginLimits bounds failed login attempts per client IP and per account.
type LoginLimits struct {
	IPAttempts    int
	IPWindow      time.Duration
	UserAttempts  int
	UserWindow    time.Duration
	BlockDuration time.Duration
}

// DefaultLoginLimits: 5 per IP per 15 minutes, 5 per account per hour, 30 minute block.
func DefaultLoginLimits() LoginLimits {
	return LoginLimits{
		IPAttempts:    5,
		IPWindow:      15 * time.Minute,
		UserAttempts:  5,
		UserWindow:    time.Hour,
		BlockDuration: 30 * time.Minute,
	}
}

type AuthUseCase struct {
	userRepository   outbound.UserRepository
	roleRepository   outbound.RoleRepository
	recoveryTokens   outbound.RecoveryTokenStore
	tokenService     outbound.TokenService
	passwordService  outbound.PasswordService
	recaptchaService inbound.RecaptchaService
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
	limits           LoginLimits
}

func NewAuthUseCase(
	userRepo outbound.UserRepository,
	roleRepo outbound.RoleRepository,
	recoveryTokens outbound.RecoveryTokenStore,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	recaptchaService inbound.RecaptchaService,
	rateLimitService inbound.RateLimitService,
	log logger.Logger,
	limits LoginLimits,
) *AuthUseCase {
	return &AuthUseCase{
		userRepository:   userRepo,
		roleRepository:   roleRepo,
		recoveryTokens:   recoveryTokens,
		tokenService:     tokenService,
		passwordService:  passwordService,
		recaptchaService: recaptchaService,
		rateLimitService: rateLimitService,
		logger:           log,
		limits:           limits,
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	creds, err := valueobject.NewCredentials(req.Email, req.Password)
	if err != nil {
		logger.LogAuthEvent(ctx, uc.logger, "login_validation_failed", "", "", false, map[string]interface{}{
			"error": err.Error(),
		})
		return nil, domainerr.ErrValidation(err.Error(), err)
	}
	email := creds.Email()

	ip := requestctx.ClientIP(ctx)
	ipKey := fmt.Sprintf("ip:%s", ip)
	if uc.rateLimitService != nil {
		isBlocked, err := uc.rateLimitService.IsBlocked(ctx, ipKey)
		if err != nil {
			uc.logger.Error(ctx, "Failed to check IP block status", err, map[string]interface{}{
				"ip": ip,
			})
		}
		if isBlocked {
			logger.LogSecurityEvent(ctx, uc.logger, "blocked_ip_login_attempt", "MEDIUM", map[string]interface{}{
				"ip":    ip,
				"email": email,
			})
			return nil, domainerr.ErrIPBlocked(ip)
		}

		allowed, err := uc.rateLimitService.CheckLimit(ctx, ipKey, uc.limits.IPAttempts, uc.limits.IPWindow)
		if err != nil {
			uc.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"ip": ip,
			})
			allowed = true
		}
		if !allowed {
			if err := uc.rateLimitService.Block(ctx, ipKey, uc.limits.BlockDuration, "login attempts exceeded"); err != nil {
				uc.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{"ip": ip})
			}
			logger.LogSecurityEvent(ctx, uc.logger, "ip_rate_limit_exceeded", "HIGH", map[string]interface{}{
				"ip":    ip,
				"email": email,
			})
			return nil, domainerr.ErrRateLimitExceeded()
		}
	}

	if uc.recaptchaService != nil && uc.recaptchaService.IsEnabled() {
		start := time.Now()
		valid, err := uc.recaptchaService.VerifyToken(ctx, req.RecaptchaToken)
		logger.LogPerformance(ctx, uc.logger, "recaptcha_verification", time.Since(start), nil)
		if err != nil || !valid {
			logger.LogSecurityEvent(ctx, uc.logger, "invalid_recaptcha_token", "MEDIUM", map[string]interface{}{
				"email": email,
			})
			return nil, domainerr.ErrRecaptchaInvalid(err)
		}
	}

	user, err := uc.userRepository.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			uc.recordFailure(ctx, ipKey, "")
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", "", ip, false, map[string]interface{}{
				"email": email,
			})
			return nil, domainerr.ErrInvalidCredentials()
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, domainerr.ErrDatabaseError("find user by email", err)
	}

	userKey := fmt.Sprintf("user:%s", user.ID)
	if uc.rateLimitService != nil {
		isUserBlocked, err := uc.rateLimitService.IsBlocked(ctx, userKey)
		if err != nil {
			uc.logger.Error(ctx, "Failed to check user block status", err, map[string]interface{}{
				"user_id": user.ID,
			})
		}
		if isUserBlocked {
			logger.LogSecurityEvent(ctx, uc.logger, "blocked_user_login_attempt", "MEDIUM", map[string]interface{}{
				"user_id": user.ID,
			})
			return nil, domainerr.ErrUserBlocked(user.ID)
		}
	}

	start := time.Now()
	isValid, err := uc.passwordService.VerifyPassword(creds.Password(), user.Password)
	logger.LogPerformance(ctx, uc.logger, "password_verification", time.Since(start), map[string]interface{}{
		"user_id": user.ID,
	})
	if err != nil {
		uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, domainerr.ErrInternalServerError("password verification", err)
	}
	if !isValid {
		uc.recordFailure(ctx, ipKey, userKey)
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_invalid_password", user.ID, ip, false, nil)
		return nil, domainerr.ErrInvalidCredentials()
	}

	// requesters exist unconfirmed until approval; they cannot sign in before setting a password
	if !user.EmailConfirmed {
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_unconfirmed", user.ID, ip, false, nil)
		return nil, domainerr.ErrEmailNotConfirmed()
	}

	accessToken, err := uc.tokenService.GenerateAccessToken(outbound.TokenClaims{UserID: user.ID, Email: user.Email})
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, domainerr.ErrInternalServerError("generate access token", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_successful", user.ID, ip, true, nil)

	return &inbound.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(uc.tokenService.AccessTokenTTL().Seconds()),
	}, nil
}

func (uc *AuthUseCase) recordFailure(ctx context.Context, ipKey, userKey string) {
	if uc.rateLimitService == nil {
		return
	}
	if err := uc.rateLimitService.Increment(ctx, ipKey, uc.limits.IPWindow); err != nil {
		uc.logger.Warn(ctx, "Failed to count login failure", map[string]interface{}{"key": ipKey, "error": err.Error()})
	}
	if userKey == "" {
		return
	}
	if err := uc.rateLimitService.Increment(ctx, userKey, uc.limits.UserWindow); err != nil {
		uc.logger.Warn(ctx, "Failed to count login failure", map[string]interface{}{"key": userKey, "error": err.Error()})
		return
	}
	attempts, err := uc.rateLimitService.GetAttempts(ctx, userKey)
	if err == nil && attempts >= uc.limits.UserAttempts {
		_ = uc.rateLimitService.Block(ctx, userKey, uc.limits.BlockDuration, "login attempts exceeded")
		logger.LogSecurityEvent(ctx, uc.logger, "user_rate_limit_exceeded", "HIGH", map[string]interface{}{
			"key": userKey,
		})
	}
}

// RecoverPassword redeems a single-use recovery token: it sets the password and
// confirms the address, which is how an approved admin first signs in.
func (uc *AuthUseCase) RecoverPassword(ctx context.Context, req inbound.RecoverPasswordRequest) error {
	if req.Token == "" {
		return domainerr.ErrMissingField("token")
	}
	if err := valueobject.ValidatePassword(req.NewPassword); err != nil {
		return domainerr.ErrValidation(err.Error(), err)
	}

	userID, err := uc.recoveryTokens.Consume(ctx, req.Token)
	if err != nil {
		if errors.Is(err, outbound.ErrRecoveryTokenNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "recovery_token_rejected", "MEDIUM", map[string]interface{}{
				"token": "[REDACTED]",
			})
			return domainerr.ErrInvalidRecoveryToken()
		}
		uc.logger.Error(ctx, "Failed to consume recovery token", err, nil)
		return domainerr.ErrInternalServerError("consume recovery token", err)
	}

	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return domainerr.ErrInvalidRecoveryToken()
		}
		return domainerr.ErrDatabaseError("find user", err)
	}

	hash, err := uc.passwordService.HashPassword(req.NewPassword)
	if err != nil {
		return domainerr.ErrInternalServerError("hash password", err)
	}
	user.Password = hash
	user.EmailConfirmed = true
	user.UpdatedAt = time.Now().UTC()
	if err := uc.userRepository.Update(ctx, user); err != nil {
		uc.logger.Error(ctx, "Failed to update password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return domainerr.ErrDatabaseError("update user", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "password_recovered", user.ID, requestctx.ClientIP(ctx), true, nil)
	return nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*inbound.MeResponse, error) {
	if userID == "" {
		return nil, domainerr.ErrMissingCredential()
	}

	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "me_user_not_found", "MEDIUM", map[string]interface{}{
				"user_id": userID,
			})
			return nil, domainerr.ErrIdentityNotFound(userID)
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, domainerr.ErrDatabaseError("find user", err)
	}

	isAdmin, err := uc.roleRepository.HasRole(ctx, user.ID, entity.RoleAdmin)
	if err != nil {
		return nil, domainerr.ErrDatabaseError("check admin role", err)
	}

	return &inbound.MeResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		IsAdmin:  isAdmin,
	}, nil
}

var _ inbound.AuthUseCase = (*AuthUseCase)(nil)
