// Package container wires configuration into adapters and use cases. The server and
// the operator commands share it so they run the same code paths.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	goredis "github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/application/usecase/admin"
	"github.com/fixora/complaintdesk/application/usecase/auth"
	amqpadapter "github.com/fixora/complaintdesk/infrastructure/adapter/amqp"
	auditadapter "github.com/fixora/complaintdesk/infrastructure/adapter/audit"
	"github.com/fixora/complaintdesk/infrastructure/adapter/identity"
	"github.com/fixora/complaintdesk/infrastructure/adapter/postgres"
	redisadapter "github.com/fixora/complaintdesk/infrastructure/adapter/redis"
	"github.com/fixora/complaintdesk/infrastructure/config"
	"github.com/fixora/complaintdesk/infrastructure/http/middleware"
	"github.com/fixora/complaintdesk/infrastructure/http/router"
	"github.com/fixora/complaintdesk/infrastructure/service/email"
	"github.com/fixora/complaintdesk/infrastructure/service/jwt"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
	"github.com/fixora/complaintdesk/infrastructure/service/metrics"
	"github.com/fixora/complaintdesk/infrastructure/service/password"
	"github.com/fixora/complaintdesk/infrastructure/service/ratelimit"
	"github.com/fixora/complaintdesk/infrastructure/service/recaptcha"
)

type Container struct {
	Config *config.Config
	Logger logger.Logger

	DB    *sql.DB
	Redis *goredis.Client

	Identities *identity.LocalGateway
	Metrics    *metrics.Recorder
	RateLimit  inbound.RateLimitService
	Admin      *admin.AdminUseCaseImpl
	Auth       *auth.AuthUseCase

	closers []func() error
}

// NewLogger builds the service logger from configuration.
func NewLogger(cfg *config.Config, service string) logger.Logger {
	return logger.NewStructuredLogger(loggerConfig(cfg, service))
}

func loggerConfig(cfg *config.Config, service string) logger.LoggerConfig {
	return logger.LoggerConfig{
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		CorrelationIDHeader: cfg.LogCorrelationIDHeader,
		EnableRequestLog:    cfg.LogEnableRequestLog,
		EnableResponseLog:   cfg.LogEnableResponseLog,
		ServiceName:         service,
	}
}

// New connects to Postgres and Redis and builds every component. Close releases them.
func New(ctx context.Context, cfg *config.Config, service string) (*Container, error) {
	log := NewLogger(cfg, service)
	c := &Container{Config: cfg, Logger: log}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)
	log.Info(ctx, "Database connection established", nil)

	rdb, err := redisadapter.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Redis = rdb
	c.closers = append(c.closers, rdb.Close)
	log.Info(ctx, "Redis connection established", nil)

	tokenService, err := jwt.NewJWTService(cfg)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	passwordService := password.NewBcryptPasswordService(bcrypt.DefaultCost)

	users := postgres.NewUserRepositoryAdapter(db)
	roles := postgres.NewRoleRepositoryAdapter(db)
	recoveryTokens := redisadapter.NewRecoveryTokenStore(rdb)
	c.Identities = identity.NewLocalGateway(users, passwordService, tokenService, recoveryTokens)

	var auditSink outbound.AuditSink = postgres.NewAuditLogRepositoryAdapter(db)
	if cfg.AuditAMQPEnabled {
		publisher, err := amqpadapter.NewAuditPublisher(cfg.AMQPURL, cfg.AuditQueue)
		if err != nil {
			// the audit trail in Postgres stays authoritative; the broker mirror is optional
			log.Error(ctx, "Failed to connect audit broker, continuing without it", err, map[string]interface{}{
				"queue": cfg.AuditQueue,
			})
		} else {
			c.closers = append(c.closers, publisher.Close)
			auditSink = auditadapter.NewMultiSink(log, auditSink, publisher)
			log.Info(ctx, "Audit broker mirror enabled", map[string]interface{}{"queue": cfg.AuditQueue})
		}
	}

	var recaptchaService inbound.RecaptchaService
	if cfg.RecaptchaEnabled {
		recaptchaService = recaptcha.NewRecaptchaService(recaptcha.Options{
			Secret:   cfg.RecaptchaSecret,
			Enabled:  cfg.RecaptchaEnabled,
			Skip:     cfg.RecaptchaSkip,
			Timeout:  cfg.RecaptchaTimeout,
			MinScore: cfg.RecaptchaMinScore,
		}, log)
	} else {
		recaptchaService = recaptcha.NewNoopRecaptchaService()
	}

	var rateLimitClient *goredis.Client
	if cfg.RateLimitEnabled {
		rateLimitClient = rdb
	}
	c.RateLimit = ratelimit.NewRateLimitService(rateLimitClient, logger.NewLogrus(loggerConfig(cfg, service)))

	var workflowMetrics outbound.WorkflowMetrics
	if cfg.MetricsEnabled {
		c.Metrics = metrics.NewRecorder()
		workflowMetrics = c.Metrics
	}

	c.Admin = admin.NewAdminUseCase(admin.Dependencies{
		Identities:          c.Identities,
		Roles:               roles,
		Requests:            postgres.NewAdminRequestRepositoryAdapter(db),
		Profiles:            postgres.NewProfileRepositoryAdapter(db),
		Email:               newEmailSender(cfg, log),
		Audit:               auditSink,
		Recaptcha:           recaptchaService,
		RateLimit:           c.RateLimit,
		Metrics:             workflowMetrics,
		Logger:              log,
		RecoveryRedirectURL: cfg.RecoveryRedirectURL(),
		CleanupConcurrency:  cfg.CleanupConcurrency,
	})

	c.Auth = auth.NewAuthUseCase(
		users,
		roles,
		recoveryTokens,
		tokenService,
		passwordService,
		recaptchaService,
		c.RateLimit,
		log,
		auth.LoginLimits{
			IPAttempts:    cfg.RateLimitIPAttempts,
			IPWindow:      cfg.RateLimitIPWindow,
			UserAttempts:  cfg.RateLimitUserAttempts,
			UserWindow:    cfg.RateLimitUserWindow,
			BlockDuration: cfg.RateLimitBlockDuration,
		},
	)

	return c, nil
}

func newEmailSender(cfg *config.Config, log logger.Logger) outbound.EmailSender {
	if cfg.EmailProvider == "resend" {
		return email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailTimeout, log)
	}
	log.Warn(context.Background(), "EMAIL_PROVIDER=log: approval emails are written to the log only", nil)
	return email.NewLogSender(log)
}

// Handler builds the HTTP router over the container's use cases.
func (c *Container) Handler() http.Handler {
	header := c.Config.LogCorrelationIDHeader
	if header == "" {
		header = middleware.CorrelationIDHeader
	}
	return router.New(router.Config{
		CorrelationIDHeader:  header,
		CORSEnabled:          c.Config.CORSEnabled,
		CORSAllowedOrigins:   c.Config.CORSAllowedOrigins,
		CORSAllowCredentials: c.Config.CORSAllowCredentials,
		ServiceRoleKey:       c.Config.ServiceRoleKey,
		ThrottleRPS:          c.Config.ThrottleRPS,
		ThrottleBurst:        c.Config.ThrottleBurst,
	}, router.Dependencies{
		AdminUseCase: c.Admin,
		AuthUseCase:  c.Auth,
		Gate:         c.Admin.Gate(),
		RateLimit:    c.RateLimit,
		Metrics:      c.Metrics,
		Logger:       c.Logger,
	})
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
