// Package app wires configuration, storage and services into the runtime
// graph shared by the server and the worker.
package app

import (
	"context"
	"fmt"

	"confhub/internal/config"
	"confhub/internal/domain/auth"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/payments"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/stores/grn"
	"confhub/internal/domain/stores/issuance"
	"confhub/internal/domain/stores/item"
	"confhub/internal/domain/stores/ledger"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/abstract"
	"confhub/internal/domain/submission/exhibitor"
	"confhub/internal/domain/submission/preconference"
	"confhub/internal/domain/submission/registration"
	"confhub/internal/domain/submission/sponsorship"
	"confhub/internal/infrastructure/http/v1/handlers"
	"confhub/internal/infrastructure/mail"
	"confhub/internal/infrastructure/numerator"
	"confhub/internal/infrastructure/storage/postgres"
	"confhub/internal/infrastructure/storage/postgres/stores_repo"
	"confhub/internal/infrastructure/storage/postgres/submission_repo"
	"confhub/internal/infrastructure/uploads"
	"confhub/pkg/logger"
)

// OutboxBatchSize is the number of e-mails one relay pass claims.
const OutboxBatchSize = 20

// App is the assembled runtime.
type App struct {
	Config    *config.Config
	Pool      *postgres.Pool
	TxManager *postgres.TxManager

	JWT  *auth.JWTService
	Auth *auth.Service

	Uploads     *uploads.Store
	Submissions handlers.IntakeServices
	Payments    *payments.Service
	Stores      handlers.StoresServices

	Relay *postgres.OutboxRelay
}

// New connects to PostgreSQL and builds every service.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN())
	poolCfg.MaxConns = cfg.Database.MaxConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a, err := build(cfg, pool, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg *config.Config, pool *postgres.Pool, log *logger.Logger) (*App, error) {
	txManager := postgres.NewTxManager(pool)

	recorder, err := postgres.NewAuditService(txManager)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	jwtCfg := auth.DefaultJWTConfig(cfg.Admin.JWTSecret)
	jwtCfg.AccessTokenTTL = cfg.Admin.JWTTTL
	jwtService := auth.NewJWTService(jwtCfg)
	authService, err := auth.NewService(cfg.Admin.Username, cfg.Admin.PasswordHash, cfg.Admin.Password, jwtService)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	numbers := numerator.NewWithProvider(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})
	notifier := notification.NewNotifier(postgres.NewOutboxPublisher(txManager), cfg.SMTP.FromEmail)
	files := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	prices := pricing.Default()

	meetingRepo := submission_repo.NewPreconferenceRepo(txManager)
	subs := handlers.IntakeServices{
		Registrations: registration.NewService(
			submissionConfig[*registration.Registration](submission_repo.NewRegistrationRepo(txManager), txManager, numbers, notifier, recorder, files), prices),
		Abstracts: abstract.NewService(
			submissionConfig[*abstract.Abstract](submission_repo.NewAbstractRepo(txManager), txManager, numbers, notifier, recorder, files)),
		Sponsorships: sponsorship.NewService(
			submissionConfig[*sponsorship.Sponsorship](submission_repo.NewSponsorshipRepo(txManager), txManager, numbers, notifier, recorder, files), prices),
		Exhibitors: exhibitor.NewService(
			submissionConfig[*exhibitor.Exhibitor](submission_repo.NewExhibitorRepo(txManager), txManager, numbers, notifier, recorder, files), prices),
		Meetings: preconference.NewService(
			submissionConfig[*preconference.Meeting](meetingRepo, txManager, numbers, notifier, recorder, files), meetingRepo, prices),
	}

	itemRepo := stores_repo.NewItemRepo(txManager)
	ledgerSvc := ledger.NewService(stores_repo.NewLedgerRepo(txManager), itemRepo, txManager, recorder)
	itemSvc := item.NewService(itemRepo, ledgerSvc, txManager)
	storesSvc := handlers.StoresServices{
		Items:     itemSvc,
		GRNs:      grn.NewService(stores_repo.NewGRNRepo(txManager), itemSvc, ledgerSvc, numbers, txManager),
		Issuances: issuance.NewService(stores_repo.NewIssuanceRepo(txManager), ledgerSvc, numbers, txManager, recorder),
		Ledger:    ledgerSvc,
	}

	renderer, err := notification.NewRenderer(notification.Links{SiteURL: cfg.Site.SiteURL, APIURL: cfg.Site.APIURL})
	if err != nil {
		return nil, fmt.Errorf("mail templates: %w", err)
	}
	var sender mail.Sender = mail.LogSender{}
	if cfg.SMTPEnabled() {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			User:      cfg.SMTP.User,
			Password:  cfg.SMTP.Password,
			FromName:  cfg.SMTP.FromName,
			FromEmail: cfg.SMTP.FromEmail,
		})
	} else {
		log.Warn("SMTP not configured, e-mails will only be logged")
	}

	return &App{
		Config:      cfg,
		Pool:        pool,
		TxManager:   txManager,
		JWT:         jwtService,
		Auth:        authService,
		Uploads:     files,
		Submissions: subs,
		Payments:    payments.NewService(submission_repo.NewPaymentReader(txManager), prices),
		Stores:      storesSvc,
		Relay:       postgres.NewOutboxRelay(txManager, OutboxBatchSize, mail.NewDispatcher(renderer, sender)),
	}, nil
}

func submissionConfig[T submission.Record](
	repo submission.Repository[T],
	txManager *postgres.TxManager,
	numbers *numerator.Service,
	notifier *notification.Notifier,
	recorder *postgres.AuditService,
	files *uploads.Store,
) submission.Config[T] {
	return submission.Config[T]{
		Repo:      repo,
		TxManager: txManager,
		Numerator: numbers,
		Notifier:  notifier,
		Audit:     recorder,
		Files:     files,
	}
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}

// HealthChecks reports the database, the upload directory and the outbox backlog.
func (a *App) HealthChecks() []handlers.HealthCheck {
	return []handlers.HealthCheck{
		{
			Name:  "database",
			Check: a.Pool.Ping,
			Info:  func(context.Context) (any, error) { return a.Pool.Stats(), nil },
		},
		{
			Name:  "uploads",
			Check: func(context.Context) error { return a.Uploads.Ready() },
		},
		{
			Name: "outbox",
			Info: func(ctx context.Context) (any, error) { return a.Relay.Backlog(ctx) },
		},
	}
}
