package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-print"

	auth "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/mailer"
	"github.com/goliatone/go-accounts/middleware/jwtware"
	"github.com/goliatone/go-accounts/repository"
)

const serviceName = "accounts-server"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := auth.LoadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Debug)

	if cfg.Debug {
		redacted := *cfg
		redacted.ActivationSecret, redacted.AccessSecret, redacted.RefreshSecret, redacted.SMTPPassword = "***", "***", "***", "***"
		fmt.Println(print.MaybePrettyJSON(redacted))
	}

	shutdownTracing, err := setupTracing(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(tctx)
	}()

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db.DB, cfg.DatabaseDriver); err != nil {
		return err
	}

	repos := repository.NewRepositoryManager(db,
		repository.WithHashidIDs(cfg.UseHashid),
		repository.WithLogger(logger.With("component", "repository")),
	)
	repos.MustValidate()

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}

	activity := auth.LoggerActivitySink(logger.With("component", "activity"))
	codec := auth.NewActivationTokenCodecFromConfig(cfg, auth.WithActivationLogger(logger))
	handlerOpts := []auth.HandlerOption{
		auth.WithHandlerLogger(logger),
		auth.WithHandlerActivitySink(activity),
		auth.WithPhoneRegion(cfg.PhoneRegion),
	}

	auther := auth.NewAuthenticator(repos.Accounts(), cfg).
		WithLogger(logger).
		WithTokenService(auth.NewTokenService(cfg, auth.WithTokenLogger(logger))).
		WithActivitySink(activity)

	controller := auth.NewAuthController(
		auth.NewRegisterAccountHandler(repos.Accounts(), codec, sender, handlerOpts...),
		auth.NewActivateAccountHandler(repos.Accounts(), codec, handlerOpts...),
		auther,
		auth.WithControllerDebug(cfg.Debug),
		auth.WithControllerLogger(logger.With("component", "http")),
	)

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: !cfg.Debug,
	})
	app.Use(recover.New())

	guard := jwtware.New(jwtware.Config{Resolver: auther})
	auth.RegisterRoutes(app.Group("/auth"), controller, guard)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func newSender(cfg *auth.EnvConfig, logger *slogLogger) (auth.NotificationSender, error) {
	if cfg.MailDriver == "log" {
		return mailer.NewLogSender(logger.With("component", "mailer")), nil
	}

	renderer, err := mailer.NewDefaultRenderer()
	if err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}

	transport, err := mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp transport: %w", err)
	}

	sender, err := mailer.NewSender(cfg.MailFrom, renderer, transport,
		mailer.WithSenderLogger(logger.With("component", "mailer")),
	)
	if err != nil {
		return nil, err
	}
	return sender, nil
}
