package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/auth"
	"github.com/sirdesai22/hackollab/internal/config"
	"github.com/sirdesai22/hackollab/internal/db"
	"github.com/sirdesai22/hackollab/internal/elastic"
	"github.com/sirdesai22/hackollab/internal/handlers"
	"github.com/sirdesai22/hackollab/internal/metrics"
	"github.com/sirdesai22/hackollab/internal/notify"
	"github.com/sirdesai22/hackollab/internal/otel"
	"github.com/sirdesai22/hackollab/internal/store"
	"github.com/sirdesai22/hackollab/internal/workers"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the outbox workers",
}

func init() {
	// RunE is assigned here to avoid an initialization cycle (serve reads serveCmd's flags).
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	}
	serveCmd.Flags().Bool("no-workers", false, "serve HTTP only; leave the outbox to another instance")
}

func serve(ctx context.Context) error {
	cfg, database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	cleanup, err := otel.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := shutdownTimeout()
		defer cancel()
		_ = cleanup(shutdownCtx)
	}()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}

	verifier, err := verifiers(ctx, cfg)
	if err != nil {
		return err
	}
	mailer, err := newMailer(cfg)
	if err != nil {
		return err
	}
	renderer, err := notify.NewRenderer(cfg.FrontendURL)
	if err != nil {
		return err
	}

	esClient, err := elastic.Connect(cfg.ElasticURL)
	if err != nil {
		return err
	}
	var searcher *elastic.Searcher
	if esClient != nil {
		if err := elastic.EnsureIndexes(ctx, esClient); err != nil {
			log.Warn().Err(err).Msg("elasticsearch indexes not ready, search may fail")
		}
		searcher = &elastic.Searcher{ES: esClient}
	}

	metrics.Register(nil)
	st := store.NewGormStore(database)

	var wg sync.WaitGroup
	noWorkers, _ := serveCmd.Flags().GetBool("no-workers")
	if !noWorkers {
		worker := newWorker(cfg, &workers.GormQueue{DB: database}, st, renderer, mailer, esClient)
		wg.Add(2)
		go func() { defer wg.Done(); worker.Run(ctx) }()
		go func() { defer wg.Done(); worker.RetryDLQ(ctx) }()
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: handlers.Router(handlers.RouterOptions{
			Store:          st,
			Verifier:       verifier,
			Search:         searcher,
			Logger:         log.Logger,
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimit:      cfg.RateLimit,
			Production:     cfg.Production(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("starting " + serviceName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := shutdownTimeout()
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
	wg.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// verifiers builds the identity provider chain from whichever providers
// are configured.
func verifiers(ctx context.Context, cfg config.Config) (auth.Verifier, error) {
	var chain auth.Chain
	if cfg.FirebaseProjectID != "" {
		v, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	}
	if cfg.ClerkIssuer != "" {
		v, err := auth.NewClerkVerifier(cfg.ClerkIssuer, cfg.ClerkAudience)
		if err != nil {
			return nil, err
		}
		chain = append(chain, v)
	}
	if cfg.DevJWTSecret != "" {
		if cfg.Production() {
			return nil, fmt.Errorf("AUTH_DEV_JWT_SECRET is not allowed in production")
		}
		log.Warn().Str("provider", cfg.DevJWTProvider).Msg("accepting shared-secret dev tokens")
		chain = append(chain, auth.NewHMACVerifier(cfg.DevJWTSecret, cfg.DevJWTProvider))
	}
	if len(chain) == 0 {
		log.Warn().Msg("no identity provider configured, protected routes will reject every request")
	}
	return chain, nil
}

func newMailer(cfg config.Config) (notify.Mailer, error) {
	if !cfg.MailEnabled() {
		log.Warn().Msg("EMAIL_USER/EMAIL_PASS not set, emails will only be logged")
		return notify.LogMailer{}, nil
	}
	m, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.Sender(),
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newWorker(cfg config.Config, q workers.Queue, st workers.Loader, r *notify.Renderer, m notify.Mailer, client *es.Client) *workers.OutboxWorker {
	return &workers.OutboxWorker{
		Queue:        q,
		Store:        st,
		Renderer:     r,
		Mailer:       m,
		ES:           client,
		PollInterval: cfg.OutboxPollInterval,
		DLQInterval:  cfg.DLQRetryInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxAttempts:  cfg.OutboxMaxAttempts,

		DLQMaxRetries: cfg.DLQMaxRetries,
	}
}
