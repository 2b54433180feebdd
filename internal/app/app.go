// Package app assembles the verzoeken API from its configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/hashicorp/go-multierror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/verzoeken/config"
	"github.com/Ramsey-B/verzoeken/pkg/database"
	"github.com/Ramsey-B/verzoeken/pkg/health"
	"github.com/Ramsey-B/verzoeken/pkg/httpclient"
	"github.com/Ramsey-B/verzoeken/pkg/kafka"
	"github.com/Ramsey-B/verzoeken/pkg/mask"
	"github.com/Ramsey-B/verzoeken/pkg/middleware"
	"github.com/Ramsey-B/verzoeken/pkg/redis"
	"github.com/Ramsey-B/verzoeken/pkg/remote"
	"github.com/Ramsey-B/verzoeken/pkg/resource"
	"github.com/Ramsey-B/verzoeken/pkg/startup"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

const shutdownTimeout = 15 * time.Second

// App owns the connections opened during startup and the echo server built on them.
type App struct {
	cfg     *config.Config
	logger  ectologger.Logger
	startup *startup.Startup
	health  *health.Checker

	http     *httpclient.Client
	urls     *urls.Resolver
	registry *remote.Registry

	db       database.DB
	redis    *redis.Client
	producer *kafka.Producer
	mask     mask.Mask
	verifier middleware.TokenVerifier

	zrcSchemas *resource.Schemas
	drcSchemas *resource.Schemas

	echo *echo.Echo
}

func New(cfg *config.Config, logger ectologger.Logger) *App {
	client := httpclient.NewClient(httpclient.Config{
		Timeout:         cfg.RemoteTimeout,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}, logger)

	a := &App{
		cfg:      cfg,
		logger:   logger,
		startup:  startup.NewStartup(logger, cfg.StartupMaxAttempts),
		health:   health.NewChecker(cfg.Version),
		http:     client,
		urls:     urls.NewResolver(cfg.SiteDomain, cfg.IsHTTPS, cfg.APIVersion),
		registry: remote.NewRegistry(client, cfg.RemoteResultsPath, logger),
	}
	a.registerDependencies()
	return a
}

// Run starts the dependencies, serves until ctx is cancelled and then shuts down in reverse order.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup.Start(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.startup.Stop(stopCtx)
		return fmt.Errorf("startup failed: %w", err)
	}

	e, err := a.buildServer()
	if err != nil {
		return err
	}
	a.echo = e

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Infof("Starting %s on port %d", a.cfg.AppName, a.cfg.Port)
		if err := e.Start(fmt.Sprintf(":%d", a.cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	a.health.SetReady(true)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			a.logger.WithError(err).Error("HTTP server stopped")
		}
	}

	return a.Shutdown()
}

// Shutdown stops accepting requests, drains in-flight ones and closes the dependencies.
func (a *App) Shutdown() error {
	a.health.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var serverErr error
	if a.echo != nil {
		serverErr = a.echo.Shutdown(ctx)
	}
	stopErr := a.startup.Stop(ctx)

	a.logger.Info("Shutdown complete")
	return multierror.Append(nil, serverErr, stopErr).ErrorOrNil()
}

func (a *App) Logger() ectologger.Logger {
	return a.logger
}
