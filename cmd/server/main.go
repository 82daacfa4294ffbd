package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanjaithai/backoffice/internal/server"
	"github.com/sanjaithai/backoffice/modules"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/logging"
	"github.com/sanjaithai/backoffice/pkg/metrics"
	"github.com/sanjaithai/backoffice/pkg/migrations"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.Endpoint,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.Endpoint)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.MigrateOnStart {
		results, err := migrations.Up(ctx, conf.Database.Opts)
		if err != nil {
			panic(err)
		}
		logger.WithField("applied", len(results)).Info("migrations applied")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(connectCtx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:   pool,
		Logger: logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	app.RegisterControllers(metrics.NewHealthController(pool))
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(ctx, conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
