package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/internal/server"
	"github.com/vantagecrm/vantage/modules"
	importservices "github.com/vantagecrm/vantage/modules/leadimport/services"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/defaults"
	"github.com/vantagecrm/vantage/pkg/eventbus"
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
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		RBAC:     defaults.RBACSchema(),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	if err := app.Migrations().Apply(context.Background()); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	startSessionJanitor(pool, app, logger.WithField("component", "session-janitor"))

	options := &server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	}
	serverInstance, err := server.Default(options)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	logger.Infof("listening on %s", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// startSessionJanitor periodically drops import sessions idle past the
// configured TTL.
func startSessionJanitor(pool *pgxpool.Pool, app application.Application, logger *logrus.Entry) {
	imports := app.Service(importservices.ImportService{}).(*importservices.ImportService)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx := composables.WithPool(context.Background(), pool)
			purged, err := imports.PurgeExpired(ctx)
			if err != nil {
				logger.WithError(err).Error("failed to purge expired import sessions")
				continue
			}
			if purged > 0 {
				logger.Infof("purged %d expired import sessions", purged)
			}
		}
	}()
}
