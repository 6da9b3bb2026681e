package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/constants"
	"github.com/vantagecrm/vantage/pkg/middleware"
	"github.com/vantagecrm/vantage/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the middleware stack and HTTP server. Order matters:
// logging first so every later failure is attributed to a request id, then
// context provisioning, then CORS and the gateway user.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.Cors(options.Configuration.AllowedOrigins...),
		middleware.ProvideUser(),
	}
	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app), nil
}
