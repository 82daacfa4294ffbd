package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/constants"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
	"github.com/sanjaithai/backoffice/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	middlewares := []mux.MiddlewareFunc{
		// creates the root span and request logger
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),

		middleware.TracedMiddleware("database"),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CORSOrigins...),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		switch conf.RateLimit.Storage {
		case "redis":
			var err error
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}
		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, http.HandlerFunc(notFound), http.HandlerFunc(methodNotAllowed)), nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteAPIError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteAPIError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}
