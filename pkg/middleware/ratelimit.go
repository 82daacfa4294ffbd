package middleware

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/sanjaithai/backoffice/pkg/httpapi"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	store, err := sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{
		Prefix: "backoffice_rate_limit",
	})
	if err != nil {
		return nil, errors.Wrap(err, "redis store")
	}
	return store, nil
}

// RateLimit applies a global per-IP limit. A non-positive rate disables it.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	if cfg.RequestsPerPeriod <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Second
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	instance := limiter.New(cfg.Store, limiter.Rate{
		Period: cfg.Period,
		Limit:  int64(cfg.RequestsPerPeriod),
	})
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			httpapi.WriteAPIError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
		}),
	)
	return mw.Handler
}
