package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
)

type HealthController struct {
	pool *pgxpool.Pool
}

func NewHealthController(pool *pgxpool.Pool) application.Controller {
	return &HealthController{pool: pool}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "ok"}
	code := http.StatusOK
	if c.pool == nil {
		status["database"] = "not configured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.pool.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	_ = httpapi.WriteJSON(w, code, status)
}
