package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/modules/member/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

type DashboardController struct {
	dashboardService *services.DashboardService
	auth             []mux.MiddlewareFunc
	basePath         string
}

// NewDashboardController mounts the roster statistics for signed-in members.
func NewDashboardController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &DashboardController{
		dashboardService: app.Service(services.DashboardService{}).(*services.DashboardService),
		auth:             auth,
		basePath:         "/api/dashboard",
	}
}

func (c *DashboardController) Key() string {
	return c.basePath
}

func (c *DashboardController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleUser, composables.RoleAdmin))

	router.HandleFunc("/stats", c.Stats).Methods(http.MethodGet)
	router.HandleFunc("/by-district", c.breakdown(member.FieldDistrict)).Methods(http.MethodGet)
	router.HandleFunc("/by-generation", c.breakdown(member.FieldGraduationYear)).Methods(http.MethodGet)
	router.HandleFunc("/by-gender", c.breakdown(member.FieldGender)).Methods(http.MethodGet)
}

type StatsResponse struct {
	Total    int64 `json:"total"`
	Honorary int64 `json:"honorary"`
	Regular  int64 `json:"regular"`
	General  int64 `json:"general"`
}

func (c *DashboardController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.dashboardService.Stats(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to count members")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, StatsResponse(stats))
}

func (c *DashboardController) breakdown(f member.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := c.dashboardService.Breakdown(r.Context(), f)
		if err != nil {
			composables.UseLogger(r.Context()).WithError(err).WithField("field", f).Error("failed to group members")
			httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
			return
		}
		_ = httpapi.WriteJSON(w, http.StatusOK, counts)
	}
}
