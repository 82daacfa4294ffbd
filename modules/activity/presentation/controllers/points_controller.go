package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/activity/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

type PointsController struct {
	activityService *services.ActivityService
	auth            []mux.MiddlewareFunc
	basePath        string
}

func NewPointsController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &PointsController{
		activityService: app.Service(services.ActivityService{}).(*services.ActivityService),
		auth:            auth,
		basePath:        "/api/points",
	}
}

func (c *PointsController) Key() string {
	return c.basePath
}

func (c *PointsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleAdmin))

	router.HandleFunc("", c.Leaderboard).Methods(http.MethodGet)
	router.HandleFunc("/all", c.Leaderboard).Methods(http.MethodGet)
	router.HandleFunc("/{memberId}", c.Member).Methods(http.MethodGet)
}

func (c *PointsController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := c.activityService.Leaderboard(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]StandingResponse, 0, len(standings))
	for _, s := range standings {
		out = append(out, StandingResponse(s))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *PointsController) Member(w http.ResponseWriter, r *http.Request) {
	detail, err := c.activityService.MemberPoints(r.Context(), mux.Vars(r)["memberId"])
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toPointsDetailResponse(detail))
}
