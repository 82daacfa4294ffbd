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

// linkedMember returns the member id carried by the caller's token.
func linkedMember(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok || identity.MemberID == "" {
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "MEMBER_NOT_LINKED", "account is not linked to a member")
		return "", false
	}
	return identity.MemberID, true
}

type MyActivityController struct {
	activityService *services.ActivityService
	auth            []mux.MiddlewareFunc
	basePath        string
}

// NewMyActivityController mounts /api/my-activities where members browse
// activities and sign themselves up.
func NewMyActivityController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &MyActivityController{
		activityService: app.Service(services.ActivityService{}).(*services.ActivityService),
		auth:            auth,
		basePath:        "/api/my-activities",
	}
}

func (c *MyActivityController) Key() string {
	return c.basePath
}

func (c *MyActivityController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleUser, composables.RoleAdmin))

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/applications", c.Applications).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/applicants", c.Apply).Methods(http.MethodPost)
}

func (c *MyActivityController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.activityService.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toActivityResponse(a))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *MyActivityController) Get(w http.ResponseWriter, r *http.Request) {
	a, err := c.activityService.GetByID(r.Context(), eventID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toActivityResponse(a))
}

func (c *MyActivityController) Applications(w http.ResponseWriter, r *http.Request) {
	memberID, ok := linkedMember(w, r)
	if !ok {
		return
	}
	detail, err := c.activityService.MemberPoints(r.Context(), memberID)
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toPointsDetailResponse(detail).Events)
}

type applyResponse struct {
	Message string `json:"message"`
	EventID int64  `json:"event_id"`
	Points  int    `json:"points"`
}

func (c *MyActivityController) Apply(w http.ResponseWriter, r *http.Request) {
	memberID, ok := linkedMember(w, r)
	if !ok {
		return
	}
	id := eventID(r)
	reg, err := c.activityService.Register(r.Context(), id, memberID)
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, applyResponse{Message: "registered", EventID: id, Points: reg.Points})
}

type MyPointsController struct {
	activityService *services.ActivityService
	auth            []mux.MiddlewareFunc
	basePath        string
}

func NewMyPointsController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &MyPointsController{
		activityService: app.Service(services.ActivityService{}).(*services.ActivityService),
		auth:            auth,
		basePath:        "/api/my-points",
	}
}

func (c *MyPointsController) Key() string {
	return c.basePath
}

func (c *MyPointsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleUser, composables.RoleAdmin))
	router.HandleFunc("", c.Get).Methods(http.MethodGet)
}

func (c *MyPointsController) Get(w http.ResponseWriter, r *http.Request) {
	memberID, ok := linkedMember(w, r)
	if !ok {
		return
	}
	detail, err := c.activityService.MemberPoints(r.Context(), memberID)
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toPointsDetailResponse(detail))
}
