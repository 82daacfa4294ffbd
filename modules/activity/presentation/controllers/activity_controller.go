package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/activity/domain/entities/activity"
	"github.com/sanjaithai/backoffice/modules/activity/services"
	memberControllers "github.com/sanjaithai/backoffice/modules/member/presentation/controllers"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ActivityController struct {
	activityService *services.ActivityService
	auth            []mux.MiddlewareFunc
	basePath        string
}

// NewActivityController mounts /api/activities for administrators.
func NewActivityController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &ActivityController{
		activityService: app.Service(services.ActivityService{}).(*services.ActivityService),
		auth:            auth,
		basePath:        "/api/activities",
	}
}

func (c *ActivityController) Key() string {
	return c.basePath
}

func (c *ActivityController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleAdmin))

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/register", c.RegisterMember).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/participants", c.Participants).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/participants", c.DeleteParticipants).Methods(http.MethodDelete)
	router.HandleFunc("/{id:[0-9]+}/participants/download", c.Download).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}/participants/{memberId}", c.DeleteParticipant).Methods(http.MethodDelete)
}

func eventID(r *http.Request) int64 {
	// the route pattern guarantees digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (c *ActivityController) List(w http.ResponseWriter, r *http.Request) {
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

func (c *ActivityController) Get(w http.ResponseWriter, r *http.Request) {
	a, err := c.activityService.GetByID(r.Context(), eventID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toActivityResponse(a))
}

func decodeSave(w http.ResponseWriter, r *http.Request) (*activity.SaveDTO, bool) {
	var dto activity.SaveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return nil, false
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return nil, false
	}
	return &dto, true
}

func (c *ActivityController) Create(w http.ResponseWriter, r *http.Request) {
	dto, ok := decodeSave(w, r)
	if !ok {
		return
	}
	created, err := c.activityService.Create(r.Context(), dto)
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toActivityResponse(created))
}

func (c *ActivityController) Update(w http.ResponseWriter, r *http.Request) {
	dto, ok := decodeSave(w, r)
	if !ok {
		return
	}
	updated, err := c.activityService.Update(r.Context(), eventID(r), dto)
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toActivityResponse(updated))
}

func (c *ActivityController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.activityService.Delete(r.Context(), eventID(r)); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type registerRequest struct {
	MemberID string `json:"member_id"`
}

type registerResponse struct {
	Message string                           `json:"message"`
	Member  memberControllers.MemberResponse `json:"member"`
	Points  int                              `json:"points"`
}

func (c *ActivityController) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if req.MemberID == "" {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "member_id is required")
		return
	}
	reg, err := c.activityService.Register(r.Context(), eventID(r), req.MemberID)
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, registerResponse{
		Message: "registered",
		Member:  memberControllers.ToResponse(reg.Member),
		Points:  reg.Points,
	})
}

func (c *ActivityController) Participants(w http.ResponseWriter, r *http.Request) {
	items, err := c.activityService.Participants(r.Context(), eventID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]ParticipantResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toParticipantResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func (c *ActivityController) DeleteParticipants(w http.ResponseWriter, r *http.Request) {
	n, err := c.activityService.DeleteParticipants(r.Context(), eventID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

func (c *ActivityController) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	if err := c.activityService.DeleteParticipant(r.Context(), eventID(r), mux.Vars(r)["memberId"]); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ActivityController) Download(w http.ResponseWriter, r *http.Request) {
	file, err := c.activityService.ParticipantsWorkbook(r.Context(), eventID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxMime)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(file.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, activity.ErrNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "ACTIVITY_NOT_FOUND", "activity not found")
	case errors.Is(err, activity.ErrMemberNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "MEMBER_NOT_FOUND", "member not found")
	case errors.Is(err, activity.ErrParticipantNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "PARTICIPANT_NOT_FOUND", "member is not registered for this activity")
	case errors.Is(err, activity.ErrAlreadyRegistered):
		httpapi.WriteAPIError(w, r, http.StatusConflict, "ALREADY_REGISTERED", "member already registered for this activity")
	case errors.Is(err, activity.ErrNoParticipants):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "NO_PARTICIPANTS", "activity has no participants")
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("activity request failed")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
