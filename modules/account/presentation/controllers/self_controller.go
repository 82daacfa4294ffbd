package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/account/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

// selfRoutes is shared by the controllers a signed-in member uses on their
// own account.
type selfRoutes struct {
	accountService *services.AccountService
	auth           []mux.MiddlewareFunc
	basePath       string
}

func (c *selfRoutes) Key() string {
	return c.basePath
}

func (c *selfRoutes) subrouter(r *mux.Router) *mux.Router {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleUser, composables.RoleAdmin))
	return router
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok || identity.UserID == 0 {
		httpapi.WriteAPIError(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "no token provided")
		return 0, false
	}
	return identity.UserID, true
}

type MeController struct {
	selfRoutes
}

// NewMeController mounts /api/user/me.
func NewMeController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &MeController{selfRoutes{
		accountService: app.Service(services.AccountService{}).(*services.AccountService),
		auth:           auth,
		basePath:       "/api/user",
	}}
}

func (c *MeController) Register(r *mux.Router) {
	c.subrouter(r).HandleFunc("/me", c.Me).Methods(http.MethodGet)
}

type profileResponse struct {
	Profile AccountResponse `json:"profile"`
}

func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	a, err := c.accountService.GetByID(r.Context(), id)
	if err != nil {
		failSelf(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, profileResponse{Profile: toResponse(a)})
}

type SettingsController struct {
	selfRoutes
}

// NewSettingsController mounts /api/settings for password, email and
// notification changes.
func NewSettingsController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &SettingsController{selfRoutes{
		accountService: app.Service(services.AccountService{}).(*services.AccountService),
		auth:           auth,
		basePath:       "/api/settings",
	}}
}

func (c *SettingsController) Register(r *mux.Router) {
	router := c.subrouter(r)
	router.HandleFunc("/password", c.Password).Methods(http.MethodPut)
	router.HandleFunc("/email", c.Email).Methods(http.MethodPut)
	router.HandleFunc("/notify", c.Notify).Methods(http.MethodPut)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *SettingsController) Password(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	var dto account.PasswordChangeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	if err := c.accountService.ChangePassword(r.Context(), id, &dto); err != nil {
		failSelf(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, messageResponse{Message: "password changed"})
}

type emailResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

func (c *SettingsController) Email(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	var dto account.EmailChangeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	a, err := c.accountService.ChangeEmail(r.Context(), id, dto.NewEmail)
	if err != nil {
		failSelf(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, emailResponse{Message: "email changed", Email: a.Email})
}

type notifyResponse struct {
	Message string `json:"message"`
	Enabled bool   `json:"enabled"`
}

func (c *SettingsController) Notify(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}
	var dto account.NotificationsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	a, err := c.accountService.SetNotifications(r.Context(), id, *dto.Enabled)
	if err != nil {
		failSelf(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, notifyResponse{Message: "notifications updated", Enabled: a.NotificationsEnabled})
}

func failSelf(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, account.ErrWrongPassword):
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "WRONG_PASSWORD", "current password is incorrect")
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("account settings request failed")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
