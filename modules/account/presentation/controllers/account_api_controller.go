package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/account/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
	"github.com/sanjaithai/backoffice/pkg/secrets"
)

type AccountAPIController struct {
	accountService *services.AccountService
	auth           []mux.MiddlewareFunc
	basePath       string
	pageSize       int
	maxPageSize    int
}

func NewAccountAPIController(app application.Application, pageSize, maxPageSize int, auth ...mux.MiddlewareFunc) application.Controller {
	return &AccountAPIController{
		accountService: app.Service(services.AccountService{}).(*services.AccountService),
		auth:           auth,
		basePath:       "/api/admin/users",
		pageSize:       pageSize,
		maxPageSize:    maxPageSize,
	}
}

func (c *AccountAPIController) Key() string {
	return c.basePath
}

func (c *AccountAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleAdmin))

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/available-members", c.AvailableMembers).Methods(http.MethodGet)
	router.HandleFunc("/{userId:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{userId:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{userId:[0-9]+}/approve", c.Approve).Methods(http.MethodPut)
	router.HandleFunc("/{userId:[0-9]+}/reject", c.Reject).Methods(http.MethodPut)
}

// AccountResponse never carries the password hash.
type AccountResponse struct {
	ID                   int64  `json:"user_id"`
	Username             string `json:"username"`
	Role                 string `json:"role"`
	MemberID             string `json:"member_id"`
	FullName             string `json:"full_name"`
	Email                string `json:"email"`
	Approved             bool   `json:"approved"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	Claimed              bool   `json:"claimed"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func toResponse(a account.Account) AccountResponse {
	return AccountResponse{
		ID:                   a.ID,
		Username:             a.Username,
		Role:                 a.Role,
		MemberID:             a.MemberID,
		FullName:             a.MemberFullName,
		Email:                a.Email,
		Approved:             a.Approved,
		NotificationsEnabled: a.NotificationsEnabled,
		Claimed:              a.HasSecret(),
		CreatedAt:            a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            a.UpdatedAt.Format(time.RFC3339),
	}
}

func (c *AccountAPIController) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpapi.Page(r, c.pageSize, c.maxPageSize)
	items, total, err := c.accountService.GetPaginated(r.Context(), &account.FindParams{
		Q:      strings.TrimSpace(r.URL.Query().Get("q")),
		Role:   strings.TrimSpace(r.URL.Query().Get("role")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	out := make([]AccountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": total})
}

func (c *AccountAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto account.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	created, err := c.accountService.Create(r.Context(), &dto)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (c *AccountAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := c.userID(w, r)
	if !ok {
		return
	}
	var dto account.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	updated, err := c.accountService.Update(r.Context(), id, &dto)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toResponse(updated))
}

func (c *AccountAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.userID(w, r)
	if !ok {
		return
	}
	if err := c.accountService.Delete(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *AccountAPIController) Approve(w http.ResponseWriter, r *http.Request) {
	c.setApproved(w, r, c.accountService.Approve)
}

func (c *AccountAPIController) Reject(w http.ResponseWriter, r *http.Request) {
	c.setApproved(w, r, c.accountService.Reject)
}

func (c *AccountAPIController) setApproved(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id int64) error) {
	id, ok := c.userID(w, r)
	if !ok {
		return
	}
	if err := apply(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type availableMember struct {
	MemberID       string `json:"member_id"`
	FullName       string `json:"full_name"`
	GraduationYear string `json:"graduation_year"`
}

func (c *AccountAPIController) AvailableMembers(w http.ResponseWriter, r *http.Request) {
	members, err := c.accountService.AvailableMembers(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	out := make([]availableMember, 0, len(members))
	for _, m := range members {
		out = append(out, availableMember{MemberID: m.MemberID, FullName: m.FullName, GraduationYear: m.GraduationYear})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *AccountAPIController) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || id <= 0 {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_USER_ID", "invalid user id")
		return 0, false
	}
	return id, true
}

func (c *AccountAPIController) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, account.ErrNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, account.ErrUsernameTaken):
		httpapi.WriteAPIError(w, r, http.StatusConflict, "USERNAME_TAKEN", "username already exists")
	case errors.Is(err, account.ErrMemberTaken):
		httpapi.WriteAPIError(w, r, http.StatusConflict, "MEMBER_TAKEN", "member already has an account")
	case errors.Is(err, account.ErrMemberMissing):
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "MEMBER_MISSING", "member id does not exist")
	case errors.Is(err, account.ErrNothingToUpdate):
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "NOTHING_TO_UPDATE", "no fields to update")
	case errors.Is(err, secrets.ErrEmptySecret):
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "password is required")
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("user account request failed")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
