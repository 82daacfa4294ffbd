package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/modules/member/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

type MemberAPIController struct {
	memberService *services.MemberService
	auth          []mux.MiddlewareFunc
	basePath      string
	pageSize      int
	maxPageSize   int
}

// NewMemberAPIController mounts /api/members behind the given authentication middleware.
func NewMemberAPIController(app application.Application, pageSize, maxPageSize int, auth ...mux.MiddlewareFunc) application.Controller {
	return &MemberAPIController{
		memberService: app.Service(services.MemberService{}).(*services.MemberService),
		auth:          auth,
		basePath:      "/api/members",
		pageSize:      pageSize,
		maxPageSize:   maxPageSize,
	}
}

func (c *MemberAPIController) Key() string {
	return c.basePath
}

func (c *MemberAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/me", c.Me).Methods(http.MethodGet)
	router.HandleFunc("/me", c.UpdateMe).Methods(http.MethodPut)
	router.HandleFunc("/{memberId}", c.Get).Methods(http.MethodGet)

	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole(composables.RoleAdmin))
	admin.HandleFunc("", c.Create).Methods(http.MethodPost)
	admin.HandleFunc("/{memberId}", c.Update).Methods(http.MethodPut)
	admin.HandleFunc("/{memberId}", c.Delete).Methods(http.MethodDelete)
}

type MemberResponse map[string]any

func ToResponse(m member.Member) MemberResponse {
	out := MemberResponse{string(member.FieldMemberID): m.MemberID}
	for _, f := range member.ProfileFields {
		out[string(f)] = m.Get(f)
	}
	out["created_at"] = m.CreatedAt.Format(time.RFC3339)
	out["updated_at"] = m.UpdatedAt.Format(time.RFC3339)
	return out
}

type listResponse struct {
	Items []MemberResponse `json:"items"`
	Total int64            `json:"total"`
}

func (c *MemberAPIController) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpapi.Page(r, c.pageSize, c.maxPageSize)
	q := r.URL.Query()
	items, total, err := c.memberService.GetPaginated(r.Context(), &member.FindParams{
		Q:          strings.TrimSpace(q.Get("q")),
		District:   strings.TrimSpace(q.Get("district")),
		Generation: strings.TrimSpace(q.Get("generation")),
		Type:       strings.TrimSpace(q.Get("memberType")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	resp := listResponse{Items: make([]MemberResponse, 0, len(items)), Total: total}
	for _, m := range items {
		resp.Items = append(resp.Items, ToResponse(m))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, resp)
}

// Me returns the member record linked to the caller's account.
func (c *MemberAPIController) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok || identity.MemberID == "" {
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "MEMBER_NOT_LINKED", "account is not linked to a member")
		return
	}
	c.write(w, r, identity.MemberID)
}

// UpdateMe lets the caller edit the personal fields of their own record.
func (c *MemberAPIController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok || identity.MemberID == "" {
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "MEMBER_NOT_LINKED", "account is not linked to a member")
		return
	}
	var dto member.SelfUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	updated, err := c.memberService.UpdateSelf(r.Context(), identity.MemberID, &dto)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, ToResponse(updated))
}

func (c *MemberAPIController) Get(w http.ResponseWriter, r *http.Request) {
	c.write(w, r, mux.Vars(r)["memberId"])
}

func (c *MemberAPIController) write(w http.ResponseWriter, r *http.Request, memberID string) {
	m, err := c.memberService.GetByID(r.Context(), memberID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, ToResponse(m))
}

func (c *MemberAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto member.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	created, err := c.memberService.Create(r.Context(), &dto)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, ToResponse(created))
}

func (c *MemberAPIController) Update(w http.ResponseWriter, r *http.Request) {
	var dto member.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	updated, err := c.memberService.Update(r.Context(), mux.Vars(r)["memberId"], &dto)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, ToResponse(updated))
}

func (c *MemberAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.memberService.Delete(r.Context(), mux.Vars(r)["memberId"]); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *MemberAPIController) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, member.ErrNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "MEMBER_NOT_FOUND", "member not found")
	case errors.Is(err, member.ErrIDTaken):
		httpapi.WriteAPIError(w, r, http.StatusConflict, "MEMBER_ID_TAKEN", "member id already exists")
	case errors.Is(err, member.ErrHasAccount):
		httpapi.WriteAPIError(w, r, http.StatusConflict, "MEMBER_HAS_ACCOUNT", "member is linked to a user account")
	case errors.Is(err, member.ErrNoChanges):
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "NOTHING_TO_UPDATE", "no fields to update")
	case errors.Is(err, member.ErrInvalidFormat):
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("member request failed")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
