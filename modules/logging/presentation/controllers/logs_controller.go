package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/logging/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/constants"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
	"github.com/sanjaithai/backoffice/pkg/serrors"
)

type LogsController struct {
	logsService *services.LogsService
	auth        []mux.MiddlewareFunc
	basePath    string
	pageSize    int
	maxPageSize int
}

func NewLogsController(app application.Application, pageSize, maxPageSize int, auth ...mux.MiddlewareFunc) application.Controller {
	return &LogsController{
		logsService: app.Service(services.LogsService{}).(*services.LogsService),
		auth:        auth,
		basePath:    "/api/data",
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}
}

func (c *LogsController) Key() string {
	return c.basePath + "/logs"
}

func (c *LogsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleAdmin))

	router.HandleFunc("/import-logs", c.listKind(transferlog.KindImport)).Methods(http.MethodGet)
	router.HandleFunc("/export-logs", c.listKind(transferlog.KindExport)).Methods(http.MethodGet)
	router.HandleFunc("/log-export", c.LogExport).Methods(http.MethodPost)
}

type TransferLogResponse struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	Count       int    `json:"count"`
	PerformedBy string `json:"performed_by"`
	CreatedAt   string `json:"created_at"`
}

func toResponse(log *transferlog.TransferLog) TransferLogResponse {
	return TransferLogResponse{
		ID:          log.ID,
		Kind:        string(log.Kind),
		Type:        log.Mode,
		Filename:    log.Filename,
		Count:       log.Count,
		PerformedBy: log.PerformedBy,
		CreatedAt:   log.CreatedAt.Format(time.RFC3339),
	}
}

func (c *LogsController) listKind(kind transferlog.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := httpapi.Page(r, c.pageSize, c.maxPageSize)
		params := &transferlog.FindParams{
			Kind:        kind,
			PerformedBy: strings.TrimSpace(r.URL.Query().Get("performed_by")),
			Limit:       limit,
			Offset:      offset,
		}
		if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
			if parsed, err := time.Parse(time.DateOnly, v); err == nil {
				params.From = &parsed
			}
		}
		if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
			if parsed, err := time.Parse(time.DateOnly, v); err == nil {
				end := parsed.Add(24*time.Hour - time.Nanosecond)
				params.To = &end
			}
		}

		logs, total, err := c.logsService.ListTransferLogs(r.Context(), params)
		if err != nil {
			composables.UseLogger(r.Context()).WithError(err).Error("failed to list transfer logs")
			httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "LOGS_UNAVAILABLE", "could not load transfer history")
			return
		}
		items := make([]TransferLogResponse, 0, len(logs))
		for _, log := range logs {
			items = append(items, toResponse(log))
		}
		_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

type logExportDTO struct {
	Type     string `json:"type" validate:"required,oneof=members users both"`
	Filename string `json:"filename" validate:"required,max=255"`
	Count    int    `json:"count" validate:"gte=0"`
}

// LogExport records an export the browser produced on its own.
func (c *LogsController) LogExport(w http.ResponseWriter, r *http.Request) {
	var dto logExportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if err := constants.Validate.Struct(&dto); err != nil {
		errs := serrors.ProcessValidatorErrors(err)
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}
	entry := &transferlog.TransferLog{
		Kind:        transferlog.KindExport,
		Mode:        dto.Type,
		Filename:    dto.Filename,
		Count:       dto.Count,
		PerformedBy: composables.UseActor(r.Context()),
	}
	if err := c.logsService.CreateTransferLog(r.Context(), entry); err != nil {
		if errors.Is(err, transferlog.ErrInvalidKind) {
			httpapi.WriteAPIError(w, r, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
		composables.UseLogger(r.Context()).WithError(err).Error("failed to record export")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "LOGS_UNAVAILABLE", "could not record export")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toResponse(entry))
}
