package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/modules/transfer/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

const (
	uploadField = "excelFile"
	xlsxMime    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type UploadOptions struct {
	Dir     string
	MaxSize int64
}

type DataController struct {
	importService *services.ImportService
	exportService *services.ExportService
	uploads       UploadOptions
	auth          []mux.MiddlewareFunc
	basePath      string
}

func NewDataController(app application.Application, uploads UploadOptions, auth ...mux.MiddlewareFunc) application.Controller {
	return &DataController{
		importService: app.Service(services.ImportService{}).(*services.ImportService),
		exportService: app.Service(services.ExportService{}).(*services.ExportService),
		uploads:       uploads,
		auth:          auth,
		basePath:      "/api/data",
	}
}

func (c *DataController) Key() string {
	return c.basePath
}

func (c *DataController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleAdmin))

	router.HandleFunc("/import", c.Import).Methods(http.MethodPost)
	router.HandleFunc("/export", c.Export).Methods(http.MethodGet)
	router.HandleFunc("/filters", c.Filters).Methods(http.MethodGet)
	router.HandleFunc("/summary", c.Summary).Methods(http.MethodGet)
}

type ImportResponse struct {
	Message string                `json:"message"`
	Count   int                   `json:"count"`
	Members int                   `json:"members"`
	Users   int                   `json:"users"`
	Skipped int                   `json:"skipped"`
	Rows    []transfer.RowOutcome `json:"rows,omitempty"`
}

func (c *DataController) Import(w http.ResponseWriter, r *http.Request) {
	mode, err := transfer.ParseMode(r.URL.Query().Get("type"))
	if err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_TYPE", err.Error())
		return
	}
	derive, _ := strconv.ParseBool(r.URL.Query().Get("derive_secrets"))
	verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose"))

	r.Body = http.MaxBytesReader(w, r.Body, c.uploads.MaxSize)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpapi.WriteAPIError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "uploaded file is too large")
			return
		}
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "FILE_REQUIRED", "no spreadsheet uploaded")
		return
	}
	defer file.Close()

	path, err := c.save(file, header)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to store upload")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "IMPORT_FAILED", "import failed")
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			composables.UseLogger(r.Context()).WithError(err).Warn("failed to remove upload")
		}
	}()

	result, err := c.importService.Import(r.Context(), transfer.ImportRequest{
		Path:          path,
		Filename:      filepath.Base(header.Filename),
		Mode:          mode,
		PerformedBy:   composables.UseActor(r.Context()),
		DeriveSecrets: derive,
	})
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrUnreadableFile):
			httpapi.WriteAPIError(w, r, http.StatusBadRequest, "UNREADABLE_FILE", "file is not a readable .xlsx or .csv spreadsheet")
		case errors.Is(err, transfer.ErrSheetNotFound):
			httpapi.WriteAPIError(w, r, http.StatusBadRequest, "SHEET_NOT_FOUND", err.Error())
		default:
			httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "IMPORT_FAILED", "import failed")
		}
		return
	}

	resp := ImportResponse{
		Message: fmt.Sprintf("imported %s", mode),
		Count:   result.Total(),
		Members: result.Members,
		Users:   result.Accounts,
		Skipped: result.Skipped(),
	}
	if verbose {
		resp.Rows = result.Rows
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, resp)
}

// save copies the upload under a random name so concurrent imports never collide.
func (c *DataController) save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(c.uploads.Dir, 0o750); err != nil {
		return "", errors.Wrap(err, "create uploads dir")
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(c.uploads.Dir, uuid.NewString()+ext)
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", errors.Wrap(err, "create upload")
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", errors.Wrap(err, "write upload")
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", errors.Wrap(err, "close upload")
	}
	return path, nil
}

func filterFromQuery(r *http.Request) transfer.Filter {
	q := r.URL.Query()
	return transfer.Filter{
		District:   strings.TrimSpace(q.Get("district")),
		Generation: strings.TrimSpace(q.Get("generation")),
		MemberType: strings.TrimSpace(q.Get("memberType")),
	}
}

func (c *DataController) Export(w http.ResponseWriter, r *http.Request) {
	mode, err := transfer.ParseMode(r.URL.Query().Get("type"))
	if err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_TYPE", err.Error())
		return
	}
	export, err := c.exportService.Export(r.Context(), transfer.ExportRequest{
		Mode:        mode,
		Filter:      filterFromQuery(r),
		PerformedBy: composables.UseActor(r.Context()),
	})
	if err != nil {
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "EXPORT_FAILED", "export failed")
		return
	}
	w.Header().Set("Content-Type", xlsxMime)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Content)
}

func (c *DataController) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := c.exportService.FilterOptions(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load filter options")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "FILTERS_UNAVAILABLE", "could not load filter options")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, opts)
}

func (c *DataController) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.exportService.Summary(r.Context(), filterFromQuery(r))
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to load summary")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "SUMMARY_UNAVAILABLE", "could not load summary")
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, summary)
}
