package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/document/domain/entities/document"
	"github.com/sanjaithai/backoffice/modules/document/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

const (
	uploadField = "file"
	// formOverhead leaves room for the text fields next to the file part.
	formOverhead = 1 << 20
)

type DocumentController struct {
	documentService *services.DocumentService
	maxSize         int64
	auth            []mux.MiddlewareFunc
	basePath        string
}

// NewDocumentController mounts /api/documents where administrators send
// files to member accounts.
func NewDocumentController(app application.Application, maxSize int64, auth ...mux.MiddlewareFunc) application.Controller {
	if maxSize <= 0 {
		maxSize = document.MaxSize
	}
	return &DocumentController{
		documentService: app.Service(services.DocumentService{}).(*services.DocumentService),
		maxSize:         maxSize,
		auth:            auth,
		basePath:        "/api/documents",
	}
}

func (c *DocumentController) Key() string {
	return c.basePath
}

func (c *DocumentController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleAdmin))

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/upload", c.Upload).Methods(http.MethodPost)
	router.HandleFunc("/{id:[0-9]+}/download", c.Download).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

type DocumentResponse struct {
	ID          int64  `json:"document_id"`
	Title       string `json:"title"`
	FileName    string `json:"file_name"`
	MemberID    string `json:"member_id"`
	SenderName  string `json:"sender_name"`
	Description string `json:"description"`
	UploadDate  string `json:"upload_date"`
	Recipients  string `json:"recipients"`
}

func toDocumentResponse(d document.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		Title:       d.Title,
		FileName:    d.DownloadName(),
		MemberID:    d.MemberID,
		SenderName:  d.SenderName,
		Description: d.Description,
		UploadDate:  d.UploadedAt.Format(time.RFC3339),
		Recipients:  d.Recipients,
	}
}

func documentID(r *http.Request) int64 {
	// the route pattern guarantees digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeDocuments(w http.ResponseWriter, r *http.Request, docs []document.Document, err error) {
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *DocumentController) List(w http.ResponseWriter, r *http.Request) {
	docs, err := c.documentService.List(r.Context())
	writeDocuments(w, r, docs, err)
}

// parseUserIDs accepts repeated fields, comma separated lists and JSON arrays.
func parseUserIDs(values []string) ([]int64, error) {
	var out []int64
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "[") {
			var ids []int64
			if err := json.Unmarshal([]byte(v), &ids); err != nil {
				return nil, errors.Wrapf(err, "userIds %q", v)
			}
			out = append(out, ids...)
			continue
		}
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "userIds %q", part)
			}
			out = append(out, id)
		}
	}
	return out, nil
}

type uploadResponse struct {
	Message    string           `json:"message"`
	Document   DocumentResponse `json:"document"`
	MemberName string           `json:"memberName"`
	Recipients int64            `json:"recipients"`
}

func (c *DocumentController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxSize+formOverhead)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpapi.WriteAPIError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "uploaded file is too large")
			return
		}
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "FILE_REQUIRED", "no file uploaded")
		return
	}
	defer file.Close()

	if header.Size > c.maxSize {
		httpapi.WriteAPIError(w, r, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "uploaded file is too large")
		return
	}
	if !document.AllowedExtension(header.Filename) {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "only pdf, docx, xlsx, png and jpg files are accepted")
		return
	}
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "file content could not be read")
		return
	}
	if kind, _, _ := strings.Cut(detected.String(), ";"); !document.AcceptsContent(header.Filename, kind) {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "file content does not match its extension")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to rewind upload")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "UPLOAD_FAILED", "upload failed")
		return
	}

	userIDs, err := parseUserIDs(append(r.MultipartForm.Value["userIds"], r.MultipartForm.Value["userIds[]"]...))
	if err != nil {
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_USER_IDS", "userIds must be account ids")
		return
	}
	dto := document.UploadDTO{
		Title:       r.FormValue("title"),
		MemberID:    r.FormValue("memberId"),
		Description: r.FormValue("description"),
		UserIDs:     userIDs,
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", errs.First(), errs)
		return
	}

	up, err := c.documentService.Send(r.Context(), &dto, header.Filename, file)
	if err != nil {
		fail(w, r, err)
		return
	}
	doc := up.Document
	doc.SenderName = up.SenderName
	_ = httpapi.WriteJSON(w, http.StatusCreated, uploadResponse{
		Message:    "document sent",
		Document:   toDocumentResponse(doc),
		MemberName: up.SenderName,
		Recipients: up.Recipients,
	})
}

func serveDocument(w http.ResponseWriter, r *http.Request, d document.Document, f document.File) {
	defer f.Close()
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(d.DownloadName())))
	http.ServeContent(w, r, d.DownloadName(), f.ModTime(), f)
}

func (c *DocumentController) Download(w http.ResponseWriter, r *http.Request) {
	d, f, err := c.documentService.Open(r.Context(), documentID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	serveDocument(w, r, d, f)
}

func (c *DocumentController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.documentService.Delete(r.Context(), documentID(r)); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
	case errors.Is(err, document.ErrMemberNotFound):
		httpapi.WriteAPIError(w, r, http.StatusNotFound, "MEMBER_NOT_FOUND", "sender member not found")
	case errors.Is(err, document.ErrRecipientNotFound):
		httpapi.WriteAPIError(w, r, http.StatusBadRequest, "RECIPIENT_NOT_FOUND", "recipient account not found")
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("document request failed")
		httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
