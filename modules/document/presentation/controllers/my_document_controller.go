package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sanjaithai/backoffice/modules/document/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/httpapi"
	"github.com/sanjaithai/backoffice/pkg/middleware"
)

type MyDocumentController struct {
	documentService *services.DocumentService
	auth            []mux.MiddlewareFunc
	basePath        string
}

// NewMyDocumentController mounts /api/my-documents, the documents sent to
// the caller's account.
func NewMyDocumentController(app application.Application, auth ...mux.MiddlewareFunc) application.Controller {
	return &MyDocumentController{
		documentService: app.Service(services.DocumentService{}).(*services.DocumentService),
		auth:            auth,
		basePath:        "/api/my-documents",
	}
}

func (c *MyDocumentController) Key() string {
	return c.basePath
}

func (c *MyDocumentController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.auth...)
	router.Use(middleware.RequireRole(composables.RoleUser, composables.RoleAdmin))

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.Download).Methods(http.MethodGet)
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	identity, ok := composables.UseIdentity(r.Context())
	if !ok || identity.UserID == 0 {
		httpapi.WriteAPIError(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "no token provided")
		return 0, false
	}
	return identity.UserID, true
}

func (c *MyDocumentController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	docs, err := c.documentService.ListForUser(r.Context(), userID)
	writeDocuments(w, r, docs, err)
}

func (c *MyDocumentController) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	d, f, err := c.documentService.OpenForUser(r.Context(), documentID(r), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	serveDocument(w, r, d, f)
}
