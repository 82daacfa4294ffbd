package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/metrics"
)

func TestDefault_UnknownRoutesAnswerJSON(t *testing.T) {
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "app.log"))
	logger := logrus.New()
	app := application.New(&application.ApplicationOptions{Logger: logger})
	app.RegisterControllers(metrics.NewHealthController(nil))

	srv, err := Default(&DefaultOptions{
		Logger:        logger,
		Configuration: &configuration.Configuration{CORSOrigins: []string{"http://localhost:3000"}},
		Application:   app,
	})
	require.NoError(t, err)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","database":"not configured"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}
