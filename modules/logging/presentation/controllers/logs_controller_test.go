package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/logging/services"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
)

type memoryLogs struct {
	rows       []*transferlog.TransferLog
	lastParams *transferlog.FindParams
}

func (m *memoryLogs) List(ctx context.Context, params *transferlog.FindParams) ([]*transferlog.TransferLog, error) {
	m.lastParams = params
	var out []*transferlog.TransferLog
	for _, row := range m.rows {
		if row.Kind == params.Kind {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryLogs) Count(ctx context.Context, params *transferlog.FindParams) (int64, error) {
	out, _ := m.List(ctx, params)
	return int64(len(out)), nil
}

func (m *memoryLogs) Create(ctx context.Context, log *transferlog.TransferLog) error {
	log.ID = int64(len(m.rows) + 1)
	log.CreatedAt = time.Now()
	m.rows = append(m.rows, log)
	return nil
}

func newRouter(role string) (*mux.Router, *memoryLogs) {
	repo := &memoryLogs{rows: []*transferlog.TransferLog{
		{ID: 1, Kind: transferlog.KindImport, Mode: "members", Filename: "a.xlsx", Count: 3, PerformedBy: "admin"},
		{ID: 2, Kind: transferlog.KindExport, Mode: "users", Filename: "b.xlsx", Count: 5, PerformedBy: "admin"},
	}}
	app := application.New(&application.ApplicationOptions{})
	app.RegisterServices(services.NewLogsService(repo))

	identity := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithIdentity(r.Context(), composables.Identity{Username: "boss", Role: role})
			next.ServeHTTP(w, r.WithContext(composables.WithRequestID(ctx, "req-test")))
		})
	}
	r := mux.NewRouter()
	NewLogsController(app, 25, 100, identity).Register(r)
	return r, repo
}

func TestLogsController_ListsByKind(t *testing.T) {
	r, repo := newRouter(composables.RoleAdmin)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/import-logs?from=2024-01-01&to=2024-01-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []TransferLogResponse `json:"items"`
		Total int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.Total)
	require.Equal(t, "members", body.Items[0].Type)
	require.NotNil(t, repo.lastParams.From)
	require.Equal(t, 31, repo.lastParams.To.Day())
	require.Equal(t, 23, repo.lastParams.To.Hour())
}

func TestLogsController_LogExport(t *testing.T) {
	r, repo := newRouter(composables.RoleAdmin)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/data/log-export", strings.NewReader(`{"type":"members","filename":"m.xlsx","count":9}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, repo.rows, 3)
	require.Equal(t, "boss", repo.rows[2].PerformedBy)
	require.Equal(t, transferlog.KindExport, repo.rows[2].Kind)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/data/log-export", strings.NewReader(`{"type":"pets","filename":"m.xlsx"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogsController_RequiresAdmin(t *testing.T) {
	r, _ := newRouter(composables.RoleUser)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/export-logs", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}
