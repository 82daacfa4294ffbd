package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanjaithai/backoffice/internal/memstore"
	"github.com/sanjaithai/backoffice/modules/account/domain/entities/account"
	"github.com/sanjaithai/backoffice/modules/account/services"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/application"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/secrets"
)

func newSelfRouter(t *testing.T) (*mux.Router, *memstore.Store, secrets.Hasher) {
	t.Helper()
	store := memstore.New()
	store.PutMember(member.Member{MemberID: "M1", FullName: "Somchai"})
	hasher := secrets.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("old-secret")
	require.NoError(t, err)
	a := store.PutAccount(account.Account{
		Username: "somchai", Role: account.RoleUser, MemberID: "M1",
		PasswordHash: hash, Approved: true, NotificationsEnabled: true,
	})

	app := application.New(&application.ApplicationOptions{})
	app.RegisterServices(services.NewAccountService(store.AccountRepository(), store.MemberRepository(), hasher, store))
	who := as(composables.Identity{UserID: a.ID, Username: "somchai", Role: composables.RoleUser, MemberID: "M1"})
	r := mux.NewRouter()
	NewMeController(app, who).Register(r)
	NewSettingsController(app, who).Register(r)
	return r, store, hasher
}

func TestMeController_ReturnsOwnProfile(t *testing.T) {
	r, _, _ := newSelfRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/me", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"username":"somchai"`)
	require.Contains(t, rec.Body.String(), `"full_name":"Somchai"`)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestSettingsController_Password(t *testing.T) {
	r, store, hasher := newSelfRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/password",
		strings.NewReader(`{"currentPassword":"wrong","newPassword":"new-secret"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "WRONG_PASSWORD")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/password",
		strings.NewReader(`{"currentPassword":"old-secret","newPassword":"abc"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_FAILED")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/password",
		strings.NewReader(`{"currentPassword":"old-secret","newPassword":"new-secret"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, hasher.Compare(store.Accounts()[0].PasswordHash, "new-secret"))
}

func TestSettingsController_EmailAndNotify(t *testing.T) {
	r, store, _ := newSelfRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/email", strings.NewReader(`{"newEmail":"not-an-email"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/email", strings.NewReader(`{"newEmail":" somchai@example.com "}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "somchai@example.com", store.Accounts()[0].Email)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/notify", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings/notify", strings.NewReader(`{"enabled":false}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.False(t, store.Accounts()[0].NotificationsEnabled)
}
