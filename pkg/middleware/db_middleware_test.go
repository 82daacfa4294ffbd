package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/pkg/constants"
)

func TestProvide_StoresValueInRequestContext(t *testing.T) {
	var got any
	h := Provide(constants.AppKey, "app-value")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Context().Value(constants.AppKey)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "app-value", got)
}
