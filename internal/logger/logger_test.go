package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequests_Wrap(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := NewRequests(log).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Debug().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/dist/app-main.bundle.js", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Contains(t, buf.String(), `"path":"/app/dist/app-main.bundle.js"`)
	require.Contains(t, buf.String(), `"status":418`)
	require.Contains(t, buf.String(), `"addr":"192.0.2.1"`)
	require.Contains(t, buf.String(), `"message":"inside"`)
}

func TestSetup(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, Setup(false).GetLevel())
	require.Equal(t, zerolog.DebugLevel, Setup(true).GetLevel())
}
