package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/math-quiz/internal/config"
)

type fakeAPI struct{}

func (fakeAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/bank", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bank"))
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMuxRoutes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "fig.png"), []byte("img"), 0o644))
	cfg := &config.App{HTTPAddr: ":0", Questions: config.Questions{ImageRoot: root}}
	mux := NewMux(cfg, zerolog.Nop(), nil, fakeAPI{}, nil)

	rec := get(t, mux, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(t, mux, "/v1/ping")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, mux, "/v1/bank")
	assert.Equal(t, "bank", rec.Body.String())

	rec = get(t, mux, "/v1/images/fig.png")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "img", string(body))

	rec = get(t, mux, "/v1/images/absent.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, mux, "/ws/sessions/abc")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = get(t, mux, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
