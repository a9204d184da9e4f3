package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lodgeportal/internal/auth"
	"lodgeportal/internal/catalog"
	"lodgeportal/internal/entity"
	apphttp "lodgeportal/internal/http"
	"lodgeportal/internal/httpx"
	"lodgeportal/internal/platform/paths"
	"lodgeportal/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routing-test-secret"

const testCredentialsYAML = `
credentials:
  usernames:
    venerable:
      name: Jose da Silva
      email: jose@example.com
      password: altar
      role: mestre
    aluno:
      name: Pedro Aluno
      email: pedro@example.com
      password: coluna
      role: aprendiz
`

func newTestRouter(t *testing.T, loginRPS float64, loginBurst int) (http.Handler, string) {
	t.Helper()
	dataDir := t.TempDir()

	credsPath := filepath.Join(dataDir, "auth_config.yaml")
	require.NoError(t, os.WriteFile(credsPath, []byte(testCredentialsYAML), 0o600))
	creds, err := auth.LoadCredentials(credsPath)
	require.NoError(t, err)

	catalogPath := filepath.Join(dataDir, "catalogo.csv")
	require.NoError(t, catalog.Persist([]entity.Work{
		{ID: "1", Titulo: "Simbolos", Autor: "Carlos", Genero: "Simbolismo", GrauMinimo: "Aprendiz"},
		{ID: "2", Titulo: "Ritual", Autor: "Andre", Genero: "Ritualistica", GrauMinimo: "Mestre"},
	}, catalogPath))

	catalogCache := catalog.NewCache()
	catalogStore := catalog.NewStore(catalogPath, catalogCache)
	works := usecase.NewWorkUsecase(catalogStore)
	resolver := paths.Resolver{BaseDir: dataDir, AssetsDir: filepath.Join(dataDir, "assets")}

	router := newRouter(routerDeps{
		jwtSecret:      testSecret,
		maxUploadBytes: 1 << 20,
		loginLimiter:   httpx.NewRateLimitMiddleware(loginRPS, loginBurst),
		auth:           apphttp.NewAuthHandler(creds, testSecret, time.Hour),
		works:          apphttp.NewWorksHandler(works),
		files:          apphttp.NewFilesHandler(works, resolver),
		upload:         apphttp.NewUploadHandler(works, filepath.Join(dataDir, "conteudo"), filepath.Join(dataDir, "assets")),
		catalog:        apphttp.NewCatalogHandler(catalogPath, catalogCache),
	})
	return router, dataDir
}

func loginAs(t *testing.T, router http.Handler, username, password string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == httpx.SessionCookieName {
			return c
		}
	}
	t.Fatal("login response carried no session cookie")
	return nil
}

func TestRouting(t *testing.T) {
	router, _ := newTestRouter(t, 100, 100)

	t.Run("healthz is open", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("works requires a session", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/works", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login then list works", func(t *testing.T) {
		cookie := loginAs(t, router, "aluno", "coluna")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/works", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data struct {
				Works []entity.Work `json:"works"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data.Works, 1)
		assert.Equal(t, "Simbolos", body.Data.Works[0].Titulo)
	})

	t.Run("me returns the session identity", func(t *testing.T) {
		cookie := loginAs(t, router, "venerable", "altar")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"mestre"`)
	})

	t.Run("upload is mestre only", func(t *testing.T) {
		cookie := loginAs(t, router, "aluno", "coluna")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/works", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("export is mestre only", func(t *testing.T) {
		cookie := loginAs(t, router, "aluno", "coluna")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/catalog/export", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("export streams csv for mestre", func(t *testing.T) {
		cookie := loginAs(t, router, "venerable", "altar")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/catalog/export", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("reload is mestre only", func(t *testing.T) {
		cookie := loginAs(t, router, "aluno", "coluna")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/catalog/reload", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("method not allowed advertises the allowed set", func(t *testing.T) {
		cookie := loginAs(t, router, "venerable", "altar")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/works", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.NotEmpty(t, w.Header().Get("Allow"))
	})

	t.Run("tampered session cookie is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/works", nil)
		r.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "not-a-token"})
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRoutingCatalogReload(t *testing.T) {
	router, dataDir := newTestRouter(t, 100, 100)
	cookie := loginAs(t, router, "venerable", "altar")

	listCount := func() int {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/works", nil)
		r.AddCookie(cookie)
		router.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data struct {
				Works []entity.Work `json:"works"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return len(body.Data.Works)
	}

	require.Equal(t, 2, listCount())

	// Hand-edit behind the server's back.
	require.NoError(t, catalog.Persist([]entity.Work{
		{ID: "1", Titulo: "Simbolos", GrauMinimo: "Aprendiz"},
		{ID: "2", Titulo: "Ritual", GrauMinimo: "Mestre"},
		{ID: "3", Titulo: "Atas", GrauMinimo: "Mestre"},
	}, filepath.Join(dataDir, "catalogo.csv")))
	require.Equal(t, 2, listCount(), "listing stays on the cached table")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/catalog/reload", nil)
	r.AddCookie(cookie)
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 3, listCount())
}

func TestRoutingLoginRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, 0.1, 2)

	attempt := func() int {
		body, _ := json.Marshal(map[string]string{"username": "aluno", "password": "wrong"})
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, attempt())
	assert.Equal(t, http.StatusUnauthorized, attempt())
	assert.Equal(t, http.StatusTooManyRequests, attempt())
}
