package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lodgeportal/internal/auth"
	"lodgeportal/internal/catalog"
	apphttp "lodgeportal/internal/http"
	"lodgeportal/internal/httpx"
	"lodgeportal/internal/platform/paths"
	"lodgeportal/internal/usecase"

	"github.com/joho/godotenv"
)

const loginBodyLimit = 4 << 10

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	dataDir := getEnv("DATA_DIR", ".")
	authConfigPath := getEnv("AUTH_CONFIG", filepath.Join(dataDir, "auth_config.yaml"))
	jwtSecret := mustGetEnv("JWT_SECRET")
	sessionTTL := getDurationEnv("SESSION_TTL", 12*time.Hour)
	loginRPS := getFloatEnv("LOGIN_RPS", 1)
	loginBurst := getIntEnv("LOGIN_BURST", 5)
	maxUploadBytes := getInt64Env("MAX_UPLOAD_BYTES", 64<<20)

	// A missing credentials file has no safe fallback: nobody could log
	// in, or worse, anybody could. Stop hard.
	creds, err := auth.LoadCredentials(authConfigPath)
	if err != nil {
		log.Fatalf("cannot load credentials config: %v", err)
	}

	mustEnsureDirs(dataDir)

	catalogPath := filepath.Join(dataDir, "catalogo.csv")
	catalogCache := catalog.NewCache()
	catalogStore := catalog.NewStore(catalogPath, catalogCache)
	works := usecase.NewWorkUsecase(catalogStore)
	resolver := paths.Resolver{
		BaseDir:   dataDir,
		AssetsDir: filepath.Join(dataDir, "assets"),
	}

	router := newRouter(routerDeps{
		jwtSecret:      jwtSecret,
		maxUploadBytes: maxUploadBytes,
		loginLimiter:   httpx.NewRateLimitMiddleware(loginRPS, loginBurst),
		auth:           apphttp.NewAuthHandler(creds, jwtSecret, sessionTTL),
		works:          apphttp.NewWorksHandler(works),
		files:          apphttp.NewFilesHandler(works, resolver),
		upload:         apphttp.NewUploadHandler(works, filepath.Join(dataDir, "conteudo"), filepath.Join(dataDir, "assets")),
		catalog:        apphttp.NewCatalogHandler(catalogPath, catalogCache),
	})

	handler := httpx.Chain(router,
		httpx.RecoveryMiddleware,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.SecurityHeadersMiddleware,
	)

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s data_dir=%s", serverAddress, dataDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

type routerDeps struct {
	jwtSecret      string
	maxUploadBytes int64
	loginLimiter   *httpx.RateLimitMiddleware

	auth    *apphttp.AuthHandler
	works   *apphttp.WorksHandler
	files   *apphttp.FilesHandler
	upload  *apphttp.UploadHandler
	catalog *apphttp.CatalogHandler
}

func newRouter(d routerDeps) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	login := httpx.Chain(http.HandlerFunc(d.auth.Login),
		d.loginLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(loginBodyLimit),
	)
	router.Handle("/auth/login", apphttp.MethodMux(map[string]http.Handler{
		http.MethodPost: login,
	}))
	router.Handle("/auth/logout", apphttp.MethodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(d.auth.Logout),
	}))

	sessionOnly := httpx.AuthMiddleware(d.jwtSecret)

	router.Handle("/me", sessionOnly(apphttp.MethodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(d.auth.Me),
	})))

	createWork := httpx.Chain(http.HandlerFunc(d.upload.Create),
		httpx.RequireRole("mestre"),
		httpx.RequestSizeLimitMiddleware(d.maxUploadBytes),
	)
	router.Handle("/works", sessionOnly(apphttp.MethodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(d.works.List),
		http.MethodPost: createWork,
	})))
	router.Handle("/works/", sessionOnly(http.HandlerFunc(d.files.Route)))

	export := httpx.Chain(
		apphttp.MethodMux(map[string]http.Handler{
			http.MethodGet: http.HandlerFunc(d.catalog.Export),
		}),
		httpx.RequireRole("mestre"),
	)
	router.Handle("/catalog/export", sessionOnly(export))

	reload := httpx.Chain(
		apphttp.MethodMux(map[string]http.Handler{
			http.MethodPost: http.HandlerFunc(d.catalog.Reload),
		}),
		httpx.RequireRole("mestre"),
	)
	router.Handle("/catalog/reload", sessionOnly(reload))

	return router
}

// mustEnsureDirs creates the content tree the portal serves from: one
// directory per degree plus the shared cover assets.
func mustEnsureDirs(dataDir string) {
	dirs := []string{
		filepath.Join(dataDir, "assets"),
		filepath.Join(dataDir, "conteudo", "aprendiz"),
		filepath.Join(dataDir, "conteudo", "companheiro"),
		filepath.Join(dataDir, "conteudo", "mestre"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("cannot create data directory %s: %v", dir, err)
		}
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return f
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

func getInt64Env(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}
