package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockroom-app/stockroom/internal/auth"
	"github.com/stockroom-app/stockroom/internal/catalog"
	"github.com/stockroom-app/stockroom/internal/upload"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	TokenManager   *auth.TokenManager
	CatalogHandler *catalog.Handler
	UploadStore    *upload.Store
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	requireAuth := auth.RequireBearer(params.TokenManager, params.Logger)
	r.Mount("/api/products", params.CatalogHandler.Routes(requireAuth))

	// Stored images are public; their URLs are embedded in listing responses.
	fileServer := http.StripPrefix(upload.URLPrefix, http.FileServer(http.Dir(params.UploadStore.Dir())))
	r.Get(upload.URLPrefix+"*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	return r
}
