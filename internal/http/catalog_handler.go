package http

import (
	"net/http"
	"os"

	"lodgeportal/internal/httpx"
)

// CatalogCache is the portion of the catalog cache the admin endpoints
// need.
type CatalogCache interface {
	Invalidate(path string)
}

// CatalogHandler covers the Mestre-only maintenance surface of the
// catalog file: downloading the raw CSV and dropping the memoized load
// after an out-of-band edit.
type CatalogHandler struct {
	catalogPath string
	cache       CatalogCache
}

func NewCatalogHandler(catalogPath string, cache CatalogCache) *CatalogHandler {
	return &CatalogHandler{catalogPath: catalogPath, cache: cache}
}

// Export hands over the raw catalog CSV for offline inspection or backup.
func (h *CatalogHandler) Export(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.catalogPath); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Catalog file not found", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="catalogo.csv"`)
	http.ServeFile(w, r, h.catalogPath)
}

// Reload drops the cached catalog so the next read hits the file. This
// is the recovery path after hand-editing catalogo.csv: without it a
// stale (or previously malformed) table would be served until restart.
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate(h.catalogPath)
	httpx.JSONSuccessWithRequest(r, w, nil,
		map[string]interface{}{"message": "catalog cache cleared"})
}
