package http

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"

	"lodgeportal/internal/httpx"
	"lodgeportal/internal/platform/paths"
	"lodgeportal/internal/usecase"
)

// FilesHandler serves the per-work content download and cover image.
type FilesHandler struct {
	works    *usecase.WorkUsecase
	resolver paths.Resolver
}

func NewFilesHandler(works *usecase.WorkUsecase, resolver paths.Resolver) *FilesHandler {
	return &FilesHandler{works: works, resolver: resolver}
}

// Route dispatches /works/{id}/download and /works/{id}/cover.
// crude path param extraction with net/http's ServeMux
func (h *FilesHandler) Route(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/works/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id, action := parts[0], parts[1]

	switch action {
	case "download":
		h.Download(w, r, id)
	case "cover":
		h.Cover(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// Download streams the work's content file as an attachment. An
// unresolved path disables the download with a 404; it is never fatal.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request, id string) {
	work, err := h.works.GetVisible(r.Context(), httpx.RoleFrom(r), id)
	if err != nil {
		respondWorkError(w, r, err)
		return
	}

	resolved, err := h.resolver.Resolve(work.Arquivo)
	if err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "FILE_UNAVAILABLE", "Content file is unavailable", nil)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(resolved)+`"`)
	http.ServeFile(w, r, resolved)
}

// Cover serves the work's cover image, or a flat placeholder when the
// stored path does not resolve or does not decode as an image.
func (h *FilesHandler) Cover(w http.ResponseWriter, r *http.Request, id string) {
	work, err := h.works.GetVisible(r.Context(), httpx.RoleFrom(r), id)
	if err != nil {
		respondWorkError(w, r, err)
		return
	}

	resolved, err := h.resolver.Resolve(work.Capa)
	if err != nil || !isValidImageFile(resolved) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(placeholderPNG())
		return
	}
	http.ServeFile(w, r, resolved)
}

func respondWorkError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Work not found", nil)
	case errors.Is(err, usecase.ErrCatalogUnreadable):
		httpx.JSONErrorWithRequest(r, w, http.StatusNotFound, "NOT_FOUND", "Work not found", nil)
	default:
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load catalog", nil)
	}
}

func isValidImageFile(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()
	_, _, err = image.DecodeConfig(f)
	return err == nil
}

const (
	placeholderWidth  = 600
	placeholderHeight = 340
)

var (
	placeholderOnce sync.Once
	placeholderData []byte
)

// placeholderPNG renders the flat light-gray rectangle shown in place of
// broken covers. Encoded once, reused for every response.
func placeholderPNG() []byte {
	placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
		gray := color.RGBA{R: 240, G: 240, B: 240, A: 255}
		for y := 0; y < placeholderHeight; y++ {
			for x := 0; x < placeholderWidth; x++ {
				img.Set(x, y, gray)
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err == nil {
			placeholderData = buf.Bytes()
		}
	})
	return placeholderData
}
