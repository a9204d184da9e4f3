package http

import (
	"errors"
	"net/http"

	"lodgeportal/internal/entity"
	"lodgeportal/internal/httpx"
	"lodgeportal/internal/usecase"
)

type WorksHandler struct {
	works *usecase.WorkUsecase
}

func NewWorksHandler(works *usecase.WorkUsecase) *WorksHandler {
	return &WorksHandler{works: works}
}

type worksListResponse struct {
	Works   []entity.Work `json:"works"`
	Generos []string      `json:"generos"`
}

// List returns the works visible to the session's degree. Query
// parameters: q (search), genero (repeatable), sort (titulo|autor|recentes).
// A malformed catalog degrades to an empty listing with a warning rather
// than an error; the privileged fix is editing the file, not retrying.
func (h *WorksHandler) List(w http.ResponseWriter, r *http.Request) {
	params := usecase.ListParams{
		Role:    httpx.RoleFrom(r),
		Q:       r.URL.Query().Get("q"),
		Generos: r.URL.Query()["genero"],
		Sort:    r.URL.Query().Get("sort"),
	}

	works, generos, err := h.works.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, usecase.ErrCatalogUnreadable) {
			httpx.JSONSuccessWithRequest(r, w, worksListResponse{Works: []entity.Work{}, Generos: []string{}},
				map[string]interface{}{"warning": "catalog could not be read; showing an empty catalog"})
			return
		}
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load catalog", nil)
		return
	}

	httpx.JSONSuccessWithRequest(r, w, worksListResponse{Works: works, Generos: generos},
		map[string]interface{}{"total": len(works)})
}
