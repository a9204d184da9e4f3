package http

import (
	"errors"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"lodgeportal/internal/access"
	"lodgeportal/internal/entity"
	"lodgeportal/internal/httpx"
	"lodgeportal/internal/usecase"
)

const multipartMemoryLimit = 32 << 20

// UploadHandler accepts new works from Mestre users: a multipart form
// with the catalog fields, the content file and an optional cover.
type UploadHandler struct {
	works       *usecase.WorkUsecase
	conteudoDir string
	assetsDir   string
}

func NewUploadHandler(works *usecase.WorkUsecase, conteudoDir, assetsDir string) *UploadHandler {
	return &UploadHandler{works: works, conteudoDir: conteudoDir, assetsDir: assetsDir}
}

type uploadReq struct {
	Titulo     string `validate:"required,max=200"`
	Autor      string `validate:"required,max=200"`
	Genero     string `validate:"required,max=100"`
	Descricao  string `validate:"required,max=2000"`
	GrauMinimo string `validate:"required,grau"`
}

// Create validates the form completely before touching disk, so a
// rejected upload leaves no partial state. The content file goes under
// conteudo/<grau>/, the cover under assets/; the cover is kept only if
// it decodes as an image, otherwise the response carries a warning and
// the card will show a placeholder.
func (h *UploadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "BAD_REQUEST", "Invalid multipart form", nil)
		return
	}

	req := uploadReq{
		Titulo:     strings.TrimSpace(r.FormValue("titulo")),
		Autor:      strings.TrimSpace(r.FormValue("autor")),
		Genero:     strings.TrimSpace(r.FormValue("genero")),
		Descricao:  strings.TrimSpace(r.FormValue("descricao")),
		GrauMinimo: strings.TrimSpace(r.FormValue("grau_minimo")),
	}
	details := validationDetails(ValidateStruct(req))

	arquivo, arquivoHeader, err := r.FormFile("arquivo")
	if err != nil {
		details = append(details, httpx.ErrorDetail{Field: "arquivo", Message: "arquivo is required"})
	} else {
		defer arquivo.Close()
	}

	if len(details) > 0 {
		httpx.JSONErrorWithRequest(r, w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	grade := access.ParseGrade(req.GrauMinimo)
	grauDir := strings.ToLower(grade.String())

	contentName := safeFilename(arquivoHeader.Filename)
	destPath := filepath.Join(h.conteudoDir, grauDir, contentName)
	if err := saveUploadedFile(arquivo, destPath); err != nil {
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not store content file", nil)
		return
	}

	var meta map[string]interface{}
	capaField := ""
	capaPath := ""
	if capa, capaHeader, err := r.FormFile("capa"); err == nil {
		defer capa.Close()
		capaName := safeFilename(capaHeader.Filename)
		capaPath = filepath.Join(h.assetsDir, capaName)
		switch err := saveCover(capa, capaPath); {
		case errors.Is(err, errNotAnImage):
			meta = map[string]interface{}{"warning": "cover is not a valid image; a placeholder will be shown"}
		case err != nil:
			httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not store cover image", nil)
			return
		default:
			capaField = path.Join("assets", capaName)
		}
	}

	work := entity.Work{
		Titulo:     req.Titulo,
		Autor:      req.Autor,
		Genero:     req.Genero,
		Descricao:  req.Descricao,
		GrauMinimo: grade.String(),
		Arquivo:    path.Join("conteudo", grauDir, contentName),
		Capa:       capaField,
	}

	stored, err := h.works.Add(r.Context(), work)
	if err != nil {
		// The catalog row was never written; remove the files saved above
		// so a refused upload leaves no orphans.
		os.Remove(destPath)
		if capaField != "" {
			os.Remove(capaPath)
		}
		if errors.Is(err, usecase.ErrCatalogUnreadable) {
			httpx.JSONErrorWithRequest(r, w, http.StatusConflict, "CATALOG_UNREADABLE", "Catalog file is malformed; fix it before adding works", nil)
			return
		}
		httpx.JSONErrorWithRequest(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not update catalog", nil)
		return
	}

	httpx.JSONSuccessCreatedWithRequest(r, w, stored, meta)
}

var errNotAnImage = errors.New("uploaded cover does not decode as an image")

func saveUploadedFile(src multipart.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(dest)
		return err
	}
	return f.Close()
}

// saveCover writes the cover and then verifies it decodes; a bogus file
// is removed again so the assets directory holds only real images.
func saveCover(src multipart.File, dest string) error {
	if err := saveUploadedFile(src, dest); err != nil {
		return err
	}
	f, err := os.Open(dest)
	if err != nil {
		os.Remove(dest)
		return err
	}
	_, _, decodeErr := image.DecodeConfig(f)
	f.Close()
	if decodeErr != nil {
		os.Remove(dest)
		return errNotAnImage
	}
	return nil
}

// safeFilename mirrors the catalog convention: alphanumerics, dash,
// underscore, dot and space survive; everything else becomes an
// underscore. Any path component in the client-supplied name is dropped
// first.
func safeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == ' ':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || b.String() == "." || b.String() == ".." {
		return "_"
	}
	return b.String()
}
