package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"lodgeportal/internal/access"
	"lodgeportal/internal/entity"
)

var (
	// ErrNotFound covers both a missing id and an id the viewer may not
	// see; the two are indistinguishable on purpose so responses never
	// leak the existence of restricted works.
	ErrNotFound = errors.New("not found")

	// ErrCatalogUnreadable means the backing file could not be parsed by
	// any candidate. The caller degrades to an empty listing with a
	// warning; the source file is never overwritten.
	ErrCatalogUnreadable = errors.New("catalog unreadable")
)

// WorkRepository is the contract the catalog store fulfills.
type WorkRepository interface {
	// All returns every catalog row, unfiltered.
	All(ctx context.Context) ([]entity.Work, error)
	// Add assigns the next id, persists and returns the stored row.
	Add(ctx context.Context, w entity.Work) (entity.Work, error)
}

type ListParams struct {
	Role    string
	Q       string   // substring over titulo/autor/descricao
	Generos []string // exact match, any-of
	Sort    string   // titulo (default), autor, recentes
}

type WorkUsecase struct {
	repo WorkRepository
}

func NewWorkUsecase(repo WorkRepository) *WorkUsecase {
	return &WorkUsecase{repo: repo}
}

// List returns the works visible to p.Role after search/genre filters and
// sorting, plus the genre facet. The facet is computed from the
// degree-filtered set before search filters, so the genre picker always
// shows everything the viewer could reach.
func (u *WorkUsecase) List(ctx context.Context, p ListParams) ([]entity.Work, []string, error) {
	rows, err := u.repo.All(ctx)
	if err != nil {
		return nil, nil, err
	}

	visible := access.FilterWorks(rows, p.Role)
	generos := genreFacet(visible)

	works := visible
	if q := strings.ToLower(strings.TrimSpace(p.Q)); q != "" {
		works = filterWorks(works, func(w entity.Work) bool {
			return strings.Contains(strings.ToLower(w.Titulo), q) ||
				strings.Contains(strings.ToLower(w.Autor), q) ||
				strings.Contains(strings.ToLower(w.Descricao), q)
		})
	}
	if len(p.Generos) > 0 {
		wanted := make(map[string]bool, len(p.Generos))
		for _, g := range p.Generos {
			wanted[g] = true
		}
		works = filterWorks(works, func(w entity.Work) bool {
			return wanted[w.Genero]
		})
	}

	sortWorks(works, p.Sort)
	return works, generos, nil
}

// GetVisible returns the work with the given id if p.Role may see it,
// with its grade normalized. ErrNotFound otherwise.
func (u *WorkUsecase) GetVisible(ctx context.Context, role, id string) (entity.Work, error) {
	rows, err := u.repo.All(ctx)
	if err != nil {
		return entity.Work{}, err
	}
	for _, w := range rows {
		if w.ID != id {
			continue
		}
		g := access.ParseGrade(w.GrauMinimo)
		if !access.Visible(role, g) {
			return entity.Work{}, ErrNotFound
		}
		w.GrauMinimo = g.String()
		return w, nil
	}
	return entity.Work{}, ErrNotFound
}

// Add appends a new work through the repository.
func (u *WorkUsecase) Add(ctx context.Context, w entity.Work) (entity.Work, error) {
	return u.repo.Add(ctx, w)
}

func filterWorks(in []entity.Work, keep func(entity.Work) bool) []entity.Work {
	out := make([]entity.Work, 0, len(in))
	for _, w := range in {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func genreFacet(rows []entity.Work) []string {
	seen := make(map[string]bool)
	var generos []string
	for _, w := range rows {
		g := strings.TrimSpace(w.Genero)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		generos = append(generos, g)
	}
	sort.Strings(generos)
	return generos
}

func sortWorks(works []entity.Work, order string) {
	switch order {
	case "autor":
		sort.SliceStable(works, func(i, j int) bool {
			if works[i].Autor != works[j].Autor {
				return works[i].Autor < works[j].Autor
			}
			return works[i].Titulo < works[j].Titulo
		})
	case "recentes":
		sort.SliceStable(works, func(i, j int) bool {
			return numericID(works[i]) > numericID(works[j])
		})
	default: // titulo
		sort.SliceStable(works, func(i, j int) bool {
			if works[i].Titulo != works[j].Titulo {
				return works[i].Titulo < works[j].Titulo
			}
			return numericID(works[i]) < numericID(works[j])
		})
	}
}

func numericID(w entity.Work) int {
	n, err := strconv.Atoi(strings.TrimSpace(w.ID))
	if err != nil {
		return 0
	}
	return n
}
