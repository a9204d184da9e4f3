package access

import "lodgeportal/internal/entity"

// FilterWorks normalizes every row's grau_minimo and keeps the rows the
// viewer may see. Input order is preserved. The input slice is not
// modified.
func FilterWorks(rows []entity.Work, viewerRole string) []entity.Work {
	out := make([]entity.Work, 0, len(rows))
	for _, w := range rows {
		g := ParseGrade(w.GrauMinimo)
		w.GrauMinimo = g.String()
		if Visible(viewerRole, g) {
			out = append(out, w)
		}
	}
	return out
}
