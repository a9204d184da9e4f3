package access

import "strings"

// Grade is the minimum degree required to view a work.
// The ordering is fixed: Aprendiz < Companheiro < Mestre.
type Grade int

const (
	GradeAprendiz Grade = iota + 1
	GradeCompanheiro
	GradeMestre
)

func (g Grade) String() string {
	switch g {
	case GradeAprendiz:
		return "Aprendiz"
	case GradeCompanheiro:
		return "Companheiro"
	default:
		return "Mestre"
	}
}

// ParseGrade normalizes the free-text grau_minimo column into a Grade.
// Matching is case-insensitive and whitespace-trimmed. Anything
// unrecognized, including the empty string, maps to Mestre: ambiguous
// data hides content rather than leaking it.
func ParseGrade(raw string) Grade {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "aprendiz":
		return GradeAprendiz
	case "companheiro":
		return GradeCompanheiro
	case "mestre":
		return GradeMestre
	default:
		return GradeMestre
	}
}

// RoleRank ranks a viewer role. Unknown roles rank as Aprendiz,
// the least privileged.
func RoleRank(role string) int {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "companheiro":
		return int(GradeCompanheiro)
	case "mestre":
		return int(GradeMestre)
	default:
		return int(GradeAprendiz)
	}
}

// Visible reports whether a viewer with the given role may see a work
// requiring minGrade.
func Visible(viewerRole string, minGrade Grade) bool {
	return RoleRank(viewerRole) >= int(minGrade)
}
