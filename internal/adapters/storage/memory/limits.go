package memory

import "mediation-cms/internal/access"

const (
	defaultLimit = 50
	maxLimit     = 200
)

func clamp(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// allowed aplica el filtro de la política; nil = sin restricción.
func allowed(f *access.Filter, doc access.Document) bool {
	return f == nil || f.Matches(doc)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
