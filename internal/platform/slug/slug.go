package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Make genera un slug url-safe: minúsculas, sin acentos, guiones simples.
// "Taller de Mediación 2025!" => "taller-de-mediacion-2025"
func Make(s string) string {
	var b strings.Builder
	dash := false

	for _, r := range norm.NFD.String(strings.TrimSpace(s)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// marcas diacríticas (acentos) se descartan
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// Valid indica si s ya tiene forma de slug.
func Valid(s string) bool {
	return s != "" && Make(s) == s
}
