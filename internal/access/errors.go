package access

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// DenialError traduce una escritura negada: anónimo => 401, autenticado => 403.
// Las lecturas negadas no usan esto: se responden como not found.
func DenialError(r Requester) error {
	if !r.Authenticated() {
		return ErrUnauthorized
	}
	return ErrForbidden
}
