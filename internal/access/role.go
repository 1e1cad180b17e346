package access

import "strings"

// Role es el rol guardado en el registro del usuario.
// Solo un admin puede cambiarlo.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleMediator    Role = "mediator"
	RoleParticipant Role = "participant"
)

// Roles en orden de privilegio (útil para UI/validación).
var Roles = []Role{RoleAdmin, RoleCoordinator, RoleMediator, RoleParticipant}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleMediator, RoleParticipant:
		return true
	default:
		return false
	}
}

// Requester es la identidad del request, pasada explícitamente a cada servicio.
// El zero value es un visitante anónimo.
type Requester struct {
	UserID string
	Role   Role
}

func Anonymous() Requester { return Requester{} }

func (r Requester) Authenticated() bool {
	return strings.TrimSpace(r.UserID) != ""
}
