package access

// Rule decide acceso a nivel colección para una operación.
type Rule func(r Requester) Decision

// FieldRule decide acceso a un campo sobre el documento efectivo
// (ver ResolveEffectiveDocument).
type FieldRule func(r Requester, doc Document) bool

func IsAdmin(r Requester) bool {
	return r.Authenticated() && r.Role == RoleAdmin
}

func IsCoordinatorOrAdmin(r Requester) bool {
	return r.Authenticated() && (r.Role == RoleAdmin || r.Role == RoleCoordinator)
}

// CanManageUsers:
// - admin/coordinator ven todo
// - cualquier otro autenticado solo su propio registro
// - anónimo: deny
func CanManageUsers(r Requester) Decision {
	if IsCoordinatorOrAdmin(r) {
		return Allow()
	}
	if !r.Authenticated() {
		return Deny()
	}
	return FilterBy(AnyOf(Where(FieldID, OpEquals, r.UserID)))
}

// CanReadMediatorNotes: staff, o el requester figura en "mediators" del documento.
func CanReadMediatorNotes(r Requester, doc Document) bool {
	if IsCoordinatorOrAdmin(r) {
		return true
	}
	if !r.Authenticated() {
		return false
	}
	return doc.Related(RelMediators, r.UserID)
}

// CanEditAccount: la cuenta de un admin solo la edita un admin o su dueño.
// El resto de cuentas queda en manos de quien pase Users.Update.
func CanEditAccount(r Requester, doc Document) bool {
	if doc.Role != RoleAdmin {
		return true
	}
	return IsAdmin(r) || (r.Authenticated() && r.UserID == doc.ID)
}

func Public(Requester) Decision { return Allow() }

func AdminOnly(r Requester) Decision {
	if IsAdmin(r) {
		return Allow()
	}
	return Deny()
}

func StaffOnly(r Requester) Decision {
	if IsCoordinatorOrAdmin(r) {
		return Allow()
	}
	return Deny()
}

// AssignedOrStaff: staff todo; autenticado solo donde figure en alguna relación.
func AssignedOrStaff(relations ...string) Rule {
	return func(r Requester) Decision {
		if IsCoordinatorOrAdmin(r) {
			return Allow()
		}
		if !r.Authenticated() {
			return Deny()
		}
		conds := make([]Condition, 0, len(relations))
		for _, rel := range relations {
			conds = append(conds, Where(rel, OpContains, r.UserID))
		}
		return FilterBy(AnyOf(conds...))
	}
}

// PublishedOrAssigned: como AssignedOrStaff, pero lo publicado es visible
// para cualquiera (incluido anónimo).
func PublishedOrAssigned(relations ...string) Rule {
	return func(r Requester) Decision {
		if IsCoordinatorOrAdmin(r) {
			return Allow()
		}
		conds := []Condition{Where(FieldStatus, OpEquals, StatusPublished)}
		if r.Authenticated() {
			for _, rel := range relations {
				conds = append(conds, Where(rel, OpContains, r.UserID))
			}
		}
		return FilterBy(AnyOf(conds...))
	}
}

func staffField(r Requester, _ Document) bool { return IsCoordinatorOrAdmin(r) }

func adminField(r Requester, _ Document) bool { return IsAdmin(r) }
