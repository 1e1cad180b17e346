package access

// Relaciones conocidas entre documentos y usuarios.
const (
	RelMediators    = "mediators"
	RelParticipants = "participants"
	RelAuthors      = "authors"
	RelHosts        = "hosts"
)

// StatusPublished es el único status que habilita lectura pública.
const StatusPublished = "published"

// Document es la proyección de una entidad que importa para decidir acceso.
type Document struct {
	ID        string
	Status    string
	Relations map[string][]string

	// Role solo aplica a documentos de usuarios.
	Role Role
}

// Related indica si userID aparece en la relación indicada.
func (d Document) Related(relation, userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range d.Relations[relation] {
		if id == userID {
			return true
		}
	}
	return false
}

// ResolveEffectiveDocument combina los datos pendientes de escritura con el
// documento guardado. Lo pendiente gana campo por campo cuando está presente;
// una relación presente en pending (aunque vacía) reemplaza a la guardada.
// Cualquiera de los dos puede ser nil (create: sin stored; read: sin pending).
func ResolveEffectiveDocument(pending, stored *Document) Document {
	out := Document{Relations: map[string][]string{}}

	if stored != nil {
		out.ID = stored.ID
		out.Status = stored.Status
		out.Role = stored.Role
		for k, v := range stored.Relations {
			out.Relations[k] = v
		}
	}

	if pending != nil {
		if pending.ID != "" {
			out.ID = pending.ID
		}
		if pending.Status != "" {
			out.Status = pending.Status
		}
		if pending.Role != "" {
			out.Role = pending.Role
		}
		for k, v := range pending.Relations {
			out.Relations[k] = v
		}
	}

	return out
}
