package access

// Kind discrimina las tres formas posibles de una decisión.
type Kind uint8

const (
	KindDeny Kind = iota
	KindAllow
	KindFilter
)

func (k Kind) String() string {
	switch k {
	case KindAllow:
		return "allow"
	case KindFilter:
		return "filter"
	default:
		return "deny"
	}
}

// Decision es Allow | Deny | FilterBy(filtro).
// El zero value es Deny.
type Decision struct {
	kind   Kind
	filter Filter
}

func Allow() Decision { return Decision{kind: KindAllow} }

func Deny() Decision { return Decision{kind: KindDeny} }

// FilterBy restringe a los documentos que matchean f.
// Un filtro vacío se degrada a Deny.
func FilterBy(f Filter) Decision {
	if f.Empty() {
		return Deny()
	}
	return Decision{kind: KindFilter, filter: f}
}

func (d Decision) Kind() Kind { return d.kind }

// Filter devuelve el filtro solo si la decisión es FilterBy.
func (d Decision) Filter() (Filter, bool) {
	if d.kind != KindFilter {
		return Filter{}, false
	}
	return d.filter, true
}

func (d Decision) Denied() bool { return d.kind == KindDeny }

// Permits evalúa la decisión contra un documento concreto.
func (d Decision) Permits(doc Document) bool {
	switch d.kind {
	case KindAllow:
		return true
	case KindFilter:
		return d.filter.Matches(doc)
	default:
		return false
	}
}

// Scope traduce la decisión a lo que necesita un repositorio al listar:
// denied => no consultar; filter nil => sin restricción.
func (d Decision) Scope() (filter *Filter, denied bool) {
	switch d.kind {
	case KindAllow:
		return nil, false
	case KindFilter:
		f := d.filter
		return &f, false
	default:
		return nil, true
	}
}
