package access

// Op es el operador de una condición de filtro.
type Op string

const (
	// OpEquals compara id o status.
	OpEquals Op = "equals"
	// OpContains verifica pertenencia a una relación (lista de user IDs).
	OpContains Op = "contains"
)

const (
	FieldID     = "id"
	FieldStatus = "status"
)

type Condition struct {
	Field string
	Op    Op
	Value string
}

func Where(field string, op Op, value string) Condition {
	return Condition{Field: field, Op: op, Value: value}
}

// Filter es una disyunción de condiciones (OR).
// Un filtro vacío no matchea nada: nunca es más amplio que la regla que lo generó.
type Filter struct {
	Any []Condition
}

func AnyOf(conds ...Condition) Filter {
	return Filter{Any: conds}
}

func (f Filter) Empty() bool { return len(f.Any) == 0 }

func (f Filter) Matches(d Document) bool {
	for _, c := range f.Any {
		if c.matches(d) {
			return true
		}
	}
	return false
}

func (c Condition) matches(d Document) bool {
	switch c.Op {
	case OpEquals:
		switch c.Field {
		case FieldID:
			return d.ID != "" && d.ID == c.Value
		case FieldStatus:
			return d.Status != "" && d.Status == c.Value
		default:
			return false
		}
	case OpContains:
		return d.Related(c.Field, c.Value)
	default:
		return false
	}
}
