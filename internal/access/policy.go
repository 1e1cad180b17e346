package access

type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type FieldPolicy struct {
	Read  FieldRule
	Write FieldRule
}

// Policy agrupa las reglas de una colección. Regla nil = deny.
type Policy struct {
	Collection string

	Create Rule
	Read   Rule
	Update Rule
	Delete Rule

	Fields map[string]FieldPolicy
}

func (p Policy) Decide(op Operation, r Requester) Decision {
	var rule Rule
	switch op {
	case OpCreate:
		rule = p.Create
	case OpRead:
		rule = p.Read
	case OpUpdate:
		rule = p.Update
	case OpDelete:
		rule = p.Delete
	}
	if rule == nil {
		return Deny()
	}
	return rule(r)
}

// CanReadField: un campo sin política propia hereda la decisión de la colección.
func (p Policy) CanReadField(field string, r Requester, doc Document) bool {
	fp, ok := p.Fields[field]
	if !ok || fp.Read == nil {
		return true
	}
	return fp.Read(r, doc)
}

func (p Policy) CanWriteField(field string, r Requester, doc Document) bool {
	fp, ok := p.Fields[field]
	if !ok || fp.Write == nil {
		return true
	}
	return fp.Write(r, doc)
}

// Permits resuelve la decisión de op para r y la evalúa sobre doc.
func (p Policy) Permits(op Operation, r Requester, doc Document) bool {
	return p.Decide(op, r).Permits(doc)
}
