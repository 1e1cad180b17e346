package intake

import (
	"sort"
	"strings"
)

// Field es un campo del wizard. Rules es un tag de go-playground/validator;
// vacío = campo libre sin validación.
type Field struct {
	Name  string `yaml:"name" json:"name"`
	Label string `yaml:"label" json:"label"`
	Rules string `yaml:"rules,omitempty" json:"rules,omitempty"`
}

type Step struct {
	Key    string  `yaml:"key" json:"key"`
	Title  string  `yaml:"title" json:"title"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Form define los pasos (en orden) de un formulario de intake.
type Form struct {
	Name        string `yaml:"name" json:"name"`
	ServiceType string `yaml:"serviceType" json:"serviceType"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// Field busca un campo por nombre en cualquier paso.
func (f Form) Field(name string) (Field, int, bool) {
	for i, s := range f.Steps {
		for _, fld := range s.Fields {
			if fld.Name == name {
				return fld, i, true
			}
		}
	}
	return Field{}, -1, false
}

const (
	yesNo        = "required,oneof=Yes No"
	contactRules = "required,oneof=email phone text"
)

func contactStep() Step {
	return Step{
		Key:   "contact",
		Title: "Contact information",
		Fields: []Field{
			{Name: "firstName", Label: "First name", Rules: "required,max=100"},
			{Name: "lastName", Label: "Last name", Rules: "required,max=100"},
			{Name: "email", Label: "Email", Rules: "required,email"},
			{Name: "phone", Label: "Phone", Rules: "required,min=7,max=20"},
		},
	}
}

func logisticsStep() Step {
	return Step{
		Key:   "logistics",
		Title: "Contact preferences",
		Fields: []Field{
			{Name: "preferredContact", Label: "Preferred contact method", Rules: contactRules},
			{Name: "canLeaveVoicemail", Label: "Can we leave a voicemail?", Rules: yesNo},
			{Name: "canText", Label: "Can we text you?", Rules: yesNo},
			{Name: "availability", Label: "Availability", Rules: "omitempty,max=500"},
		},
	}
}

var builtin = map[string]Form{
	"mediation": {
		Name:        "mediation",
		ServiceType: "Mediation",
		Steps: []Step{
			contactStep(),
			{
				Key:   "address",
				Title: "Address",
				Fields: []Field{
					{Name: "streetAddress", Label: "Street address", Rules: "required,max=200"},
					{Name: "city", Label: "City", Rules: "required,max=100"},
					{Name: "state", Label: "State", Rules: "required,min=2,max=50"},
					{Name: "zipCode", Label: "ZIP code", Rules: "required,numeric,len=5"},
				},
			},
			{
				Key:   "dispute",
				Title: "About the dispute",
				Fields: []Field{
					{Name: "disputeType", Label: "Type of dispute", Rules: "required,oneof=family neighbor workplace landlord-tenant business other"},
					{Name: "otherParty", Label: "Other party's name", Rules: "required,max=200"},
					{Name: "disputeDescription", Label: "Describe the situation", Rules: "required,min=20,max=5000"},
					{Name: "courtInvolvement", Label: "Is a court involved?", Rules: yesNo},
				},
			},
			logisticsStep(),
		},
	},
	"facilitation": {
		Name:        "facilitation",
		ServiceType: "Facilitation",
		Steps: []Step{
			contactStep(),
			{
				Key:   "organization",
				Title: "Organization",
				Fields: []Field{
					{Name: "organizationName", Label: "Organization name", Rules: "required,max=200"},
					{Name: "organizationRole", Label: "Your role", Rules: "omitempty,max=100"},
					{Name: "groupSize", Label: "Number of participants", Rules: "required,numeric"},
				},
			},
			{
				Key:   "session",
				Title: "Session details",
				Fields: []Field{
					{Name: "sessionGoals", Label: "Goals for the session", Rules: "required,min=20,max=5000"},
					{Name: "preferredDates", Label: "Preferred dates", Rules: "omitempty,max=500"},
				},
			},
			logisticsStep(),
		},
	},
}

// Lookup devuelve un form built-in (case-insensitive).
func Lookup(name string) (Form, bool) {
	f, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Forms lista los forms built-in ordenados por nombre.
func Forms() []Form {
	out := make([]Form, 0, len(builtin))
	for _, f := range builtin {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
