package submissions

import (
	"strconv"
	"strings"
)

// Campos planos del wizard que se mueven a Submitter.
const (
	keyFirstName         = "firstName"
	keyLastName          = "lastName"
	keyEmail             = "email"
	keyPhone             = "phone"
	keyStreetAddress     = "streetAddress"
	keyCity              = "city"
	keyState             = "state"
	keyZipCode           = "zipCode"
	keyPreferredContact  = "preferredContact"
	keyCanLeaveVoicemail = "canLeaveVoicemail"
	keyCanText           = "canText"
)

// MapFormData separa los campos planos del wizard en el Submitter anidado y
// devuelve el resto en details, sin tocar sus valores. formData no se modifica.
func MapFormData(formData map[string]any) (Submitter, map[string]any) {
	var s Submitter
	details := make(map[string]any)

	for k, v := range formData {
		switch k {
		case keyFirstName:
			s.FirstName = text(v)
		case keyLastName:
			s.LastName = text(v)
		case keyEmail:
			s.Email = text(v)
		case keyPhone:
			s.Phone = text(v)
		case keyStreetAddress:
			s.Address.Street = text(v)
		case keyCity:
			s.Address.City = text(v)
		case keyState:
			s.Address.State = text(v)
		case keyZipCode:
			s.Address.Zip = text(v)
		case keyPreferredContact:
			s.ContactPreferences.PreferredContact = text(v)
		case keyCanLeaveVoicemail:
			s.ContactPreferences.CanLeaveVoicemail = yesNo(v)
		case keyCanText:
			s.ContactPreferences.CanText = yesNo(v)
		default:
			details[k] = v
		}
	}

	return s, details
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON decodifica números como float64 (ej. zipCode: 12345)
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// yesNo acepta "Yes"/"No", booleanos y "true"/"false".
func yesNo(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true", "1":
			return true
		}
	}
	return false
}
