package slug

import "testing"

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Taller de Mediación 2025!":   "taller-de-mediacion-2025",
		"  Community   Dialogue  ":    "community-dialogue",
		"Conflict Coaching & Support": "conflict-coaching-support",
		"---":                         "",
		"Año Nuevo":                   "ano-nuevo",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("restorative-circles") {
		t.Fatalf("expected valid slug")
	}
	if Valid("Restorative Circles") || Valid("") {
		t.Fatalf("expected invalid slug")
	}
}
