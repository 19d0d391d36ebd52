package domain

import "testing"

func TestAuthorities_Verbatim(t *testing.T) {
	roles := []Role{{ID: 1, Name: "ROLE_ADMIN"}, {ID: 2, Name: "ROLE_USER"}, {ID: 3, Name: "auditor"}}

	labels := Authorities(roles)
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	for i, r := range roles {
		if labels[i] != r.Name {
			t.Fatalf("label %d: expected %q, got %q", i, r.Name, labels[i])
		}
	}
}

func TestAuthorities_Empty(t *testing.T) {
	if labels := Authorities(nil); len(labels) != 0 {
		t.Fatalf("expected no labels, got %v", labels)
	}
}

func TestPrincipal_HasAuthority(t *testing.T) {
	p := Principal{Authorities: []string{"ROLE_USER"}}
	if !p.HasAuthority("ROLE_USER") {
		t.Fatalf("expected ROLE_USER to be granted")
	}
	if p.HasAuthority("ROLE_ADMIN") {
		t.Fatalf("ROLE_ADMIN should not be granted")
	}
}
