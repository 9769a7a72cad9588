package rotation

import "testing"

func TestRoleKey(t *testing.T) {
	cases := map[string]string{
		"Host":    "host",
		" news ":  "news",
		"NEWS":    "news",
		"  Note Taker  ": "note taker",
	}
	for in, want := range cases {
		if got := RoleKey(in); got != want {
			t.Fatalf("RoleKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoleDisplay(t *testing.T) {
	if got := RoleDisplay("  Host "); got != "Host" {
		t.Fatalf("RoleDisplay: %q", got)
	}
}

func TestNormalizeScope(t *testing.T) {
	cases := map[string]string{
		"":        ScopeAll,
		"ALL":     ScopeAll,
		"all":     ScopeAll,
		" All ":   ScopeAll,
		"piso-3":  "piso-3",
		" piso-3 ": "piso-3",
	}
	for in, want := range cases {
		if got := NormalizeScope(in); got != want {
			t.Fatalf("NormalizeScope(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsAllScope(t *testing.T) {
	if !IsAllScope(ScopeAll) {
		t.Fatal("expected ScopeAll to be all-scope")
	}
	if IsAllScope("piso-3") {
		t.Fatal("group scope reported as all-scope")
	}
}
