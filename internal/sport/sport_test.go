package sport

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Fútbol", "soccer"},
		{"fútbol", "soccer"},
		{"FÚTBOL", "soccer"},
		{"  Tenis ", "tennis"},
		{"pádel", "padel"},
		{"Baloncesto", "basketball"},
		{"Voleibol", "volleyball"},
		{"futbol", ""},
		{"Fút", ""},
		{"golf", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Default.Resolve(tt.query); got != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	table := Table{{Key: "a", Name: "Cancha"}, {Key: "b", Name: "cancha"}}
	if got := table.Resolve("CANCHA"); got != "a" {
		t.Fatalf("Resolve = %q, want a", got)
	}
}

func TestName(t *testing.T) {
	if got := Default.Name("padel"); got != "Pádel" {
		t.Fatalf("Name(padel) = %q", got)
	}
	if got := Default.Name("golf"); got != "" {
		t.Fatalf("Name(golf) = %q, want empty", got)
	}
}
