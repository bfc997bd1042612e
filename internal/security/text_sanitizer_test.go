package security

import "testing"

// TestSanitize_RemovesHTML verifica que tags HTML são removidas dos campos
// de texto livre.
func TestSanitize_RemovesHTML(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"texto puro", "Suporte técnico", "Suporte técnico"},
		{"script", `<script>alert("x")</script>Suporte`, "Suporte"},
		{"tags de formatação", "<b>Ana</b> Silva", "Ana Silva"},
		{"atributos de evento", `<img src=x onerror="alert(1)">Rua A`, "Rua A"},
		{"espaços nas pontas", "  Eng  ", "Eng"},
		{"vazio", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestSanitize_Idempotent verifica que limpar duas vezes produz o mesmo
// resultado.
func TestSanitize_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	in := `<p>Motivo <em>urgente</em></p>`
	once := s.Sanitize(in)
	twice := s.Sanitize(once)
	if once != twice {
		t.Errorf("Sanitize não é idempotente: %q != %q", once, twice)
	}
}
