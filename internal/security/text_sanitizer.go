// Package security fornece as funções de segurança da aplicação.
//
// TextSanitizerService limpa os campos de texto livre submetidos nos
// formulários antes da gravação, removendo qualquer HTML com uma política
// bluemonday de remoção total. Os campos do formulário são texto puro;
// nenhuma marcação é legítima neles.
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService define a interface de limpeza de texto livre.
// Usada na gravação de todos os campos textuais do formulário.
type TextSanitizerService interface {
	// Sanitize remove todas as tags HTML e apara os espaços das pontas.
	// Entrada vazia devolve vazio. Idempotente.
	Sanitize(raw string) string
}

// textSanitizer é a implementação de TextSanitizerService.
// Mantém a política bluemonday; a limpeza é thread-safe.
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer cria um TextSanitizerService.
// A política StrictPolicy não permite nenhum elemento: todo o HTML é
// removido, restando apenas o texto.
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize remove todas as tags HTML e apara os espaços das pontas.
func (s *textSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
