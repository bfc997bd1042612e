// Package model define os modelos de domínio.
package model

import "time"

// User representa um utilizador do serviço.
// PasswordHash fica vazio para contas criadas apenas via OAuth.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity representa o vínculo com um IdP externo.
// Estrutura preparada para suportar múltiplos IdPs (Google, GitHub etc.).
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session representa a sessão de login de um utilizador.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
