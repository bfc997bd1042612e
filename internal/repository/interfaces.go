// Package repository define as interfaces de persistência de dados.
package repository

import (
	"context"

	"github.com/emuangala/formulario/internal/model"
)

// UserRepository é a interface de persistência de utilizadores.
type UserRepository interface {
	// FindByID obtém o utilizador com o ID indicado. Devolve nil se não existir.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail obtém o utilizador com o email indicado. Devolve nil se não existir.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create cria um utilizador.
	Create(ctx context.Context, user *model.User) error

	// CreateWithIdentity cria o utilizador e a identity na mesma transação.
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error
}

// IdentityRepository é a interface de persistência dos vínculos com IdPs externos.
type IdentityRepository interface {
	// FindByProviderAndProviderUserID procura a identity por provider e provider_user_id.
	// Devolve nil se não existir.
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository é a interface de persistência de sessões.
type SessionRepository interface {
	// Create cria uma sessão.
	Create(ctx context.Context, session *model.Session) error
	// FindByID obtém a sessão com o ID indicado. Sessões expiradas contam como ausentes.
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID apaga a sessão com o ID indicado.
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID apaga todas as sessões do utilizador.
	DeleteByUserID(ctx context.Context, userID string) error
}

// FormularioRepository é a interface de persistência de formulários.
// Todas as operações são restritas ao dono: cada consulta filtra por user_id.
type FormularioRepository interface {
	// FindByID obtém o formulário com o ID indicado pertencente ao utilizador.
	// Devolve nil se não existir ou pertencer a outro utilizador.
	FindByID(ctx context.Context, id, userID string) (*model.Formulario, error)

	// ListByUserID devolve os formulários do utilizador por created_at descendente.
	ListByUserID(ctx context.Context, userID string) ([]*model.Formulario, error)

	// Create insere um formulário.
	Create(ctx context.Context, f *model.Formulario) error

	// Update atualiza todos os campos do formulário do utilizador.
	// foto_perfil_url só é alterado quando updatePhoto é true.
	// Devolve erro de linhas afetadas zero quando o registo não existe.
	Update(ctx context.Context, f *model.Formulario, updatePhoto bool) error

	// DeleteByID apaga o formulário do utilizador.
	// Devolve erro de linhas afetadas zero quando o registo não existe.
	DeleteByID(ctx context.Context, id, userID string) error
}
