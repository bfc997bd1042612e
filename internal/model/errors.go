// Package model define os modelos de domínio.
package model

import "fmt"

// APIError representa o formato unificado de erro.
// Inclui a categoria da causa e a ação sugerida para exibição na UI.
type APIError struct {
	Code     string // código do erro
	Message  string // mensagem do erro
	Category string // categoria: auth, validation, formulario, storage, system
	Action   string // orientação ao utilizador
}

// Error implementa a interface error.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Códigos de erro definidos
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeEmailInUse          = "EMAIL_IN_USE"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidDate         = "INVALID_DATE"
	ErrCodeFormularioNotFound  = "FORMULARIO_NOT_FOUND"
	ErrCodeUploadFailed        = "UPLOAD_FAILED"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
)

// NewUnauthorizedError gera o erro de acesso não autenticado.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Usuário não autenticado.",
		Category: "auth",
		Action:   "Entre na sua conta e tente novamente.",
	}
}

// NewInvalidCredentialsError gera o erro de credenciais inválidas.
// A mensagem não distingue email desconhecido de senha incorreta.
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Email ou senha incorretos.",
		Category: "auth",
		Action:   "Verifique as credenciais e tente novamente.",
	}
}

// NewEmailInUseError gera o erro de email já registado.
func NewEmailInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailInUse,
		Message:  "Este email já está registrado.",
		Category: "auth",
		Action:   "Entre com a conta existente ou use outro email.",
	}
}

// NewWeakPasswordError gera o erro de senha fraca.
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "A senha deve ter pelo menos 8 caracteres.",
		Category: "validation",
		Action:   "Escolha uma senha mais longa.",
	}
}

// NewValidationError gera o erro de campo obrigatório ausente ou inválido.
func NewValidationError(campo string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("O campo %q é obrigatório.", campo),
		Category: "validation",
		Action:   "Preencha todos os campos obrigatórios.",
	}
}

// NewInvalidDateError gera o erro de data de nascimento inválida.
func NewInvalidDateError(valor string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("Data de nascimento inválida: %s", valor),
		Category: "validation",
		Action:   "Informe a data no formato AAAA-MM-DD.",
	}
}

// NewFormularioNotFoundError gera o erro de formulário não encontrado.
func NewFormularioNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeFormularioNotFound,
		Message:  fmt.Sprintf("Formulário não encontrado: %s", id),
		Category: "formulario",
		Action:   "Verifique o identificador do formulário.",
	}
}

// NewUploadFailedError gera o erro de falha no envio da foto.
// Nenhum registo é gravado quando o upload falha.
func NewUploadFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeUploadFailed,
		Message:  "Falha ao enviar a foto de perfil.",
		Category: "storage",
		Action:   "Tente novamente em alguns instantes.",
	}
}

// NewInvalidRequestError gera o erro de corpo de requisição malformado.
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Não foi possível interpretar a requisição.",
		Category: "validation",
		Action:   "Envie a requisição no formato esperado.",
	}
}

// NewUserNotFoundError gera o erro de utilizador não encontrado.
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Usuário não encontrado.",
		Category: "auth",
		Action:   "Entre novamente na sua conta.",
	}
}
