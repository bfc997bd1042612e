package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/emuangala/formulario/internal/model"
)

// ErrorResponseBody é o formato unificado das respostas de erro da API.
// Inclui a categoria da causa e a ação sugerida.
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// WriteErrorResponse escreve uma resposta de erro HTTP no formato unificado.
// Todos os endpoints da API usam este formato de erro.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError escreve a resposta unificada de erro interno.
// O detalhe fica apenas nos logs; o utilizador recebe uma mensagem genérica.
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Ocorreu um erro interno.",
		Category: "system",
		Action:   "Aguarde um momento e tente novamente.",
	})
}
