package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emuangala/formulario/internal/formulario"
	"github.com/emuangala/formulario/internal/middleware"
	"github.com/emuangala/formulario/internal/model"
)

// fotoFieldName é o nome do campo multipart com o ficheiro da foto.
const fotoFieldName = "foto"

// FormularioServiceInterface é a interface de serviço exigida pelo handler.
type FormularioServiceInterface interface {
	Create(ctx context.Context, userID string, in formulario.Input) (*model.Formulario, error)
	Update(ctx context.Context, userID, id string, in formulario.Input) (*model.Formulario, error)
	Get(ctx context.Context, userID, id string) (*model.Formulario, error)
	List(ctx context.Context, userID string) ([]*model.Formulario, error)
	Delete(ctx context.Context, userID, id string) error
}

// FormularioHandler é o handler HTTP dos formulários.
type FormularioHandler struct {
	service       FormularioServiceInterface
	uploadMaxSize int64
}

// NewFormularioHandler cria um FormularioHandler.
// uploadMaxSize limita o tamanho total das requisições multipart (bytes).
func NewFormularioHandler(service FormularioServiceInterface, uploadMaxSize int64) *FormularioHandler {
	return &FormularioHandler{
		service:       service,
		uploadMaxSize: uploadMaxSize,
	}
}

// formularioResponse é a resposta da API com um formulário.
// A data de nascimento sai em ISO e no formato de exibição DD/MM/AAAA.
type formularioResponse struct {
	ID                      string  `json:"id"`
	Nome                    string  `json:"nome"`
	DataNascimento          string  `json:"data_nascimento"`
	DataNascimentoFormatada string  `json:"data_nascimento_formatada"`
	Morada                  string  `json:"morada"`
	Telefone                string  `json:"telefone"`
	MotivoContato           string  `json:"motivo_contato"`
	Profissao               string  `json:"profissao"`
	FotoPerfilURL           *string `json:"foto_perfil_url"`
	CreatedAt               string  `json:"created_at"`
}

// formularioListResult é a resposta da listagem.
type formularioListResult struct {
	Formularios []formularioResponse `json:"formularios"`
}

// apiErrorResponse é a resposta de erro no formato unificado.
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

func toFormularioResponse(f *model.Formulario) formularioResponse {
	return formularioResponse{
		ID:                      f.ID,
		Nome:                    f.Nome,
		DataNascimento:          f.DataNascimento.Format(model.DataNascimentoLayout),
		DataNascimentoFormatada: f.DataNascimento.Format(model.DataNascimentoDisplayLayout),
		Morada:                  f.Morada,
		Telefone:                f.Telefone,
		MotivoContato:           f.MotivoContato,
		Profissao:               f.Profissao,
		FotoPerfilURL:           f.FotoPerfilURL,
		CreatedAt:               f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// parseInput extrai os campos do formulário de uma requisição multipart.
// O campo foto é opcional; quando presente, o ficheiro segue para o serviço
// sem ser carregado inteiro em memória.
func (h *FormularioHandler) parseInput(r *http.Request) (formulario.Input, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.uploadMaxSize)

	// 32KB em memória; o resto vai para ficheiros temporários
	if err := r.ParseMultipartForm(32 << 10); err != nil {
		return formulario.Input{}, model.NewInvalidRequestError()
	}

	in := formulario.Input{
		Nome:           r.FormValue("nome"),
		DataNascimento: r.FormValue("data_nascimento"),
		Morada:         r.FormValue("morada"),
		Telefone:       r.FormValue("telefone"),
		MotivoContato:  r.FormValue("motivo_contato"),
		Profissao:      r.FormValue("profissao"),
	}

	file, header, err := r.FormFile(fotoFieldName)
	if err == nil {
		in.Foto = &formulario.FotoUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		return formulario.Input{}, model.NewInvalidRequestError()
	}

	return in, nil
}

// Create trata a criação de um formulário.
// POST /api/formularios (multipart/form-data)
func (h *FormularioHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	in, err := h.parseInput(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	f, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toFormularioResponse(f))
}

// Update trata a edição de um formulário.
// PUT /api/formularios/{id} (multipart/form-data)
func (h *FormularioHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	in, err := h.parseInput(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	f, err := h.service.Update(r.Context(), userID, id, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toFormularioResponse(f))
}

// Get trata a consulta de um formulário.
// GET /api/formularios/{id}
func (h *FormularioHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	f, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toFormularioResponse(f))
}

// List trata a listagem dos formulários do utilizador.
// GET /api/formularios
func (h *FormularioHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	result, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]formularioResponse, 0, len(result))
	for _, f := range result {
		responses = append(responses, toFormularioResponse(f))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formularioListResult{Formularios: responses})
}

// Delete trata a remoção de um formulário.
// DELETE /api/formularios/{id}
func (h *FormularioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeAPIErrorResponse escreve uma resposta de erro no formato unificado.
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError converte um erro da camada de serviço numa resposta HTTP.
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// Erros fora do APIError são tratados como erro interno
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, internalServerError())
}

// mapAPIErrorToHTTPStatus mapeia o código do APIError para o estado HTTP.
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeEmailInUse:
		return http.StatusConflict
	case model.ErrCodeWeakPassword, model.ErrCodeValidationFailed,
		model.ErrCodeInvalidDate, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeFormularioNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func internalServerError() *model.APIError {
	return &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Ocorreu um erro interno.",
		Category: "system",
		Action:   "Aguarde um momento e tente novamente.",
	}
}
