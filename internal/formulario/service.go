// Package formulario fornece a lógica de domínio dos formulários pessoais.
package formulario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emuangala/formulario/internal/model"
	"github.com/emuangala/formulario/internal/repository"
	"github.com/emuangala/formulario/internal/security"
	"github.com/emuangala/formulario/internal/storage"
)

// FotoUpload representa o ficheiro de foto recebido na submissão.
type FotoUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Input agrupa os campos submetidos pelos ecrãs de criação e edição.
// Foto é nil quando nenhum ficheiro foi escolhido.
type Input struct {
	Nome           string
	DataNascimento string // AAAA-MM-DD
	Morada         string
	Telefone       string
	MotivoContato  string
	Profissao      string
	Foto           *FotoUpload
}

// MetricsRecorder é a interface de registo de métricas do domínio.
type MetricsRecorder interface {
	RecordFormularioCreated()
	RecordFormularioDeleted()
	RecordFotoUploaded()
}

// Service fornece as operações CRUD sobre formulários.
// Protocolo de submissão: o upload da foto (quando existe) precede a
// escrita na base de dados; uma falha no upload aborta a submissão sem
// gravar nenhum registo. Se a escrita falhar depois de um upload
// bem-sucedido, o objeto é removido numa compensação de melhor esforço.
type Service struct {
	repo      repository.FormularioRepository
	objects   storage.ObjectStorage
	sanitizer security.TextSanitizerService
	metrics   MetricsRecorder
}

// NewService cria um Service.
func NewService(
	repo repository.FormularioRepository,
	objects storage.ObjectStorage,
	sanitizer security.TextSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		repo:      repo,
		objects:   objects,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Create processa a submissão do ecrã de criação.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*model.Formulario, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	f, err := s.buildFormulario(userID, in)
	if err != nil {
		return nil, err
	}
	f.ID = uuid.New().String()
	f.CreatedAt = time.Now()

	var objectPath string
	if in.Foto != nil {
		url, path, err := s.uploadFoto(ctx, userID, in.Foto)
		if err != nil {
			return nil, err
		}
		f.FotoPerfilURL = &url
		objectPath = path
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.compensateUpload(ctx, objectPath)
		return nil, fmt.Errorf("failed to create formulario: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordFormularioCreated()
	}
	slog.Info("formulário criado",
		slog.String("formulario_id", f.ID),
		slog.String("user_id", userID),
		slog.Bool("com_foto", f.FotoPerfilURL != nil),
	)

	return f, nil
}

// Update processa a submissão do ecrã de edição.
// Sem foto nova o URL guardado permanece intacto; com foto nova o URL é
// substituído pelo do novo objeto.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*model.Formulario, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	existing, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find formulario: %w", err)
	}
	if existing == nil {
		return nil, model.NewFormularioNotFoundError(id)
	}

	f, err := s.buildFormulario(userID, in)
	if err != nil {
		return nil, err
	}
	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt
	f.FotoPerfilURL = existing.FotoPerfilURL

	updatePhoto := in.Foto != nil
	var objectPath string
	if updatePhoto {
		url, path, err := s.uploadFoto(ctx, userID, in.Foto)
		if err != nil {
			return nil, err
		}
		f.FotoPerfilURL = &url
		objectPath = path
	}

	if err := s.repo.Update(ctx, f, updatePhoto); err != nil {
		s.compensateUpload(ctx, objectPath)
		return nil, fmt.Errorf("failed to update formulario: %w", err)
	}

	slog.Info("formulário atualizado",
		slog.String("formulario_id", f.ID),
		slog.String("user_id", userID),
		slog.Bool("foto_substituida", updatePhoto),
	)

	return f, nil
}

// Get obtém um formulário do utilizador pelo identificador.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Formulario, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	f, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find formulario: %w", err)
	}
	if f == nil {
		return nil, model.NewFormularioNotFoundError(id)
	}

	return f, nil
}

// List devolve os formulários do utilizador por criação descendente.
func (s *Service) List(ctx context.Context, userID string) ([]*model.Formulario, error) {
	if userID == "" {
		return nil, model.NewUnauthorizedError()
	}

	result, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list formularios: %w", err)
	}

	return result, nil
}

// Delete apaga um formulário do utilizador.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return model.NewUnauthorizedError()
	}

	existing, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to find formulario: %w", err)
	}
	if existing == nil {
		return model.NewFormularioNotFoundError(id)
	}

	if err := s.repo.DeleteByID(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to delete formulario: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordFormularioDeleted()
	}
	slog.Info("formulário apagado",
		slog.String("formulario_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

// buildFormulario valida e limpa os campos submetidos.
// Todos os campos textuais são obrigatórios; valores vazios (ou apenas
// espaços/HTML) são rejeitados com erro de validação.
func (s *Service) buildFormulario(userID string, in Input) (*model.Formulario, error) {
	f := &model.Formulario{UserID: userID}

	campos := []struct {
		nome  string
		valor string
		dest  *string
	}{
		{"nome", in.Nome, &f.Nome},
		{"morada", in.Morada, &f.Morada},
		{"telefone", in.Telefone, &f.Telefone},
		{"motivo_contato", in.MotivoContato, &f.MotivoContato},
		{"profissao", in.Profissao, &f.Profissao},
	}

	for _, campo := range campos {
		limpo := s.sanitizer.Sanitize(campo.valor)
		if limpo == "" {
			return nil, model.NewValidationError(campo.nome)
		}
		*campo.dest = limpo
	}

	if in.DataNascimento == "" {
		return nil, model.NewValidationError("data_nascimento")
	}
	data, err := time.Parse(model.DataNascimentoLayout, in.DataNascimento)
	if err != nil {
		return nil, model.NewInvalidDateError(in.DataNascimento)
	}
	f.DataNascimento = data

	return f, nil
}

// uploadFoto envia a foto para o bucket com nome aleatório preservando a
// extensão, sob o namespace do utilizador, e devolve a URL pública e o
// caminho do objeto.
func (s *Service) uploadFoto(ctx context.Context, userID string, foto *FotoUpload) (string, string, error) {
	filename := storage.RandomFilename(foto.Filename)
	objectPath := storage.ObjectPath(userID, filename)

	if err := s.objects.Upload(ctx, objectPath, foto.Reader, foto.ContentType); err != nil {
		slog.Error("falha no upload da foto de perfil",
			slog.String("user_id", userID),
			slog.String("object_path", objectPath),
			slog.String("error", err.Error()),
		)
		return "", "", model.NewUploadFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordFotoUploaded()
	}

	return s.objects.PublicURL(objectPath), objectPath, nil
}

// compensateUpload remove o objeto enviado quando a escrita na base de
// dados falha a seguir a um upload bem-sucedido. Melhor esforço: a falha
// da compensação é apenas registada.
func (s *Service) compensateUpload(ctx context.Context, objectPath string) {
	if objectPath == "" {
		return
	}
	if err := s.objects.Delete(ctx, objectPath); err != nil {
		slog.Error("falha ao remover objeto órfão",
			slog.String("object_path", objectPath),
			slog.String("error", err.Error()),
		)
	}
}
