package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emuangala/formulario/internal/model"
)

// PostgresFormularioRepo é o repositório de formulários sobre PostgreSQL.
// Toda a leitura e escrita filtra por user_id: um registo nunca é visível
// nem alterável por outro utilizador.
type PostgresFormularioRepo struct {
	db *sql.DB
}

// NewPostgresFormularioRepo cria um PostgresFormularioRepo.
func NewPostgresFormularioRepo(db *sql.DB) *PostgresFormularioRepo {
	return &PostgresFormularioRepo{db: db}
}

// FindByID obtém o formulário com o ID indicado pertencente ao utilizador.
// Devolve nil se não existir ou pertencer a outro utilizador.
func (r *PostgresFormularioRepo) FindByID(ctx context.Context, id, userID string) (*model.Formulario, error) {
	f := &model.Formulario{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, nome, data_nascimento, morada, telefone,
		        motivo_contato, profissao, foto_perfil_url, created_at
		 FROM formularios
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&f.ID, &f.UserID, &f.Nome, &f.DataNascimento, &f.Morada, &f.Telefone,
		&f.MotivoContato, &f.Profissao, &f.FotoPerfilURL, &f.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find formulario: %w", err)
	}

	return f, nil
}

// ListByUserID devolve os formulários do utilizador por created_at descendente.
func (r *PostgresFormularioRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Formulario, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, nome, data_nascimento, morada, telefone,
		        motivo_contato, profissao, foto_perfil_url, created_at
		 FROM formularios
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list formularios: %w", err)
	}
	defer rows.Close()

	var result []*model.Formulario
	for rows.Next() {
		f := &model.Formulario{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.Nome, &f.DataNascimento, &f.Morada,
			&f.Telefone, &f.MotivoContato, &f.Profissao, &f.FotoPerfilURL, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan formulario: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate formularios: %w", err)
	}

	return result, nil
}

// Create insere um formulário.
func (r *PostgresFormularioRepo) Create(ctx context.Context, f *model.Formulario) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO formularios
		   (id, user_id, nome, data_nascimento, morada, telefone,
		    motivo_contato, profissao, foto_perfil_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		f.ID, f.UserID, f.Nome, f.DataNascimento, f.Morada, f.Telefone,
		f.MotivoContato, f.Profissao, f.FotoPerfilURL, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert formulario: %w", err)
	}
	return nil
}

// Update atualiza todos os campos do formulário do utilizador.
// foto_perfil_url só é alterado quando updatePhoto é true; sem foto nova
// o URL guardado permanece intacto.
func (r *PostgresFormularioRepo) Update(ctx context.Context, f *model.Formulario, updatePhoto bool) error {
	var (
		result sql.Result
		err    error
	)

	if updatePhoto {
		result, err = r.db.ExecContext(ctx,
			`UPDATE formularios
			 SET nome = $1, data_nascimento = $2, morada = $3, telefone = $4,
			     motivo_contato = $5, profissao = $6, foto_perfil_url = $7
			 WHERE id = $8 AND user_id = $9`,
			f.Nome, f.DataNascimento, f.Morada, f.Telefone,
			f.MotivoContato, f.Profissao, f.FotoPerfilURL, f.ID, f.UserID,
		)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE formularios
			 SET nome = $1, data_nascimento = $2, morada = $3, telefone = $4,
			     motivo_contato = $5, profissao = $6
			 WHERE id = $7 AND user_id = $8`,
			f.Nome, f.DataNascimento, f.Morada, f.Telefone,
			f.MotivoContato, f.Profissao, f.ID, f.UserID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update formulario: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("formulario not found: %s", f.ID)
	}

	return nil
}

// DeleteByID apaga o formulário do utilizador.
func (r *PostgresFormularioRepo) DeleteByID(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM formularios WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete formulario: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("formulario not found: %s", id)
	}

	return nil
}

// compile-time interface check
var _ FormularioRepository = (*PostgresFormularioRepo)(nil)
