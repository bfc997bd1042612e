// Package model define os modelos de domínio.
package model

import "time"

// Formulario representa um registo de formulário pessoal.
// Cada registo pertence a exatamente um utilizador; nenhuma consulta
// atravessa a fronteira do dono.
type Formulario struct {
	ID             string
	UserID         string
	Nome           string
	DataNascimento time.Time
	Morada         string
	Telefone       string
	MotivoContato  string
	Profissao      string
	FotoPerfilURL  *string
	CreatedAt      time.Time
}

// DataNascimentoLayout é o formato ISO usado na API e na base de dados.
const DataNascimentoLayout = "2006-01-02"

// DataNascimentoDisplayLayout é o formato de exibição (dd/mm/aaaa).
const DataNascimentoDisplayLayout = "02/01/2006"
