// Package storage fornece o armazenamento de objetos das fotos de perfil.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStorage é a interface do bucket de fotos de perfil.
type ObjectStorage interface {
	// Upload grava o conteúdo do reader no caminho indicado dentro do bucket.
	Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) error
	// Delete remove o objeto no caminho indicado. Usado na compensação
	// quando a escrita na base de dados falha depois de um upload.
	Delete(ctx context.Context, objectPath string) error
	// PublicURL devolve a URL pública do objeto no caminho indicado.
	PublicURL(objectPath string) string
}

// RandomFilename gera um nome de ficheiro aleatório preservando a extensão
// do nome original.
func RandomFilename(original string) string {
	ext := strings.ToLower(path.Ext(original))
	return uuid.New().String() + ext
}

// ObjectPath monta o caminho do objeto com namespace do utilizador:
// "<userID>/<filename>".
func ObjectPath(userID, filename string) string {
	return fmt.Sprintf("%s/%s", userID, filename)
}
