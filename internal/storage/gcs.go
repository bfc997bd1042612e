package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSStorage implementa ObjectStorage sobre o Google Cloud Storage.
type GCSStorage struct {
	client        *storage.Client
	bucketName    string
	publicBaseURL string
}

// NewGCSStorage cria um GCSStorage ligado ao bucket indicado.
// publicBaseURL é a base das URLs públicas (sem barra final).
func NewGCSStorage(ctx context.Context, bucketName, publicBaseURL string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("while creating GCS client: %w", err)
	}

	return &GCSStorage{
		client:        client,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Upload grava o conteúdo do reader no caminho indicado dentro do bucket.
func (s *GCSStorage) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) error {
	w := s.client.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object %q: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %q: %w", objectPath, err)
	}

	return nil
}

// Delete remove o objeto no caminho indicado.
func (s *GCSStorage) Delete(ctx context.Context, objectPath string) error {
	if err := s.client.Bucket(s.bucketName).Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %q: %w", objectPath, err)
	}
	return nil
}

// PublicURL devolve a URL pública do objeto no caminho indicado.
func (s *GCSStorage) PublicURL(objectPath string) string {
	return s.publicBaseURL + "/" + objectPath
}

// Close liberta o cliente GCS.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// compile-time interface check
var _ ObjectStorage = (*GCSStorage)(nil)
