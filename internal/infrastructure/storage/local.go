// Package storage guarda los documentos del expediente (certificados PDF y
// sobres firmados). Dos drivers: disco local y bucket S3.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/onda-do/registro-api/internal/application/workflow"
)

// LocalStore implementa workflow.DocumentStore sobre el sistema de archivos.
type LocalStore struct {
	root string
}

// NewLocalStore construye el almacén local, creando la raíz si no existe.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: ruta raíz vacía")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear raíz %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

var _ workflow.DocumentStore = (*LocalStore)(nil)

// Upload escribe el documento y devuelve su ruta de referencia (la key).
func (s *LocalStore) Upload(_ context.Context, key string, content []byte, _ string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage: crear directorio: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	return key, nil
}

func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat %s: %w", key, err)
	}
	return true, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: eliminar %s: %w", key, err)
	}
	return nil
}

// resolve mapea la key a una ruta bajo la raíz, rechazando escapes con "..".
func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("storage: key inválida: %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
