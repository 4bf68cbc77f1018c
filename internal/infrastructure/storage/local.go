// Package storage guarda las imágenes de firma escaneada en disco local.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/domain"
)

var _ acta.SignatureStorage = (*Local)(nil)

// allowed extensión del archivo → tipo MIME esperado al inspeccionar el contenido.
var allowed = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Local escribe en Dir con nombres aleatorios y devuelve la ruta relativa "firmas/<uuid>.<ext>".
type Local struct {
	dir      string
	maxBytes int64
}

// NewLocal crea el directorio si no existe.
func NewLocal(dir string, maxBytes int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &Local{dir: dir, maxBytes: maxBytes}, nil
}

// Save valida extensión, tamaño y contenido antes de escribir.
func (s *Local) Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowed[ext]
	if !ok {
		return "", fmt.Errorf("%w: formato de firma no permitido %q (png, jpg, jpeg, webp)", domain.ErrInvalidInput, ext)
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", fmt.Errorf("%w: la firma supera %d bytes", domain.ErrInvalidInput, s.maxBytes)
	}

	// Lee un byte más del máximo para detectar archivos que mienten sobre su tamaño.
	limit := s.maxBytes
	if limit <= 0 {
		limit = size
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("storage: leer firma: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: la firma supera %d bytes", domain.ErrInvalidInput, limit)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: archivo de firma vacío", domain.ErrInvalidInput)
	}
	if detected := mimetype.Detect(data); !detected.Is(want) {
		return "", fmt.Errorf("%w: el contenido (%s) no corresponde a %s", domain.ErrInvalidInput, detected.String(), ext)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: escribir firma: %w", err)
	}
	return filepath.ToSlash(filepath.Join(filepath.Base(s.dir), name)), nil
}

// Remove elimina la firma indicada por la ruta relativa devuelta por Save.
func (s *Local) Remove(ctx context.Context, relPath string) error {
	name, err := baseName(relPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: eliminar firma: %w", err)
	}
	return nil
}

// Open abre una firma guardada a partir de la ruta relativa devuelta por Save.
func (s *Local) Open(relPath string) (io.ReadCloser, error) {
	name, err := baseName(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// ReadAll lee la firma completa (la usa el generador de PDF).
func (s *Local) ReadAll(relPath string) ([]byte, error) {
	rc, err := s.Open(relPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func baseName(relPath string) (string, error) {
	name := filepath.Base(filepath.FromSlash(relPath))
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: ruta de firma inválida", domain.ErrInvalidInput)
	}
	return name, nil
}
