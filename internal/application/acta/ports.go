package acta

import (
	"context"
	"io"

	"github.com/janonimox/actas-api/internal/domain/entity"
	"github.com/janonimox/actas-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con repositorios de períodos y actas atados a ella.
// Crear un acta (resolver período + insertar) y registrar su envío físico son transacciones separadas.
type TxRunner interface {
	RunActas(ctx context.Context, fn func(
		periods repository.PeriodRepository,
		actas repository.ActaRepository,
	) error) error
}

// SignatureStorage guarda la imagen de firma y devuelve la ruta relativa almacenada.
// El caso de uso solo persiste esa ruta; nunca inspecciona los bytes.
type SignatureStorage interface {
	Save(ctx context.Context, filename string, size int64, r io.Reader) (string, error)
	// Remove borra un archivo guardado por Save. Borrar uno inexistente no es error.
	Remove(ctx context.Context, relPath string) error
}

// ActaPDFGenerator genera la versión imprimible del acta.
type ActaPDFGenerator interface {
	GenerateActaPDF(ctx context.Context, a *entity.Acta) ([]byte, error)
}
