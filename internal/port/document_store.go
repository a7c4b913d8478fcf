package port

import (
	"context"

	"github.com/google/uuid"

	"docsight/internal/domain"
)

// DocumentStore defines the contract for document record storage.
type DocumentStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.ParseStatus, parseError string) error
	AttachResult(ctx context.Context, docID uuid.UUID, sourcePath string, parsed *domain.NormalizedDocument) error
	Delete(ctx context.Context, docID uuid.UUID) error
}
