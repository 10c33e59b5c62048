package logs

import (
	"context"
	"time"

	"savelog/internal/domain"
)

// LogRepositoryInterface — only the methods the logs service uses
type LogRepositoryInterface interface {
	Create(ctx context.Context, l *domain.Log) error
	GetByFilename(ctx context.Context, filename string) (*domain.Log, error)
	GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Log, error)
	ListPublic(ctx context.Context) ([]*domain.Log, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Log, error)
	ListExpired(ctx context.Context, now time.Time) ([]*domain.Log, error)
	ListAll(ctx context.Context) ([]*domain.Log, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	DeleteByOwner(ctx context.Context, ownerID int64) (int64, error)
}

// BlobStoreInterface abstracts the physical file area backing the records.
type BlobStoreInterface interface {
	Write(name string, content []byte) error
	Read(name string) ([]byte, error)
	Exists(name string) (bool, error)
	Remove(name string) error
}
