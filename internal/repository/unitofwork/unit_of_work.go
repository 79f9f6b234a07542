package unitofwork

import (
	"context"

	"ai-study-assist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AnnotationRepository() contract.AnnotationRepository
}

// RepositoryFactory hands out a fresh UnitOfWork per service call.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
