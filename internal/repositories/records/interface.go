// Package records persists the local library.
package records

import (
	"context"

	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// Repository is the local record store consumed by the sync engine. Every
// call is individually atomic per record; BulkPut is atomic for the whole
// slice.
type Repository interface {
	LoadAll(ctx context.Context) ([]models.Record, error)
	Put(ctx context.Context, r models.Record) error
	BulkPut(ctx context.Context, rs []models.Record) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
