package repository

import (
	"context"

	"travel-records-service/internal/domain/entity"
)

// RecordMirror defines a secondary copy of the record set kept in an external
// database. Sync replaces the mirrored content with the given snapshot.
type RecordMirror interface {
	Name() string
	Sync(ctx context.Context, records []entity.Record) error
}
