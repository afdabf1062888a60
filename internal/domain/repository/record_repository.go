package repository

import (
	"time"

	"travel-records-service/internal/domain/entity"
)

// DataFileInfo describes the durable record file
type DataFileInfo struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// RecordPersister defines the durable storage operations for the record set.
// Load never fails hard: corrupted content yields whatever could be salvaged
// together with an error matching entity.ErrLoadCorruption.
type RecordPersister interface {
	Load() ([]entity.Record, error)
	Save(records []entity.Record) error
	ReadFile(path string) ([]entity.Record, error)
	Export(path string, records []entity.Record) error
	Stat() (DataFileInfo, error)
	Path() string
}
