package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/internal/domain/repository"
	"travel-records-service/pkg/logger"
)

// BackupSuffix is appended to the data file path while a save is in flight
const BackupSuffix = ".bak"

// FileStore persists the whole record set to a single file
type FileStore struct {
	fs     afero.Fs
	path   string
	codec  codec
	logger logger.Logger
}

// NewFileStore creates a file store on fs. The parent directory of path is
// created when missing.
func NewFileStore(fs afero.Fs, path string, format Format, log logger.Logger) (*FileStore, error) {
	c, err := codecFor(format)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	return &FileStore{
		fs:     fs,
		path:   path,
		codec:  c,
		logger: log.With("component", "file_store", "path", path),
	}, nil
}

var _ repository.RecordPersister = (*FileStore)(nil)

// Path returns the data file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the data file
func (s *FileStore) Load() ([]entity.Record, error) {
	return s.ReadFile(s.path)
}

// ReadFile decodes a record file in the store's format. A missing file is an
// empty set. Unreadable content degrades to the records that could be
// salvaged and an error matching entity.ErrLoadCorruption.
func (s *FileStore) ReadFile(path string) ([]entity.Record, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("Record file not found, starting with an empty set", "file", path)
			return []entity.Record{}, nil
		}
		s.logger.Warn("Could not read record file, starting with an empty set", "file", path, "error", err)
		return []entity.Record{}, &entity.LoadCorruptionError{Path: path, Err: err}
	}

	result, err := s.codec.decode(data)
	if err != nil {
		s.logger.Warn("Record file is not parseable, starting with an empty set", "file", path, "error", err)
		return []entity.Record{}, &entity.LoadCorruptionError{Path: path, Err: err}
	}

	records := make([]entity.Record, 0, len(result.records))
	skipped := result.skipped
	seen := make(map[int]bool, len(result.records))
	for _, rec := range result.records {
		if seen[rec.RecordID()] {
			skipped = append(skipped, fmt.Errorf("duplicate ID %d", rec.RecordID()))
			continue
		}
		seen[rec.RecordID()] = true
		records = append(records, rec)
	}

	for _, skipErr := range skipped {
		s.logger.Warn("Skipping invalid record entry", "file", path, "error", skipErr)
	}
	if len(skipped) > 0 {
		return records, &entity.LoadCorruptionError{Path: path, Skipped: len(skipped), Err: errors.Join(skipped...)}
	}

	s.logger.Debug("Loaded records", "file", path, "count", len(records))
	return records, nil
}

// Save writes the record set. The previous file is moved to the backup path
// first and put back if the write fails, so path always holds a complete set.
func (s *FileStore) Save(records []entity.Record) error {
	data, err := s.codec.encode(records)
	if err != nil {
		return &entity.PersistenceError{Op: "encode", Path: s.path, Err: err}
	}

	backup := s.path + BackupSuffix
	hadPrevious, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return &entity.PersistenceError{Op: "stat", Path: s.path, Err: err}
	}

	if hadPrevious {
		if stale, _ := afero.Exists(s.fs, backup); stale {
			if err := s.fs.Remove(backup); err != nil {
				return &entity.PersistenceError{Op: "remove stale backup", Path: backup, Err: err}
			}
		}
		if err := s.fs.Rename(s.path, backup); err != nil {
			return &entity.PersistenceError{Op: "backup", Path: s.path, Err: err}
		}
	}

	if err := s.writeFile(s.path, data); err != nil {
		return s.restore(hadPrevious, backup, err)
	}

	if hadPrevious {
		if err := s.fs.Remove(backup); err != nil {
			s.logger.Warn("Could not remove backup file", "backup", backup, "error", err)
		}
	}
	s.logger.Debug("Saved records", "count", len(records), "bytes", len(data))
	return nil
}

func (s *FileStore) restore(hadPrevious bool, backup string, cause error) error {
	s.logger.Error("Writing record file failed", "error", cause)

	if exists, _ := afero.Exists(s.fs, s.path); exists {
		if err := s.fs.Remove(s.path); err != nil {
			s.logger.Error("Could not remove partial record file", "error", err)
		}
	}
	if !hadPrevious {
		return &entity.PersistenceError{Op: "write", Path: s.path, Err: cause}
	}

	if err := s.fs.Rename(backup, s.path); err != nil {
		s.logger.Error("Could not restore record file from backup", "backup", backup, "error", err)
		return &entity.PersistenceError{Op: "write", Path: s.path, Err: errors.Join(cause, err)}
	}
	s.logger.Warn("Previous record file restored from backup", "backup", backup)
	return &entity.PersistenceError{Op: "write", Path: s.path, Restored: true, Err: cause}
}

// Export writes records to another path in the store's format. It does not
// touch the data file.
func (s *FileStore) Export(path string, records []entity.Record) error {
	data, err := s.codec.encode(records)
	if err != nil {
		return &entity.PersistenceError{Op: "encode", Path: path, Err: err}
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return &entity.PersistenceError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if err := s.writeFile(path, data); err != nil {
		return &entity.PersistenceError{Op: "export", Path: path, Err: err}
	}
	s.logger.Info("Exported records", "file", path, "count", len(records))
	return nil
}

// Stat reports whether the data file exists and its size
func (s *FileStore) Stat() (repository.DataFileInfo, error) {
	info := repository.DataFileInfo{Path: s.path}
	fi, err := s.fs.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return info, nil
		}
		return info, err
	}
	info.Exists = true
	info.Size = fi.Size()
	info.ModTime = fi.ModTime()
	return info, nil
}

func (s *FileStore) writeFile(path string, data []byte) error {
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
