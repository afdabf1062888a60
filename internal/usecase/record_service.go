package usecase

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/internal/domain/repository"
	"travel-records-service/pkg/logger"
	"travel-records-service/pkg/metrics"
)

// SnapshotPublisher receives a copy of the record set after every durable save
type SnapshotPublisher interface {
	Publish(records []entity.Record)
}

// RecordService owns the in-memory record set. Mutations are serialized and
// each one ends with a write of the whole set through the persister.
type RecordService struct {
	mu        sync.RWMutex
	records   []entity.Record
	store     repository.RecordPersister
	publisher SnapshotPublisher
	loadErr   error
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// Statistics summarises the record set
type Statistics struct {
	Clients           int      `json:"clients"`
	Airlines          int      `json:"airlines"`
	Flights           int      `json:"flights"`
	TotalRecords      int      `json:"total_records"`
	NextID            int      `json:"next_id"`
	UniqueStartCities int      `json:"unique_start_cities"`
	UniqueEndCities   int      `json:"unique_end_cities"`
	StartCities       []string `json:"start_cities"`
	EndCities         []string `json:"end_cities"`
}

// Health reports the state of the service and its data file
type Health struct {
	Status      string
	Records     int
	DataFile    repository.DataFileInfo
	LoadWarning string
}

// ImportResult counts what an import kept and dropped
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// NewRecordService creates the service and loads the existing record set.
// Corrupted content never stops startup; it is logged and kept in LoadError.
func NewRecordService(store repository.RecordPersister, m *metrics.Metrics, log logger.Logger) *RecordService {
	s := &RecordService{
		store:   store,
		metrics: m,
		logger:  log,
	}

	records, err := store.Load()
	if err != nil {
		var lce *entity.LoadCorruptionError
		if errors.As(err, &lce) && lce.Skipped > 0 {
			m.LoadSkipped.Add(float64(lce.Skipped))
		}
		log.Warn("Record file loaded with problems", "path", store.Path(), "error", err)
		s.loadErr = err
	}
	s.records = records
	s.updateGauges()

	log.Info("Record store ready", "path", store.Path(), "records", len(records))
	return s
}

// SetPublisher registers where snapshots go after each save
func (s *RecordService) SetPublisher(p SnapshotPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// LoadError returns the problem found when the record file was loaded, if any
func (s *RecordService) LoadError() error {
	return s.loadErr
}

// Create adds a record built from data, whose Type field selects the kind
func (s *RecordService) Create(data map[string]any) (entity.Record, error) {
	rec, err := entity.FromMap(data)
	if err != nil {
		s.observe("create", err)
		return nil, err
	}
	return s.CreateRecord(rec)
}

// CreateAs adds a record of kind built from data; any Type in data is ignored
func (s *RecordService) CreateAs(kind entity.Kind, data map[string]any) (entity.Record, error) {
	rec, err := entity.FromMapAs(kind, data)
	if err != nil {
		s.observe("create", err)
		return nil, err
	}
	return s.CreateRecord(rec)
}

// CreateRecord adds rec. A zero ID, or one already used by any record, is
// replaced by the next free ID. If only the save fails, the record is kept in
// memory and returned together with a *entity.PersistenceError.
func (s *RecordService) CreateRecord(rec entity.Record) (entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.createLocked(rec)
	s.observe("create", err)
	return created, err
}

func (s *RecordService) createLocked(rec entity.Record) (entity.Record, error) {
	if rec == nil {
		return nil, &entity.ValidationError{Field: "Type", Reason: "record is missing"}
	}
	rec = entity.Normalize(rec)

	if id := rec.RecordID(); id == 0 || s.indexOf(id, "") >= 0 {
		next := NextID(s.records, "")
		if id != 0 {
			s.logger.Info("Record ID already in use, allocating a new one", "requested", id, "allocated", next)
		}
		rec = entity.WithID(rec, next)
	}

	if err := entity.Validate(rec); err != nil {
		return nil, err
	}
	if err := s.checkReferences(rec); err != nil {
		return nil, err
	}

	s.records = append(s.records, rec)
	s.logger.Debug("Record created", "id", rec.RecordID(), "type", rec.RecordKind())
	return rec, s.persistLocked()
}

// Read returns the record with id. An empty kind matches any kind.
func (s *RecordService) Read(id int, kind entity.Kind) (entity.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id, kind)
	if idx < 0 {
		return nil, false
	}
	return s.records[idx], true
}

// ReadAll returns a copy of the records of kind in insertion order. An empty
// kind returns every record.
func (s *RecordService) ReadAll(kind entity.Kind) []entity.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Record, 0, len(s.records))
	for _, r := range s.records {
		if kind == "" || r.RecordKind() == kind {
			out = append(out, r)
		}
	}
	return out
}

// Update merges partial over the record matching id and kind. ID and Type
// cannot be changed. ok is false when no such record exists. A merge that
// fails validation leaves the stored record as it was.
func (s *RecordService) Update(id int, kind entity.Kind, partial map[string]any) (updated entity.Record, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe("update", err) }()

	idx := s.indexOf(id, kind)
	if idx < 0 || kind == "" {
		return nil, false, nil
	}
	current := s.records[idx]

	merged := current.Fields()
	for key, value := range entity.ToInternalKeys(kind, partial) {
		merged[key] = value
	}
	merged["ID"] = current.RecordID()
	merged["Type"] = string(kind)

	updated, err = entity.FromMapAs(kind, merged)
	if err != nil {
		return nil, true, err
	}
	if err = entity.Validate(updated); err != nil {
		return nil, true, err
	}
	if err = s.checkReferences(updated); err != nil {
		return nil, true, err
	}

	s.records[idx] = updated
	s.logger.Debug("Record updated", "id", id, "type", kind)
	return updated, true, s.persistLocked()
}

// Delete removes the record matching id and kind. Deleting a client or an
// airline also removes every flight that references it, in the same save.
// It returns false, without saving, when nothing matched.
func (s *RecordService) Delete(id int, kind entity.Kind) (deleted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe("delete", err) }()

	idx := s.indexOf(id, kind)
	if idx < 0 || kind == "" {
		return false, nil
	}

	kept := make([]entity.Record, 0, len(s.records)-1)
	cascaded := 0
	for i, r := range s.records {
		if i == idx {
			continue
		}
		if f, isFlight := r.(entity.Flight); isFlight && references(f, kind, id) {
			cascaded++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept

	if cascaded > 0 {
		s.metrics.CascadeDeleted.Add(float64(cascaded))
		s.logger.Info("Removed flights referencing deleted record", "id", id, "type", kind, "flights", cascaded)
	}
	return true, s.persistLocked()
}

func references(f entity.Flight, kind entity.Kind, id int) bool {
	switch kind {
	case entity.KindClient:
		return f.ClientID == id
	case entity.KindAirline:
		return f.AirlineID == id
	}
	return false
}

// ClearAll removes every record and saves the empty set
func (s *RecordService) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = []entity.Record{}
	err := s.persistLocked()
	s.observe("clear", err)
	return err
}

// Statistics counts records per kind and collects the distinct flight cities
func (s *RecordService) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Statistics
	starts := make(map[string]struct{})
	ends := make(map[string]struct{})
	for _, r := range s.records {
		switch v := r.(type) {
		case entity.Client:
			st.Clients++
		case entity.Airline:
			st.Airlines++
		case entity.Flight:
			st.Flights++
			starts[v.StartCity] = struct{}{}
			ends[v.EndCity] = struct{}{}
		}
	}
	st.TotalRecords = len(s.records)
	st.NextID = NextID(s.records, "")
	st.StartCities = sortedKeys(starts)
	st.EndCities = sortedKeys(ends)
	st.UniqueStartCities = len(st.StartCities)
	st.UniqueEndCities = len(st.EndCities)
	return st
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export writes the current record set to path without touching the data file
func (s *RecordService) Export(path string) (int, error) {
	snapshot := s.ReadAll("")
	if err := s.store.Export(path, snapshot); err != nil {
		s.observe("export", err)
		return 0, err
	}
	s.observe("export", nil)
	return len(snapshot), nil
}

// Import reads a record file and saves the result in one write. With merge
// the file's records are appended and colliding IDs are reassigned, with
// flight references following the reassignment; otherwise the file replaces
// the set. Flights whose client or airline cannot be found are skipped. A
// missing file imports nothing.
func (s *RecordService) Import(path string, merge bool) (result ImportResult, err error) {
	incoming, loadErr := s.store.ReadFile(path)
	if loadErr != nil {
		var lce *entity.LoadCorruptionError
		if !errors.As(loadErr, &lce) {
			s.observe("import", loadErr)
			return result, loadErr
		}
		if len(incoming) == 0 && lce.Skipped == 0 {
			s.observe("import", loadErr)
			return result, loadErr
		}
		result.Skipped += lce.Skipped
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.observe("import", err) }()

	var base []entity.Record
	if merge {
		base = slices.Clone(s.records)
	}

	used := make(map[int]entity.Kind, len(base)+len(incoming))
	maxID := 0
	for _, r := range base {
		used[r.RecordID()] = r.RecordKind()
		maxID = max(maxID, r.RecordID())
	}
	for _, r := range incoming {
		maxID = max(maxID, r.RecordID())
	}
	assign := func(id int, kind entity.Kind) int {
		if _, taken := used[id]; taken || id <= 0 {
			if maxID < entity.MaxID {
				maxID++
				id = maxID
			} else {
				id = 1
				for used[id] != "" {
					id++
				}
			}
		}
		used[id] = kind
		return id
	}

	remapped := make(map[int]int)
	owners := make([]entity.Record, 0, len(incoming))
	for _, r := range incoming {
		if r.RecordKind() == entity.KindFlight {
			continue
		}
		id := assign(r.RecordID(), r.RecordKind())
		if id != r.RecordID() {
			remapped[r.RecordID()] = id
		}
		owners = append(owners, entity.WithID(r, id))
	}

	next := append(make([]entity.Record, 0, len(base)+len(incoming)), base...)
	ownerIdx := 0
	for _, r := range incoming {
		f, isFlight := r.(entity.Flight)
		if !isFlight {
			next = append(next, owners[ownerIdx])
			ownerIdx++
			continue
		}
		if id, ok := remapped[f.ClientID]; ok {
			f.ClientID = id
		}
		if id, ok := remapped[f.AirlineID]; ok {
			f.AirlineID = id
		}
		if used[f.ClientID] != entity.KindClient || used[f.AirlineID] != entity.KindAirline {
			s.logger.Warn("Skipping imported flight with unknown references",
				"id", f.ID, "clientID", f.ClientID, "airlineID", f.AirlineID)
			result.Skipped++
			continue
		}
		next = append(next, entity.WithID(f, assign(f.ID, entity.KindFlight)))
	}

	result.Imported = len(next) - len(base)
	s.records = next
	s.logger.Info("Imported records", "path", path, "merge", merge, "imported", result.Imported, "skipped", result.Skipped)
	return result, s.persistLocked()
}

// Snapshot returns a copy of every record
func (s *RecordService) Snapshot() []entity.Record {
	return s.ReadAll("")
}

// PublishSnapshot pushes the current set to the publisher, if one is set
func (s *RecordService) PublishSnapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.publisher != nil {
		s.publisher.Publish(slices.Clone(s.records))
	}
}

// Health describes the record count and the data file
func (s *RecordService) Health() (Health, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := Health{Status: "healthy", Records: len(s.records)}
	if s.loadErr != nil {
		h.LoadWarning = s.loadErr.Error()
	}
	// Stat under the lock so a save in progress is never seen mid-rename
	info, err := s.store.Stat()
	if err != nil {
		h.Status = "degraded"
		return h, fmt.Errorf("stat data file: %w", err)
	}
	h.DataFile = info
	return h, nil
}

// indexOf finds the record with id, restricted to kind unless kind is empty
func (s *RecordService) indexOf(id int, kind entity.Kind) int {
	for i, r := range s.records {
		if r.RecordID() == id && (kind == "" || r.RecordKind() == kind) {
			return i
		}
	}
	return -1
}

func (s *RecordService) checkReferences(rec entity.Record) error {
	f, ok := rec.(entity.Flight)
	if !ok {
		return nil
	}
	if s.indexOf(f.ClientID, entity.KindClient) < 0 {
		return &entity.ValidationError{Field: "ClientID", Reason: fmt.Sprintf("Client with ID %d does not exist", f.ClientID)}
	}
	if s.indexOf(f.AirlineID, entity.KindAirline) < 0 {
		return &entity.ValidationError{Field: "AirlineID", Reason: fmt.Sprintf("Airline with ID %d does not exist", f.AirlineID)}
	}
	return nil
}

// persistLocked saves the current set. The caller holds the write lock.
func (s *RecordService) persistLocked() error {
	start := time.Now()
	err := s.store.Save(s.records)
	s.metrics.PersistDuration.Observe(time.Since(start).Seconds())
	s.updateGauges()

	if err != nil {
		s.logger.Error("Record set changed in memory but was not saved", "path", s.store.Path(), "error", err)
		return err
	}
	if s.publisher != nil {
		s.publisher.Publish(slices.Clone(s.records))
	}
	return nil
}

func (s *RecordService) updateGauges() {
	counts := make(map[entity.Kind]int, len(entity.Kinds))
	for _, r := range s.records {
		counts[r.RecordKind()]++
	}
	for _, k := range entity.Kinds {
		s.metrics.Records.WithLabelValues(string(k)).Set(float64(counts[k]))
	}
}

func (s *RecordService) observe(op string, err error) {
	s.metrics.Operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entity.ErrValidation):
		return "invalid"
	case errors.Is(err, entity.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, entity.ErrPersistence):
		return "not_durable"
	case errors.Is(err, entity.ErrLoadCorruption):
		return "corrupt"
	}
	return "error"
}
