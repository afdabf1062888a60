package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"travel-records-service/internal/domain/entity"
)

// SearchAllFields makes SearchByField look at every field of a record
const SearchAllFields = "all"

// SearchByField returns the records of the named kind whose field contains
// value, ignoring case. field may use either spelling, or "all" to match any
// field. A record without the field never matches.
func (s *RecordService) SearchByField(recordType, field, value string) ([]entity.Record, error) {
	kind, err := entity.ParseKind(recordType)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(value)
	name := entity.InternalFieldName(kind, field)
	matches := make([]entity.Record, 0)
	for _, r := range s.records {
		if r.RecordKind() != kind {
			continue
		}
		fields := r.Fields()
		if strings.EqualFold(field, SearchAllFields) {
			for _, v := range fields {
				if containsFold(v, needle) {
					matches = append(matches, r)
					break
				}
			}
			continue
		}
		if v, ok := fields[name]; ok && containsFold(v, needle) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// AdvancedSearch returns every record, of any kind, whose fields equal all of
// the criteria. Integer fields compare numerically; everything else compares
// as exact text. Empty criteria match the whole set.
func (s *RecordService) AdvancedSearch(criteria map[string]any) []entity.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]entity.Record, 0)
	for _, r := range s.records {
		if matchesAll(r, criteria) {
			matches = append(matches, r)
		}
	}
	return matches
}

func matchesAll(r entity.Record, criteria map[string]any) bool {
	fields := r.Fields()
	for key, want := range criteria {
		got, ok := fields[entity.InternalFieldName(r.RecordKind(), key)]
		if !ok || !equalValue(got, want) {
			return false
		}
	}
	return true
}

func containsFold(v any, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(fmt.Sprint(v)), lowerNeedle)
}

func equalValue(got, want any) bool {
	if n, ok := got.(int); ok {
		w, ok := asInt(want)
		return ok && w == n
	}
	return fmt.Sprint(got) == stringValue(want)
}

func stringValue(v any) string {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	return fmt.Sprint(v)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
