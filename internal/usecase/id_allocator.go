package usecase

import "travel-records-service/internal/domain/entity"

// NextID returns one more than the largest ID among records of kind, or
// among every record when kind is empty. An empty set yields 1. Once the
// largest ID reaches entity.MaxID the lowest unused ID is returned instead.
//
// Creation always uses the global form so IDs stay unique across kinds.
func NextID(records []entity.Record, kind entity.Kind) int {
	maxID := 0
	for _, r := range records {
		if kind != "" && r.RecordKind() != kind {
			continue
		}
		if r.RecordID() > maxID {
			maxID = r.RecordID()
		}
	}
	if maxID < entity.MaxID {
		return maxID + 1
	}
	return lowestFreeID(records, kind)
}

func lowestFreeID(records []entity.Record, kind entity.Kind) int {
	used := make(map[int]struct{}, len(records))
	for _, r := range records {
		if kind == "" || r.RecordKind() == kind {
			used[r.RecordID()] = struct{}{}
		}
	}
	id := 1
	for {
		if _, taken := used[id]; !taken {
			return id
		}
		id++
	}
}
