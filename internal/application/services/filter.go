package services

import (
	"github.com/taskmaster/board/internal/domain/entities"
	"github.com/taskmaster/board/internal/ports"
)

// FilterRecords keeps the records matching every entry of filter. A scalar
// field matches when its JSON text equals the value; an array field matches
// when any element does.
func FilterRecords(records []entities.Record, filter ports.RecordFilter) []entities.Record {
	if len(filter) == 0 {
		return records
	}

	out := make([]entities.Record, 0, len(records))
	for _, rec := range records {
		if matches(rec, filter) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec entities.Record, filter ports.RecordFilter) bool {
	for field, want := range filter {
		v, ok := rec[field]
		if !ok {
			return false
		}

		if items, isList := v.([]interface{}); isList {
			found := false
			for _, item := range items {
				if entities.IDString(item) == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}

		if entities.IDString(v) != want {
			return false
		}
	}
	return true
}
