package record

import (
	"cmp"
	"slices"
)

// SortCreationDate sorts by the store-assigned creation date.
const SortCreationDate = "creationDate"

// Sort orders query results by Key, which is SortCreationDate or a field
// name.
type Sort struct {
	Key       string
	Ascending bool
}

// Query selects records of Type. When Field is set, only records whose
// reference or field named Field equals Equals match. Limit caps the result
// after sorting; zero means no limit.
type Query struct {
	Type   string
	Field  string
	Equals string
	Sort   Sort
	Limit  int
}

// Matches reports whether r is selected by q.
func (q Query) Matches(r Record) bool {
	if r.Type != q.Type {
		return false
	}
	if q.Field == "" {
		return true
	}
	if ref, ok := r.References[q.Field]; ok {
		return ref.RecordName == q.Equals
	}
	v, ok := r.Fields[q.Field]
	return ok && v == q.Equals
}

// Apply filters, sorts and limits records in place of a backend that can not
// do so natively.
func (q Query) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}

	SortRecords(out, q.Sort)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// SortRecords sorts records by s. Records without a creation date sort before
// dated ones, and ties fall back to Name so the order is stable.
func SortRecords(records []Record, s Sort) {
	key := s.Key
	if key == "" {
		key = SortCreationDate
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		var c int
		if key == SortCreationDate {
			c = compareDates(a, b)
		} else {
			c = cmp.Compare(a.Fields[key], b.Fields[key])
		}
		if c == 0 {
			c = cmp.Compare(a.Name, b.Name)
		}
		if !s.Ascending {
			c = -c
		}
		return c
	})
}

func compareDates(a, b Record) int {
	switch {
	case a.CreationDate == nil && b.CreationDate == nil:
		return 0
	case a.CreationDate == nil:
		return -1
	case b.CreationDate == nil:
		return 1
	default:
		return a.CreationDate.Compare(*b.CreationDate)
	}
}
