package reconcile

// Snapshot is the in-memory working copy of one device's inventory for one event.
// It is loaded once and never re-queried; the planner mutates it in place so later
// observations see the effects of earlier ones.
type Snapshot struct {
	records []*Record
}

// NewSnapshot builds a snapshot from loaded records, keeping their order.
func NewSnapshot(records []Record) *Snapshot {
	s := &Snapshot{records: make([]*Record, 0, len(records))}
	for i := range records {
		r := records[i]
		s.records = append(s.records, &r)
	}
	return s
}

// Records returns the live records in snapshot order.
func (s *Snapshot) Records() []*Record {
	return s.records
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Append adds a record at the end of the snapshot.
func (s *Snapshot) Append(r *Record) {
	s.records = append(s.records, r)
}

// Get returns the record with the given id, or nil.
func (s *Snapshot) Get(id string) *Record {
	for _, r := range s.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Remove drops the record with the given id, preserving the order of the rest.
func (s *Snapshot) Remove(id string) bool {
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}
