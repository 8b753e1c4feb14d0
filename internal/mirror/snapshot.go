package mirror

import "github.com/louisbranch/listmirror/internal/notify"

// MutationErrors holds the last normalized error per mutation kind, or nil
// when the most recent attempt of that kind succeeded.
type MutationErrors struct {
	Delete *notify.RemoteError `json:"delete,omitempty"`
	Update *notify.RemoteError `json:"update,omitempty"`
}

// Snapshot is one immutable value of the mirrored collection state. Reducers
// never modify a snapshot in place; they return a new one backed by fresh
// slices.
type Snapshot struct {
	// Records is the ordered sequence of mirrored entities.
	Records []Record `json:"records"`
	// Deleting tracks entities currently undergoing a delete attempt, at
	// most one entry per id.
	Deleting []Record `json:"deleting"`
	// Errors carries the last normalized error per mutation kind.
	Errors MutationErrors `json:"errors"`
}

// Clone returns a content-identical snapshot backed by fresh slices.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Records = cloneRecords(s.Records)
	out.Deleting = cloneRecords(s.Deleting)
	return out
}

// Find returns the record with the given id from Records.
func (s Snapshot) Find(id string) (Record, bool) {
	return findRecord(s.Records, id)
}

// IsDeleting reports whether a delete attempt is tracked for the id.
func (s Snapshot) IsDeleting(id string) bool {
	_, ok := findRecord(s.Deleting, id)
	return ok
}

func cloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}

func findRecord(records []Record, id string) (Record, bool) {
	for _, rec := range records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

func filterRecords(records []Record, id string) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.ID != id {
			out = append(out, rec)
		}
	}
	return out
}
