// Package mirror holds the in-memory mirror of the remote record collection:
// the snapshot type and the pure reducers that fold mutation lifecycle
// notifications into new snapshots.
package mirror

// Record is one entity of the mirrored collection. IDs are unique across the
// collection at all times.
type Record struct {
	ID    string            `json:"id"`
	Name  string            `json:"name,omitempty"`
	Kind  string            `json:"kind,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Clone returns a copy of the record with its own attrs map.
func (r Record) Clone() Record {
	out := r
	if r.Attrs != nil {
		out.Attrs = make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

// RecordPatch describes a partial update to a record. Unset fields leave the
// record untouched.
type RecordPatch struct {
	Name  *string           `json:"name,omitempty"`
	Kind  *string           `json:"kind,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// IsEmpty reports whether the patch sets no fields.
func (p RecordPatch) IsEmpty() bool {
	return p.Name == nil && p.Kind == nil && len(p.Attrs) == 0
}

// Apply returns a copy of rec with the patch fields applied. Patch attrs are
// merged over existing attrs.
func (p RecordPatch) Apply(rec Record) Record {
	out := rec.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Kind != nil {
		out.Kind = *p.Kind
	}
	if len(p.Attrs) > 0 {
		if out.Attrs == nil {
			out.Attrs = make(map[string]string, len(p.Attrs))
		}
		for k, v := range p.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}
