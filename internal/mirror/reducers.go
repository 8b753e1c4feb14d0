package mirror

import (
	"strings"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/notify"
	apperrors "github.com/louisbranch/listmirror/internal/platform/errors"
)

// ActionSet binds notification action tokens to the reducers that consume
// them. Tokens are opaque; only uniqueness matters.
type ActionSet struct {
	DeleteStart   notify.Action
	DeleteSuccess notify.Action
	DeleteError   notify.Action
	UpdateStart   notify.Action
	UpdateEnd     notify.Action
	UpdateError   notify.Action
}

// DefaultActions returns the canonical action tokens used by the daemon.
func DefaultActions() ActionSet {
	return ActionSet{
		DeleteStart:   "record.delete.start",
		DeleteSuccess: "record.delete.success",
		DeleteError:   "record.delete.error",
		UpdateStart:   "record.update.start",
		UpdateEnd:     "record.update.end",
		UpdateError:   "record.update.error",
	}
}

// UpdateStart is the payload of an update start notification.
type UpdateStart struct {
	ID   string      `json:"id"`
	Data RecordPatch `json:"data"`
}

// UpdateEnd is the payload of an update end notification. OnChange is carried
// through for the reducer to apply; the update operation does not apply it.
type UpdateEnd struct {
	ListName string
	Item     Record
	OnChange func(Record) Record
}

// Reducers folds lifecycle notifications into new collection snapshots. The
// zero value is usable with DefaultActions assigned; Diag may stay nil.
type Reducers struct {
	Actions ActionSet
	Diag    diag.Sink
}

// Reduce applies one notification to the snapshot and returns the successor
// snapshot. Unknown actions and notifications without a reducer (update
// start) pass the snapshot through unchanged. Only a malformed delete
// success payload produces an error.
func (r Reducers) Reduce(s Snapshot, n notify.Notification) (Snapshot, error) {
	switch n.Type {
	case r.Actions.DeleteStart:
		id, ok := n.Payload.(string)
		if !ok {
			diag.Notice(r.Diag, "delete start payload is not a record id: %T", n.Payload)
			return s, nil
		}
		return r.DeleteStart(s, id), nil

	case r.Actions.DeleteSuccess:
		rec, ok := n.Payload.(Record)
		if !ok {
			return s, apperrors.New(apperrors.CodeRecordMalformed, "delete success payload must be a record")
		}
		return r.DeleteSuccess(s, rec)

	case r.Actions.DeleteError:
		rerr, ok := n.Payload.(*notify.RemoteError)
		if !ok {
			diag.Notice(r.Diag, "delete error payload is not a remote error: %T", n.Payload)
			return s, nil
		}
		return r.DeleteError(s, rerr), nil

	case r.Actions.UpdateEnd:
		payload, ok := n.Payload.(UpdateEnd)
		if !ok {
			diag.Notice(r.Diag, "update end payload is not an update end: %T", n.Payload)
			return s, nil
		}
		return r.UpdateEnd(s, payload), nil

	case r.Actions.UpdateError:
		rerr, ok := n.Payload.(*notify.RemoteError)
		if !ok {
			diag.Notice(r.Diag, "update error payload is not a remote error: %T", n.Payload)
			return s, nil
		}
		return r.UpdateError(s, rerr), nil
	}

	return s, nil
}

// DeleteStart tracks a new delete attempt for the id. Re-requesting an id
// already tracked returns a content-identical snapshot with a fresh
// identity; the entry is never duplicated. An id absent from Records is
// tolerated and tracked with a placeholder record carrying only the id.
func (r Reducers) DeleteStart(s Snapshot, id string) Snapshot {
	out := s.Clone()
	if _, ok := findRecord(out.Deleting, id); ok {
		return out
	}
	rec, ok := findRecord(out.Records, id)
	if !ok {
		diag.Notice(r.Diag, "delete start for id %q not present in records", id)
		rec = Record{ID: id}
	}
	out.Deleting = append(out.Deleting, rec)
	return out
}

// DeleteSuccess removes the record from Records and Deleting and clears the
// delete error. The record must carry an id; removal of an id that is no
// longer present is a tolerated no-op.
func (r Reducers) DeleteSuccess(s Snapshot, rec Record) (Snapshot, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return s, apperrors.New(apperrors.CodeRecordMalformed, "delete success payload requires a record id")
	}
	if _, ok := findRecord(s.Records, rec.ID); !ok {
		diag.Notice(r.Diag, "delete success for id %q not present in records", rec.ID)
	}
	out := s.Clone()
	out.Records = filterRecords(out.Records, rec.ID)
	out.Deleting = filterRecords(out.Deleting, rec.ID)
	out.Errors.Delete = nil
	return out, nil
}

// DeleteError records the normalized failure and clears Deleting entirely,
// regardless of which entity failed.
func (r Reducers) DeleteError(s Snapshot, rerr *notify.RemoteError) Snapshot {
	out := s.Clone()
	out.Deleting = []Record{}
	out.Errors.Delete = rerr
	return out
}

// UpdateEnd replaces the matching record's content, applying the
// passed-through OnChange transform when set. Which ids are present never
// changes; a missing id is a tolerated no-op.
func (r Reducers) UpdateEnd(s Snapshot, payload UpdateEnd) Snapshot {
	out := s.Clone()
	replaced := false
	for i, rec := range out.Records {
		if rec.ID != payload.Item.ID {
			continue
		}
		item := payload.Item.Clone()
		if payload.OnChange != nil {
			item = payload.OnChange(item)
		}
		out.Records[i] = item
		replaced = true
		break
	}
	if !replaced {
		diag.Notice(r.Diag, "update end for id %q not present in %s", payload.Item.ID, payload.ListName)
	}
	out.Errors.Update = nil
	return out
}

// UpdateError records the normalized failure. Unlike DeleteError there is no
// collection-wide reset.
func (r Reducers) UpdateError(s Snapshot, rerr *notify.RemoteError) Snapshot {
	out := s.Clone()
	out.Errors.Update = rerr
	return out
}
