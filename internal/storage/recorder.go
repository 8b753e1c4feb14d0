package storage

import (
	"context"
	"time"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/notify"
)

// Recorder journals every notification before forwarding it to the next
// dispatcher. Journal failures are diagnostic only; the lifecycle never
// stalls on persistence.
type Recorder struct {
	journal JournalStore
	next    notify.Dispatcher
	sink    diag.Sink
	clock   func() time.Time
}

// NewRecorder creates a journaling dispatcher in front of next.
func NewRecorder(journal JournalStore, next notify.Dispatcher, sink diag.Sink) *Recorder {
	return &Recorder{
		journal: journal,
		next:    next,
		sink:    sink,
		clock:   time.Now,
	}
}

// Dispatch implements notify.Dispatcher.
func (r *Recorder) Dispatch(n notify.Notification) {
	if r.journal != nil {
		payload, err := mirror.PayloadJSON(n.Payload)
		if err != nil {
			diag.Notice(r.sink, "encode %s payload: %v", n.Type, err)
		}
		rec := NotificationRecord{
			Type:        string(n.Type),
			RecordID:    mirror.PayloadRecordID(n.Payload),
			Timestamp:   r.clock().UTC(),
			PayloadJSON: payload,
		}
		if err := r.journal.AppendNotification(context.Background(), rec); err != nil {
			diag.Notice(r.sink, "journal %s: %v", n.Type, err)
		}
	}
	if r.next != nil {
		r.next.Dispatch(n)
	}
}
