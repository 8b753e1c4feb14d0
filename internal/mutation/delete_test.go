package mutation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/notify"
	apperrors "github.com/louisbranch/listmirror/internal/platform/errors"
	"github.com/louisbranch/listmirror/internal/remote"
)

type recordingDispatcher struct {
	notifications []notify.Notification
}

func (d *recordingDispatcher) Dispatch(n notify.Notification) {
	d.notifications = append(d.notifications, n)
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestDeleteSuccessLifecycle(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	op := newDelete(DeleteConfig{
		Dispatch:      dispatcher,
		API:           func(ctx context.Context, id string) (mirror.Record, error) { return mirror.Record{Name: "a"}, nil },
		StartAction:   "record.delete.start",
		SuccessAction: "record.delete.success",
		ErrorAction:   "record.delete.error",
	}, fixedClock)

	result, err := op(context.Background(), "1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.Err != nil {
		t.Fatalf("expected no remote failure, got %+v", result.Err)
	}
	if result.Record.Name != "a" {
		t.Fatalf("caller must receive the raw API result, got %+v", result.Record)
	}
	if result.Record.ID != "" {
		t.Fatalf("raw result must not be id-normalized, got %+v", result.Record)
	}

	if len(dispatcher.notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(dispatcher.notifications))
	}
	start := dispatcher.notifications[0]
	if start.Type != "record.delete.start" {
		t.Fatalf("expected start first, got %s", start.Type)
	}
	if got, ok := start.Payload.(string); !ok || got != "1" {
		t.Fatalf("start payload must be the id, got %#v", start.Payload)
	}
	success := dispatcher.notifications[1]
	if success.Type != "record.delete.success" {
		t.Fatalf("expected success second, got %s", success.Type)
	}
	rec, ok := success.Payload.(mirror.Record)
	if !ok {
		t.Fatalf("success payload must be a record, got %#v", success.Payload)
	}
	if rec.ID != "1" || rec.Name != "a" {
		t.Fatalf("success payload must be id-normalized, got %+v", rec)
	}
}

func TestDeleteRemoteFailureLifecycle(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	apiErr := &remote.APIError{Name: "NotFound", Message: "no such record", Status: 404, Body: `{"name":"NotFound"}`}
	op := newDelete(DeleteConfig{
		Dispatch:      dispatcher,
		API:           func(ctx context.Context, id string) (mirror.Record, error) { return mirror.Record{}, apiErr },
		StartAction:   "record.delete.start",
		SuccessAction: "record.delete.success",
		ErrorAction:   "record.delete.error",
	}, fixedClock)

	result, err := op(context.Background(), "1")
	if err != nil {
		t.Fatalf("remote failures must not surface as errors, got %v", err)
	}
	if result.Err == nil {
		t.Fatal("expected a normalized remote failure")
	}
	if got := result.Err.Data; got.Name != "NotFound" || got.Message != "no such record" || got.Status != 404 {
		t.Fatalf("unexpected normalized failure: %+v", got)
	}
	if !result.Err.Date.Equal(fixedClock()) {
		t.Fatalf("expected failure dated by the clock, got %v", result.Err.Date)
	}

	if len(dispatcher.notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(dispatcher.notifications))
	}
	errNotification := dispatcher.notifications[1]
	if errNotification.Type != "record.delete.error" {
		t.Fatalf("expected error notification second, got %s", errNotification.Type)
	}
	if errNotification.Payload != result.Err {
		t.Fatal("error notification payload and returned failure must be the same value")
	}
}

func TestDeleteNormalizesPlainErrors(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	op := newDelete(DeleteConfig{
		Dispatch:    dispatcher,
		API:         func(ctx context.Context, id string) (mirror.Record, error) { return mirror.Record{}, errors.New("wire cut") },
		ErrorAction: "record.delete.error",
	}, fixedClock)

	result, err := op(context.Background(), "1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := result.Err.Data; got.Name != "Error" || got.Message != "wire cut" || got.Status != 0 {
		t.Fatalf("unexpected fallback normalization: %+v", got)
	}
}

func TestDeleteEmptyIDDispatchesNothing(t *testing.T) {
	for _, id := range []string{"", "   "} {
		dispatcher := &recordingDispatcher{}
		op := newDelete(DeleteConfig{
			Dispatch: dispatcher,
			API: func(ctx context.Context, id string) (mirror.Record, error) {
				return mirror.Record{}, fmt.Errorf("must not be called")
			},
		}, fixedClock)

		_, err := op(context.Background(), id)
		if err == nil {
			t.Fatalf("expected precondition error for id %q", id)
		}
		if got := apperrors.GetCode(err); got != apperrors.CodeRecordIDEmpty {
			t.Fatalf("expected code %s, got %s", apperrors.CodeRecordIDEmpty, got)
		}
		if len(dispatcher.notifications) != 0 {
			t.Fatalf("no notifications may be dispatched for id %q, got %d", id, len(dispatcher.notifications))
		}
	}
}

func TestDeleteRequiresCollaborators(t *testing.T) {
	op := newDelete(DeleteConfig{}, fixedClock)
	if _, err := op(context.Background(), "1"); err == nil {
		t.Fatal("expected error without a dispatcher")
	}

	op = newDelete(DeleteConfig{Dispatch: &recordingDispatcher{}}, fixedClock)
	if _, err := op(context.Background(), "1"); err == nil {
		t.Fatal("expected error without an api")
	}
}
