// Package mutation implements the delete and update operation lifecycles:
// each operation wraps one remote call with start / success / error
// notifications and returns the same normalized data the notifications
// carry. Operations never mutate collection state; the reducers in the
// mirror package do that from the emitted notifications.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/notify"
	apperrors "github.com/louisbranch/listmirror/internal/platform/errors"
	"github.com/louisbranch/listmirror/internal/remote"
)

// DeleteAPI performs the remote delete call for one record.
type DeleteAPI func(ctx context.Context, id string) (mirror.Record, error)

// DeleteConfig wires one delete operation.
type DeleteConfig struct {
	Dispatch      notify.Dispatcher
	API           DeleteAPI
	StartAction   notify.Action
	SuccessAction notify.Action
	ErrorAction   notify.Action
	Diag          diag.Sink
}

// DeleteResult is the outcome of one delete attempt. Exactly one of Record
// and Err is meaningful: Err is nil on success, and on failure it is the
// same value emitted as the error notification payload.
type DeleteResult struct {
	Record mirror.Record
	Err    *notify.RemoteError
}

// DeleteOperation drives one delete attempt through its lifecycle.
type DeleteOperation func(ctx context.Context, id string) (DeleteResult, error)

// NewDelete returns an operation that emits a start notification, performs
// exactly one remote call, and emits a success or error notification. Remote
// failures are absorbed into the result; only the empty-id precondition
// returns a non-nil error, before anything is dispatched.
func NewDelete(cfg DeleteConfig) DeleteOperation {
	return newDelete(cfg, time.Now)
}

func newDelete(cfg DeleteConfig, clock func() time.Time) DeleteOperation {
	return func(ctx context.Context, id string) (DeleteResult, error) {
		if cfg.Dispatch == nil {
			return DeleteResult{}, fmt.Errorf("dispatcher is required")
		}
		if cfg.API == nil {
			return DeleteResult{}, fmt.Errorf("delete api is required")
		}
		if strings.TrimSpace(id) == "" {
			return DeleteResult{}, apperrors.New(apperrors.CodeRecordIDEmpty, "record id is required")
		}

		cfg.Dispatch.Dispatch(notify.Notification{Type: cfg.StartAction, Payload: id})

		result, err := cfg.API(ctx, id)
		if err != nil {
			rerr := normalizeRemoteError(err, clock())
			cfg.Dispatch.Dispatch(notify.Notification{Type: cfg.ErrorAction, Payload: rerr})
			diag.Notice(cfg.Diag, "delete %q failed: %v", id, rerr)
			return DeleteResult{Err: rerr}, nil
		}

		// The notification carries an id-normalized copy; the caller gets
		// the raw API result.
		payload := result.Clone()
		if payload.ID == "" {
			payload.ID = id
		}
		cfg.Dispatch.Dispatch(notify.Notification{Type: cfg.SuccessAction, Payload: payload})
		return DeleteResult{Record: result}, nil
	}
}

// normalizeRemoteError converts a failed remote call into the canonical
// error shape shared by the returned result and the error notification.
func normalizeRemoteError(err error, date time.Time) *notify.RemoteError {
	data := notify.ErrorData{Name: "Error", Message: err.Error()}
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		data = notify.ErrorData{
			Name:    apiErr.Name,
			Message: apiErr.Message,
			Status:  apiErr.Status,
			Body:    apiErr.Body,
		}
	}
	return &notify.RemoteError{Date: date.UTC(), Data: data}
}
