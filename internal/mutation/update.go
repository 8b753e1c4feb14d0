package mutation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/notify"
	apperrors "github.com/louisbranch/listmirror/internal/platform/errors"
)

// UpdateAPI performs the remote update call for one record.
type UpdateAPI func(ctx context.Context, id string, patch mirror.RecordPatch) (mirror.Record, error)

// UpdateConfig wires one update operation.
type UpdateConfig struct {
	// ListName names the mirrored list in diagnostics and precondition
	// failures.
	ListName string
	Dispatch notify.Dispatcher
	API      UpdateAPI

	StartAction notify.Action
	EndAction   notify.Action
	ErrorAction notify.Action

	// HasSocket marks that a real-time channel keeps the mirror
	// synchronized; the end notification is skipped on success to avoid a
	// redundant state write.
	HasSocket bool
	// OnChange is passed through in the end notification for the reducer
	// to apply; the operation never applies it.
	OnChange func(mirror.Record) mirror.Record

	Diag diag.Sink
}

// UpdateResult is the outcome of one update attempt. Err is nil on success;
// on failure it is the same value emitted as the error notification payload.
type UpdateResult struct {
	Record mirror.Record
	Err    *notify.RemoteError
}

// UpdateOperation drives one update attempt through its lifecycle.
type UpdateOperation func(ctx context.Context, id string, patch mirror.RecordPatch) (UpdateResult, error)

// NewUpdate returns an operation that emits a start notification, performs
// exactly one remote call, and on success emits an end notification unless
// HasSocket is set. Remote failures are absorbed into the result; only the
// empty-id and empty-patch preconditions return a non-nil error, before
// anything is dispatched.
func NewUpdate(cfg UpdateConfig) UpdateOperation {
	return newUpdate(cfg, time.Now)
}

func newUpdate(cfg UpdateConfig, clock func() time.Time) UpdateOperation {
	return func(ctx context.Context, id string, patch mirror.RecordPatch) (UpdateResult, error) {
		if cfg.Dispatch == nil {
			return UpdateResult{}, fmt.Errorf("dispatcher is required")
		}
		if cfg.API == nil {
			return UpdateResult{}, fmt.Errorf("update api is required")
		}
		if strings.TrimSpace(id) == "" {
			return UpdateResult{}, apperrors.WithMetadata(
				apperrors.CodeRecordIDEmpty,
				fmt.Sprintf("%s: record id is required", cfg.ListName),
				map[string]string{"list": cfg.ListName},
			)
		}
		if patch.IsEmpty() {
			return UpdateResult{}, apperrors.WithMetadata(
				apperrors.CodeUpdateDataEmpty,
				fmt.Sprintf("%s: update data is required", cfg.ListName),
				map[string]string{"list": cfg.ListName},
			)
		}

		cfg.Dispatch.Dispatch(notify.Notification{
			Type:    cfg.StartAction,
			Payload: mirror.UpdateStart{ID: id, Data: patch},
		})

		result, err := cfg.API(ctx, id, patch)
		if err != nil {
			rerr := normalizeRemoteError(err, clock())
			cfg.Dispatch.Dispatch(notify.Notification{Type: cfg.ErrorAction, Payload: rerr})
			diag.Notice(cfg.Diag, "update %q in %s failed: %v", id, cfg.ListName, rerr)
			return UpdateResult{Err: rerr}, nil
		}

		if !cfg.HasSocket {
			item := result.Clone()
			if item.ID == "" {
				item.ID = id
			}
			cfg.Dispatch.Dispatch(notify.Notification{
				Type: cfg.EndAction,
				Payload: mirror.UpdateEnd{
					ListName: cfg.ListName,
					Item:     item,
					OnChange: cfg.OnChange,
				},
			})
		}
		return UpdateResult{Record: result}, nil
	}
}
