// Package realtime consumes the remote collection's push channel. When the
// feed is active the update operation runs with HasSocket set and skips its
// end notifications; the feed keeps the mirror synchronized instead.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/notify"
)

// Message types pushed by the remote channel.
const (
	MessageRecordUpdated = "record.updated"
	MessageRecordDeleted = "record.deleted"
)

// Message is one pushed collection change.
type Message struct {
	Type   string        `json:"type"`
	Record mirror.Record `json:"record"`
}

// Feed reads pushed collection changes and dispatches them as lifecycle
// notifications.
type Feed struct {
	url      string
	listName string
	dispatch notify.Dispatcher
	actions  mirror.ActionSet
	sink     diag.Sink
	dialer   *websocket.Dialer
}

// NewFeed creates a feed reading from url and dispatching into d.
func NewFeed(url, listName string, d notify.Dispatcher, actions mirror.ActionSet, sink diag.Sink) (*Feed, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("feed url is required")
	}
	if d == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	return &Feed{
		url:      url,
		listName: listName,
		dispatch: d,
		actions:  actions,
		sink:     sink,
		dialer:   websocket.DefaultDialer,
	}, nil
}

// Run connects and applies pushed messages until ctx is cancelled or the
// connection fails.
func (f *Feed) Run(ctx context.Context) error {
	conn, resp, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial realtime feed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Unblock ReadMessage on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read realtime message: %w", err)
		}
		f.apply(data)
	}
}

func (f *Feed) apply(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		diag.Notice(f.sink, "parse realtime message: %v", err)
		return
	}
	if strings.TrimSpace(msg.Record.ID) == "" {
		diag.Notice(f.sink, "realtime %s message without record id", msg.Type)
		return
	}

	switch msg.Type {
	case MessageRecordUpdated:
		f.dispatch.Dispatch(notify.Notification{
			Type: f.actions.UpdateEnd,
			Payload: mirror.UpdateEnd{
				ListName: f.listName,
				Item:     msg.Record,
			},
		})
	case MessageRecordDeleted:
		f.dispatch.Dispatch(notify.Notification{
			Type:    f.actions.DeleteSuccess,
			Payload: msg.Record,
		})
	default:
		diag.Notice(f.sink, "unknown realtime message type %q", msg.Type)
	}
}
