package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/notify"
)

type collectingDispatcher struct {
	ch chan notify.Notification
}

func (d *collectingDispatcher) Dispatch(n notify.Notification) {
	d.ch <- n
}

func wsURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http")
}

func serveMessages(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func receive(t *testing.T, ch chan notify.Notification) notify.Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
		return notify.Notification{}
	}
}

func TestFeedDispatchesPushedChanges(t *testing.T) {
	server := serveMessages(t, []string{
		`{"type":"record.updated","record":{"id":"1","name":"a2"}}`,
		`{"type":"record.deleted","record":{"id":"2"}}`,
	})

	dispatcher := &collectingDispatcher{ch: make(chan notify.Notification, 4)}
	actions := mirror.DefaultActions()
	feed, err := NewFeed(wsURL(server.URL), "records", dispatcher, actions, nil)
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- feed.Run(ctx)
	}()

	first := receive(t, dispatcher.ch)
	if first.Type != actions.UpdateEnd {
		t.Fatalf("expected update end notification, got %s", first.Type)
	}
	updateEnd, ok := first.Payload.(mirror.UpdateEnd)
	if !ok {
		t.Fatalf("unexpected payload %#v", first.Payload)
	}
	if updateEnd.ListName != "records" || updateEnd.Item.ID != "1" || updateEnd.Item.Name != "a2" {
		t.Fatalf("unexpected update end %+v", updateEnd)
	}
	if updateEnd.OnChange != nil {
		t.Fatal("pushed updates must not carry a transform")
	}

	second := receive(t, dispatcher.ch)
	if second.Type != actions.DeleteSuccess {
		t.Fatalf("expected delete success notification, got %s", second.Type)
	}
	if rec, ok := second.Payload.(mirror.Record); !ok || rec.ID != "2" {
		t.Fatalf("unexpected payload %#v", second.Payload)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("feed did not stop on cancellation")
	}
}

func TestFeedIgnoresMalformedMessages(t *testing.T) {
	server := serveMessages(t, []string{
		`not json`,
		`{"type":"record.updated","record":{"name":"missing id"}}`,
		`{"type":"record.exploded","record":{"id":"9"}}`,
		`{"type":"record.deleted","record":{"id":"2"}}`,
	})

	dispatcher := &collectingDispatcher{ch: make(chan notify.Notification, 4)}
	actions := mirror.DefaultActions()
	feed, err := NewFeed(wsURL(server.URL), "records", dispatcher, actions, nil)
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = feed.Run(ctx) }()

	got := receive(t, dispatcher.ch)
	if got.Type != actions.DeleteSuccess {
		t.Fatalf("expected only the valid delete dispatched, got %s", got.Type)
	}
}

func TestNewFeedValidatesInputs(t *testing.T) {
	if _, err := NewFeed(" ", "records", &collectingDispatcher{ch: make(chan notify.Notification, 1)}, mirror.DefaultActions(), nil); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewFeed("ws://example", "records", nil, mirror.DefaultActions(), nil); err == nil {
		t.Fatal("expected error for nil dispatcher")
	}
}
