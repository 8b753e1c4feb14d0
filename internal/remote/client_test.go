package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/louisbranch/listmirror/internal/mirror"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}

func TestListRecords(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/records" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]mirror.Record{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}})
	}))

	records, err := client.ListRecords(context.Background())
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 2 || records[0].ID != "1" || records[1].Name != "b" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestDeleteRecordEchoesRecord(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/records/1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(mirror.Record{ID: "1", Name: "a"})
	}))

	record, err := client.DeleteRecord(context.Background(), "1")
	if err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if record.ID != "1" || record.Name != "a" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestUpdateRecordSendsPatch(t *testing.T) {
	name := "a2"
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/records/1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		var patch mirror.RecordPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Errorf("decode patch: %v", err)
		}
		if patch.Name == nil || *patch.Name != "a2" {
			t.Errorf("unexpected patch %+v", patch)
		}
		_ = json.NewEncoder(w).Encode(mirror.Record{ID: "1", Name: "a2"})
	}))

	record, err := client.UpdateRecord(context.Background(), "1", mirror.RecordPatch{Name: &name})
	if err != nil {
		t.Fatalf("update record: %v", err)
	}
	if record.Name != "a2" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestStructuredFailureFromBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"name":"RecordMissing","message":"no record 1"}`))
	}))

	_, err := client.DeleteRecord(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Name != "RecordMissing" || apiErr.Message != "no record 1" {
		t.Fatalf("expected reported name and message, got %+v", apiErr)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("status = %d", apiErr.Status)
	}
	if apiErr.Body == "" {
		t.Fatal("expected raw body preserved")
	}
}

func TestUnstructuredFailureFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))

	_, err := client.ListRecords(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Name != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("expected status text name, got %q", apiErr.Name)
	}
	if apiErr.Body != "upstream exploded" {
		t.Fatalf("expected raw body preserved, got %q", apiErr.Body)
	}
}

func TestNetworkFailureIsAPIError(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.ListRecords(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Name != "NetworkError" {
		t.Fatalf("expected NetworkError, got %q", apiErr.Name)
	}
}
