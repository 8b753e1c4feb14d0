package app

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/mutation"
	apperrors "github.com/louisbranch/listmirror/internal/platform/errors"
	"github.com/louisbranch/listmirror/internal/storage"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// controlServer exposes the daemon's local HTTP surface: snapshot
// inspection, journal inspection, and mutation triggers.
type controlServer struct {
	store   *mirror.Store
	journal storage.JournalStore
	delete  mutation.DeleteOperation
	update  mutation.UpdateOperation
}

func (s *controlServer) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	router.HandleFunc("/journal", s.handleJournal).Methods(http.MethodGet)
	router.HandleFunc("/records/{id}", s.handleDelete).Methods(http.MethodDelete)
	router.HandleFunc("/records/{id}", s.handleUpdate).Methods(http.MethodPatch)
	return router
}

func (s *controlServer) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *controlServer) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxJournalLimit {
		limit = maxJournalLimit
	}

	var (
		records []storage.NotificationRecord
		err     error
	)
	if recordID := strings.TrimSpace(r.URL.Query().Get("record_id")); recordID != "" {
		records, err = s.journal.ListNotificationsByRecord(r.Context(), recordID, limit)
	} else {
		records, err = s.journal.ListNotifications(r.Context(), limit)
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type entry struct {
		Seq       int64           `json:"seq"`
		Type      string          `json:"type"`
		RecordID  string          `json:"record_id,omitempty"`
		Timestamp string          `json:"timestamp"`
		Payload   json.RawMessage `json:"payload,omitempty"`
	}
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entry{
			Seq:       rec.Seq,
			Type:      rec.Type,
			RecordID:  rec.RecordID,
			Timestamp: rec.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			Payload:   rec.PayloadJSON,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *controlServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.delete(r.Context(), id)
	if err != nil {
		writeJSONError(w, statusForError(err), err.Error())
		return
	}
	if result.Err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": result.Err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result.Record})
}

func (s *controlServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch mirror.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSONError(w, http.StatusBadRequest, "decode update payload: "+err.Error())
		return
	}

	result, err := s.update(r.Context(), id, patch)
	if err != nil {
		writeJSONError(w, statusForError(err), err.Error())
		return
	}
	if result.Err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": result.Err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result.Record})
}

func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.CodeRecordIDEmpty, apperrors.CodeUpdateDataEmpty, apperrors.CodeRecordMalformed:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
