package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calsched/internal/config"
	"calsched/internal/model"
)

func newTestServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	store := NewStore()
	srv, err := NewServer(cfg, store)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seedEvent(t *testing.T, store *Store, ev model.Event) model.Event {
	t.Helper()
	valid, err := model.NewEvent(ev)
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return store.Put(valid)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	rec := doJSON(t, h, http.MethodPost, "/api/events", model.Event{
		Title: "exam",
		Start: start,
		End:   start.Add(2 * time.Hour),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Error("created event has no ID")
	}
	if created.Status != model.StatusScheduled {
		t.Errorf("status = %q, want scheduled default", created.Status)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}
}

func TestCreateEventInvalidRange(t *testing.T) {
	srv, _ := newTestServer(t)

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/events", model.Event{
		Title: "broken",
		Start: start,
		End:   start,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for zero-length event", rec.Code)
	}
}

func TestGetEventNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/events/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestOccurrencesEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	ev := seedEvent(t, store, model.Event{
		ID:          "series",
		Title:       "lecture",
		Start:       start,
		End:         start.Add(time.Hour),
		IsRecurring: true,
		Recurrence: &model.RecurrencePattern{
			Frequency: model.FreqDaily,
			Interval:  1,
			Count:     4,
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/events/"+ev.ID+"/occurrences", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp occurrencesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Occurrences) != 4 || resp.Truncated {
		t.Errorf("got %d occurrences (truncated %v), want 4 untruncated", len(resp.Occurrences), resp.Truncated)
	}
}

func TestOccurrencesNonRecurring(t *testing.T) {
	srv, store := newTestServer(t)

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	ev := seedEvent(t, store, model.Event{ID: "single", Start: start, End: start.Add(time.Hour)})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/events/"+ev.ID+"/occurrences", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for event without pattern", rec.Code)
	}
}

func TestConflictsEndpointExcludesSelf(t *testing.T) {
	srv, store := newTestServer(t)

	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	target := seedEvent(t, store, model.Event{ID: "target", Location: "hall", Start: start, End: start.Add(2 * time.Hour)})
	seedEvent(t, store, model.Event{ID: "clash", Location: "hall", Start: start.Add(time.Hour), End: start.Add(3 * time.Hour)})
	seedEvent(t, store, model.Event{ID: "elsewhere", Location: "lab", Start: start.Add(time.Hour), End: start.Add(3 * time.Hour)})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/events/"+target.ID+"/conflicts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var conflicts []model.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &conflicts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ID != "clash" {
		t.Errorf("conflicts = %+v, want only the same-location clash", conflicts)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	// Busy 10:00-11:00 on the requested day; default config has a
	// 12:00-13:00 break and 60-minute slots.
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	seedEvent(t, store, model.Event{ID: "busy", Start: start, End: start.Add(time.Hour)})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/availability?date=2024-06-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var slots []model.AvailabilitySlot
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantStarts := []int{540, 660, 780, 840, 900, 960}
	if len(slots) != len(wantStarts) {
		t.Fatalf("got %d slots, want %d", len(slots), len(wantStarts))
	}
	for i, want := range wantStarts {
		if slots[i].Start != want {
			t.Errorf("slot %d start = %d, want %d", i, slots[i].Start, want)
		}
	}
}

func TestAvailabilityBadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/availability?date=junk", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	day := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	statuses := []model.Status{
		model.StatusCompleted, model.StatusCompleted,
		model.StatusScheduled, model.StatusScheduled,
		model.StatusCancelled,
	}
	for i, st := range statuses {
		seedEvent(t, store, model.Event{
			ID:     string(rune('a' + i)),
			Start:  day.Add(time.Duration(i) * time.Hour),
			End:    day.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			Status: st,
		})
	}

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/stats?from=2024-06-01&to=2024-06-02", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got model.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 5 || got.CompletionRate != 40 {
		t.Errorf("stats = %+v, want total 5, rate 40", got)
	}
}

func TestDaysEndpointMissingParams(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/days", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	srv, err := NewServer(cfg, NewStore())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	h := srv.Handler()

	// /health stays open.
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200 without credentials", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/events", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without credentials", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("admin", "secret")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with credentials", res.Code)
	}
}

func TestDeleteEvent(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	ev := seedEvent(t, store, model.Event{ID: "gone", Start: start, End: start.Add(time.Hour)})

	rec := doJSON(t, h, http.MethodDelete, "/api/events/"+ev.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, h, http.MethodDelete, "/api/events/"+ev.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
