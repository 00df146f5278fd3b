package providers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/i474232898/home-dashboard-aggregation/internal/fetch"
	"github.com/i474232898/home-dashboard-aggregation/internal/homeassistant"
)

// fakeHub serves entity states and a calendar the way the hub API does.
type fakeHub struct {
	mu       sync.Mutex
	entities map[string]homeassistant.EntityState
	calendar string
	failing  map[string]int
	requests []string

	// hold, when set, parks every request until it is closed or the
	// caller goes away.
	hold chan struct{}
}

func newFakeHub(t *testing.T) (*fakeHub, *homeassistant.Client) {
	t.Helper()
	return newFakeHubWithBreaker(t, false)
}

func newFakeHubWithBreaker(t *testing.T, withBreaker bool) (*fakeHub, *homeassistant.Client) {
	t.Helper()

	h := &fakeHub{
		entities: make(map[string]homeassistant.EntityState),
		failing:  make(map[string]int),
	}
	srv := httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(srv.Close)

	client := homeassistant.NewClient(srv.URL+"/api", "Bearer token", fetch.NewClient("home-assistant", srv.Client(), withBreaker))
	return h, client
}

func (h *fakeHub) addEntity(id, state, name, unit string) {
	h.entities[id] = homeassistant.EntityState{
		EntityID: id,
		State:    state,
		Attributes: homeassistant.EntityAttributes{
			FriendlyName:      name,
			UnitOfMeasurement: unit,
		},
	}
}

func (h *fakeHub) serve(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.requests = append(h.requests, r.URL.RequestURI())
	hold := h.hold
	h.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}

	if r.Header.Get("Authorization") != "Bearer token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/states/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/states/")
		if status, ok := h.failing[id]; ok {
			w.WriteHeader(status)
			return
		}
		state, ok := h.entities[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Entity not found."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(state)
	case strings.HasPrefix(r.URL.Path, "/api/calendars/"):
		_, _ = w.Write([]byte(h.calendar))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *fakeHub) lastRequest() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.requests) == 0 {
		return ""
	}
	return h.requests[len(h.requests)-1]
}
