package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/home-dashboard-aggregation/internal/store"
)

type stubProber struct {
	name string
	err  error
}

func (p stubProber) Name() string                    { return p.name }
func (p stubProber) Probe(ctx context.Context) error { return p.err }

func TestRunOnceRecordsEveryUpstream(t *testing.T) {
	st := store.NewMemoryStore(10, time.Hour)
	s := New([]Prober{
		stubProber{name: "hub"},
		stubProber{name: "open-meteo", err: errors.New("dial tcp: connection refused")},
	}, time.Minute, st)

	s.RunOnce(context.Background())

	hub, err := st.Latest("hub")
	if err != nil {
		t.Fatalf("hub: %v", err)
	}
	if !hub.OK || hub.Error != "" {
		t.Errorf("hub result = %+v", hub)
	}

	meteo, err := st.Latest("open-meteo")
	if err != nil {
		t.Fatalf("open-meteo: %v", err)
	}
	if meteo.OK || meteo.Error != "dial tcp: connection refused" {
		t.Errorf("open-meteo result = %+v", meteo)
	}
	if meteo.CheckedAt.Location() != time.UTC {
		t.Errorf("checkedAt not UTC: %v", meteo.CheckedAt)
	}
}

func TestStartDisabled(t *testing.T) {
	st := store.NewMemoryStore(10, time.Hour)
	s := New([]Prober{stubProber{name: "hub"}}, 0, st)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if got := st.LatestAll(); len(got) != 0 {
		t.Fatalf("probes ran while disabled: %+v", got)
	}
}
