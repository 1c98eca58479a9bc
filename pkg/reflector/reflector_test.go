package reflector

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cz-vaporeon/basin/internal/store"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

func newTestReflector(t *testing.T, handler http.HandlerFunc) (*Reflector, *store.DescriptorStore, *store.DeploymentStateStore, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	descriptors := store.NewDescriptorStore(rdb)
	deployState := store.NewDeploymentStateStore(rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	r := New(nil, "queue-url", srv.Client(), descriptors, deployState, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return r, descriptors, deployState, srv.URL
}

func TestIngest_DatabaseEventPersistsDescriptorAndMarksPending(t *testing.T) {
	db := descriptor.Database{DescriptorID: "d1", Name: "sales", Summary: "sales data"}

	r, descriptors, deployState, baseURL := newTestReflector(t, func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(db)
	})

	ctx := context.Background()
	payload := DescriptorEvent{Type: "descriptor.changed", DescriptorURI: baseURL + "/d1", Kind: descriptor.KindDatabase}

	if err := r.ingest(ctx, payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	got, ok, err := descriptors.GetDatabase(ctx, "d1")
	if err != nil || !ok {
		t.Fatalf("expected database to be persisted, ok=%v err=%v", ok, err)
	}
	if got.Name != db.Name {
		t.Fatalf("got %+v, want %+v", got, db)
	}

	info, err := deployState.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get deployment state: %v", err)
	}
	if info.State != descriptor.StatePending {
		t.Fatalf("got state %q, want %q", info.State, descriptor.StatePending)
	}
}

func TestIngest_UnknownKindIsSkippedWithoutError(t *testing.T) {
	r, _, _, baseURL := newTestReflector(t, func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`{}`))
	})

	payload := DescriptorEvent{Kind: descriptor.Kind("bogus"), DescriptorURI: baseURL + "/x"}
	if err := r.ingest(context.Background(), payload); err != nil {
		t.Fatalf("expected unknown descriptor kind to be skipped without error, got %v", err)
	}
}

func TestIngest_FetchFailurePropagates(t *testing.T) {
	r, _, _, baseURL := newTestReflector(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	payload := DescriptorEvent{Kind: descriptor.KindDatabase, DescriptorURI: baseURL + "/x"}
	if err := r.ingest(context.Background(), payload); err == nil {
		t.Fatal("expected error when descriptor fetch fails")
	}
}
