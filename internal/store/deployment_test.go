package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

func TestDeploymentStateStore_GetUnsetReturnsUnknown(t *testing.T) {
	ctx := context.Background()
	s := NewDeploymentStateStore(newTestRedis(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	info, err := s.Get(ctx, "never-set")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if info.State != descriptor.StateUnknown {
		t.Fatalf("got state %q, want %q", info.State, descriptor.StateUnknown)
	}
}

func TestDeploymentStateStore_SetThenGetRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := NewDeploymentStateStore(newTestRedis(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	desc := "provisioning bucket"
	s.Set(ctx, "d1", descriptor.DeploymentInfo{State: descriptor.StateDeploying, Description: &desc})

	info, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if info.State != descriptor.StateDeploying || info.Description == nil || *info.Description != desc {
		t.Fatalf("got %+v", info)
	}
}
