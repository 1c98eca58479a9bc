package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

// DeploymentStateStore tracks per-descriptor deployment lifecycle state
// under key deployment-state/<id>, backed by the same Redis instance as
// the Descriptor Store.
type DeploymentStateStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewDeploymentStateStore wraps an existing Redis client.
func NewDeploymentStateStore(rdb *redis.Client, logger *slog.Logger) *DeploymentStateStore {
	return &DeploymentStateStore{rdb: rdb, logger: logger}
}

func deploymentKey(id string) string {
	return "deployment-state/" + id
}

// Get returns the deployment info for id, or StateUnknown if never set.
func (s *DeploymentStateStore) Get(ctx context.Context, id string) (descriptor.DeploymentInfo, error) {
	raw, err := s.rdb.Get(ctx, deploymentKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return descriptor.DeploymentInfo{State: descriptor.StateUnknown}, nil
	}
	if err != nil {
		return descriptor.DeploymentInfo{}, fmt.Errorf("store: getting deployment state %s: %w", id, err)
	}
	var info descriptor.DeploymentInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return descriptor.DeploymentInfo{}, fmt.Errorf("store: decoding deployment state %s: %w", id, err)
	}
	return info, nil
}

// Set writes the deployment info for id. Per the store's fire-and-forget
// contract, a write failure here must never unwind a reconcile that has
// already mutated remote infrastructure: callers log and proceed.
func (s *DeploymentStateStore) Set(ctx context.Context, id string, info descriptor.DeploymentInfo) {
	raw, err := json.Marshal(info)
	if err != nil {
		s.logger.Error("encoding deployment state", "id", id, "error", err)
		return
	}
	if err := s.rdb.Set(ctx, deploymentKey(id), raw, 0).Err(); err != nil {
		s.logger.Error("persisting deployment state", "id", id, "error", err)
	}
}
