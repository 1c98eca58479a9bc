// Package store provides the Redis-backed Descriptor Store and
// Deployment-State Store shared by every controller and the event
// reflector.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

// DescriptorStore is a kind-partitioned KV cache of descriptors backed by
// Redis. Keys are laid out as descriptor/<kind>/<id>; storing is
// last-writer-wins.
type DescriptorStore struct {
	rdb *redis.Client
}

// NewDescriptorStore wraps an existing Redis client.
func NewDescriptorStore(rdb *redis.Client) *DescriptorStore {
	return &DescriptorStore{rdb: rdb}
}

func descriptorKey(kind descriptor.Kind, id string) string {
	return fmt.Sprintf("descriptor/%s/%s", kind, id)
}

// GetDatabase fetches a database descriptor by id. ok is false if absent.
func (s *DescriptorStore) GetDatabase(ctx context.Context, id string) (*descriptor.Database, bool, error) {
	var d descriptor.Database
	ok, err := s.get(ctx, descriptorKey(descriptor.KindDatabase, id), &d)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &d, true, nil
}

// GetTable fetches a table descriptor by id.
func (s *DescriptorStore) GetTable(ctx context.Context, id string) (*descriptor.Table, bool, error) {
	var t descriptor.Table
	ok, err := s.get(ctx, descriptorKey(descriptor.KindTable, id), &t)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &t, true, nil
}

// GetFlow fetches a flow descriptor by id.
func (s *DescriptorStore) GetFlow(ctx context.Context, id string) (*descriptor.Flow, bool, error) {
	var f descriptor.Flow
	ok, err := s.get(ctx, descriptorKey(descriptor.KindFlow, id), &f)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &f, true, nil
}

func (s *DescriptorStore) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: getting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("store: decoding %s: %w", key, err)
	}
	return true, nil
}

// PutDatabase persists a database descriptor, overwriting any prior value.
func (s *DescriptorStore) PutDatabase(ctx context.Context, d *descriptor.Database) error {
	return s.put(ctx, descriptorKey(descriptor.KindDatabase, d.ID()), d)
}

// PutTable persists a table descriptor, overwriting any prior value.
func (s *DescriptorStore) PutTable(ctx context.Context, t *descriptor.Table) error {
	return s.put(ctx, descriptorKey(descriptor.KindTable, t.ID()), t)
}

// PutFlow persists a flow descriptor, overwriting any prior value.
func (s *DescriptorStore) PutFlow(ctx context.Context, f *descriptor.Flow) error {
	return s.put(ctx, descriptorKey(descriptor.KindFlow, f.ID()), f)
}

func (s *DescriptorStore) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("store: storing %s: %w", key, err)
	}
	return nil
}

// ListDatabases enumerates every stored database descriptor.
func (s *DescriptorStore) ListDatabases(ctx context.Context) ([]*descriptor.Database, error) {
	var out []*descriptor.Database
	err := s.list(ctx, descriptor.KindDatabase, func(raw []byte) error {
		var d descriptor.Database
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		out = append(out, &d)
		return nil
	})
	return out, err
}

// ListTables enumerates every stored table descriptor.
func (s *DescriptorStore) ListTables(ctx context.Context) ([]*descriptor.Table, error) {
	var out []*descriptor.Table
	err := s.list(ctx, descriptor.KindTable, func(raw []byte) error {
		var t descriptor.Table
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		out = append(out, &t)
		return nil
	})
	return out, err
}

// ListFlows enumerates every stored flow descriptor.
func (s *DescriptorStore) ListFlows(ctx context.Context) ([]*descriptor.Flow, error) {
	var out []*descriptor.Flow
	err := s.list(ctx, descriptor.KindFlow, func(raw []byte) error {
		var f descriptor.Flow
		if err := json.Unmarshal(raw, &f); err != nil {
			return err
		}
		out = append(out, &f)
		return nil
	})
	return out, err
}

// list enumerates keys matching descriptor/<kind>/* via SCAN (not KEYS,
// which blocks the Redis event loop on large keyspaces) and fetches each.
// A key that disappears between enumeration and fetch is treated as
// absent and skipped rather than surfaced as an error: this mirrors the
// store's documented tolerance for list/fetch races against concurrent
// writers.
func (s *DescriptorStore) list(ctx context.Context, kind descriptor.Kind, decode func([]byte) error) error {
	pattern := descriptorKey(kind, "*")
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("store: listing %s: %w", kind, err)
		}
		if err := decode(raw); err != nil {
			return fmt.Errorf("store: decoding listed %s: %w", kind, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("store: scanning %s: %w", kind, err)
	}
	return nil
}
