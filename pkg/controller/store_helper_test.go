package controller

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cz-vaporeon/basin/internal/store"
)

func newDescriptorStoreForTest(t *testing.T) *store.DescriptorStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.NewDescriptorStore(rdb)
}
