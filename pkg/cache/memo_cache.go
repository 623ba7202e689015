package cache

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// MemoCache is an interface for a cache memoizing the results of pure,
// deterministic queries. Eviction is based on LRU and LFU policies.
type MemoCache[ValueType interface{}] interface {
	Get(key string) (ValueType, error)
	Put(key string, value ValueType) error
}

type MemoCacheImpl[ValueType interface{}] struct {
	cache *ristretto.Cache
}

func NewMemoCacheImpl[ValueType interface{}](cache *ristretto.Cache) *MemoCacheImpl[ValueType] {
	return &MemoCacheImpl[ValueType]{
		cache: cache,
	}
}

func (mc *MemoCacheImpl[ValueType]) Get(key string) (ValueType, error) {
	var zero ValueType
	value, found := mc.cache.Get(key)
	if !found {
		return zero, ErrKeyNotFound
	}
	typedValue, ok := value.(ValueType)
	if !ok {
		return zero, fmt.Errorf("value not of expected type %T returned from cache when getting", value)
	}
	return typedValue, nil
}

func (mc *MemoCacheImpl[ValueType]) Put(key string, value ValueType) error {
	set := mc.cache.Set(key, value, 1)
	if !set {
		return ErrSetFailed
	}
	return nil
}

var (
	ErrKeyNotFound = errors.New("key not found within the cache")
	ErrSetFailed   = errors.New("failed to set value in cache")
)
