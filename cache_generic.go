// cache_generic.go: a type-safe generic wrapper over Cache.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package meridian

import (
	"context"
	"fmt"
	"strconv"
)

// TypedCache wraps a Cache with compile-time key and value types, avoiding
// the type assertions a raw Get/Set call requires. K must be comparable;
// V can be any type.
//
//	cache, _ := meridian.NewBuilder().WithMaximumSize(10_000).Build()
//	users := meridian.NewTypedCache[int, User](cache)
//	users.Set(123, user)
//	if u, found, _ := users.Get(ctx, 123); found {
//		fmt.Printf("user: %+v\n", u)
//	}
type TypedCache[K comparable, V any] struct {
	inner *Cache
}

// NewTypedCache wraps an already-built Cache.
func NewTypedCache[K comparable, V any](c *Cache) *TypedCache[K, V] {
	return &TypedCache[K, V]{inner: c}
}

// Set stores value under key.
func (c *TypedCache[K, V]) Set(key K, value V) error {
	return c.inner.Set(keyToString(key), value)
}

// Get retrieves the value stored under key.
func (c *TypedCache[K, V]) Get(ctx context.Context, key K) (value V, found bool, err error) {
	raw, found, err := c.inner.Get(ctx, keyToString(key))
	if err != nil || !found {
		var zero V
		return zero, false, err
	}
	typed, ok := raw.(V)
	if !ok {
		var zero V
		return zero, false, nil
	}
	return typed, true, nil
}

// Delete removes key.
func (c *TypedCache[K, V]) Delete(key K) bool { return c.inner.Delete(keyToString(key)) }

// Has reports whether key is present.
func (c *TypedCache[K, V]) Has(key K) bool { return c.inner.Has(keyToString(key)) }

// keyToString converts a comparable key to its cache-key representation,
// avoiding an allocation for the common string/int/uint cases.
func keyToString[K comparable](key K) string {
	switch v := any(key).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprintf("%v", key)
	}
}

// Clear removes all entries.
func (c *TypedCache[K, V]) Clear() { c.inner.Clear() }

// Close closes the underlying Cache.
func (c *TypedCache[K, V]) Close(ctx context.Context) error { return c.inner.Close(ctx) }
