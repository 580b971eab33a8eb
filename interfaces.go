// interfaces.go: the narrow Cache abstraction router uses to dispatch a
// request to the locally-owned cache instance.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import (
	"context"

	"github.com/agilira/meridian/entrykit"
)

// CacheInterface is the subset of *Cache's methods router depends on,
// letting router be built and tested against a fake local cache without
// importing the concrete implementation.
type CacheInterface interface {
	Get(ctx context.Context, key string) (interface{}, bool, error)
	Set(key string, value interface{}) error
	Delete(key string) bool
	Has(key string) bool
	Len() int64
	Stats() entrykit.Snapshot
	Close(ctx context.Context) error
}

var _ CacheInterface = (*Cache)(nil)
