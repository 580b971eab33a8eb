// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package storekit

import "errors"

var (
	// ErrClosed is returned by operations attempted after Close.
	ErrClosed = errors.New("storekit: store is closed")
	// ErrCapacityExceeded is returned when a single value's weight exceeds
	// the configured maximum weight outright (it could never fit even in
	// an otherwise-empty store).
	ErrCapacityExceeded = errors.New("storekit: value weight exceeds maximum weight")
)
