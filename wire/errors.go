// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package wire

import "errors"

var (
	// ErrPayloadTooLarge is returned when a Request or Response exceeds an
	// Adapter's configured MaxPayloadBytes.
	ErrPayloadTooLarge = errors.New("wire: payload exceeds the configured size limit")
	// ErrTimeout is returned when a Send call's context deadline elapses
	// before a Response is received.
	ErrTimeout = errors.New("wire: request timed out")
	// ErrUnavailable is returned when a remote node could not be reached at
	// all (connection refused, DNS failure, and similar transport errors).
	ErrUnavailable = errors.New("wire: node unavailable")
)
