// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package meridian

const (
	// Version of the meridian cache library.
	Version = "v0.1.0-dev"

	// DefaultMaxSize is the default maximum number of entries, the same
	// value profile.WorkloadDefault carries as its MaximumSize.
	DefaultMaxSize = 10_000

	// DefaultWindowRatio is the default W-TinyLFU admission window ratio.
	DefaultWindowRatio = 0.01

	// DefaultCounterBits is the counter width used by the frequency sketch.
	DefaultCounterBits = 4
)
