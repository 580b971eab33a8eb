// errors.go: structured error handling for meridian cache operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for meridian cache operations.
const (
	// Configuration errors (1xxx)
	ErrCodeInvalidConfig      errors.ErrorCode = "MERIDIAN_INVALID_CONFIG"
	ErrCodeInvalidMaxSize     errors.ErrorCode = "MERIDIAN_INVALID_MAX_SIZE"
	ErrCodeInvalidWindowRatio errors.ErrorCode = "MERIDIAN_INVALID_WINDOW_RATIO"
	ErrCodeInvalidShards      errors.ErrorCode = "MERIDIAN_INVALID_SHARDS"
	ErrCodeInvalidTTL         errors.ErrorCode = "MERIDIAN_INVALID_TTL"

	// Operation errors (2xxx)
	ErrCodeCacheFull   errors.ErrorCode = "MERIDIAN_CACHE_FULL"
	ErrCodeKeyNotFound errors.ErrorCode = "MERIDIAN_KEY_NOT_FOUND"
	ErrCodeEmptyKey    errors.ErrorCode = "MERIDIAN_EMPTY_KEY"
	ErrCodeCacheClosed errors.ErrorCode = "MERIDIAN_CACHE_CLOSED"

	// Loader errors (3xxx)
	ErrCodeLoaderFailed    errors.ErrorCode = "MERIDIAN_LOADER_FAILED"
	ErrCodeLoaderCancelled errors.ErrorCode = "MERIDIAN_LOADER_CANCELLED"
	ErrCodeInvalidLoader   errors.ErrorCode = "MERIDIAN_INVALID_LOADER"

	// Distributed errors (4xxx)
	ErrCodeNoOwner           errors.ErrorCode = "MERIDIAN_NO_OWNER"
	ErrCodeQuorumUnreachable errors.ErrorCode = "MERIDIAN_QUORUM_UNREACHABLE"
	ErrCodeStaleTopology     errors.ErrorCode = "MERIDIAN_STALE_TOPOLOGY"

	// Internal errors (5xxx)
	ErrCodeInternalError  errors.ErrorCode = "MERIDIAN_INTERNAL_ERROR"
	ErrCodePanicRecovered errors.ErrorCode = "MERIDIAN_PANIC_RECOVERED"
)

const (
	msgInvalidMaxSize     = "invalid maximum size: must be greater than 0"
	msgInvalidWindowRatio = "invalid window ratio: must be between 0.0 and 1.0"
	msgInvalidShards      = "invalid shard count: must be a positive power of two"
	msgInvalidTTL         = "invalid TTL: must be non-negative"
	msgInvalidConfig      = "invalid configuration"
	msgCacheFull          = "cache is full and eviction failed"
	msgKeyNotFound        = "key not found in cache"
	msgEmptyKey           = "key cannot be empty"
	msgCacheClosed        = "operation attempted on a closed cache"
	msgLoaderFailed       = "loader function failed"
	msgLoaderCancelled    = "loader function was cancelled"
	msgInvalidLoader      = "loader function cannot be nil"
	msgNoOwner            = "no node owns this key in the current topology"
	msgQuorumUnreachable  = "could not reach enough replicas to satisfy the requested consistency level"
	msgStaleTopology      = "request targeted a topology version the local node has already superseded"
	msgInternalError      = "internal cache error"
	msgPanicRecovered     = "panic recovered in cache operation"
)

// NewErrInvalidMaxSize creates an error for an invalid maximum size.
func NewErrInvalidMaxSize(size int64) error {
	return errors.NewWithContext(ErrCodeInvalidMaxSize, msgInvalidMaxSize, map[string]interface{}{
		"provided_size":    size,
		"minimum_required": 1,
	})
}

// NewErrInvalidWindowRatio creates an error for an invalid admission window ratio.
func NewErrInvalidWindowRatio(ratio float64) error {
	return errors.NewWithContext(ErrCodeInvalidWindowRatio, msgInvalidWindowRatio, map[string]interface{}{
		"provided_ratio": ratio,
		"valid_range":    "0.0 < ratio < 1.0",
	})
}

// NewErrInvalidShards creates an error for an invalid shard count.
func NewErrInvalidShards(shards int) error {
	return errors.NewWithContext(ErrCodeInvalidShards, msgInvalidShards, map[string]interface{}{
		"provided_shards": shards,
	})
}

// NewErrInvalidConfigWithReason creates a generic configuration error
// carrying a free-form reason, used for option combinations that are
// individually valid but jointly contradictory.
func NewErrInvalidConfigWithReason(reason string) error {
	return errors.NewWithField(ErrCodeInvalidConfig, msgInvalidConfig, "reason", reason)
}

// NewErrInvalidTTL creates an error for a negative TTL.
func NewErrInvalidTTL(ttl interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidTTL, msgInvalidTTL, map[string]interface{}{
		"provided_ttl": ttl,
	})
}

// NewErrCacheFull creates an error for a store that cannot make room via eviction.
func NewErrCacheFull(capacity, size int64) error {
	return errors.NewWithContext(ErrCodeCacheFull, msgCacheFull, map[string]interface{}{
		"capacity":     capacity,
		"current_size": size,
	}).AsRetryable()
}

// NewErrKeyNotFound creates an error for a missing key.
func NewErrKeyNotFound(key string) error {
	return errors.NewWithField(ErrCodeKeyNotFound, msgKeyNotFound, "key", key)
}

// NewErrEmptyKey creates an error for an empty cache key.
func NewErrEmptyKey(operation string) error {
	return errors.NewWithField(ErrCodeEmptyKey, msgEmptyKey, "operation", operation)
}

// NewErrCacheClosed creates an error for an operation attempted after Close.
func NewErrCacheClosed(operation string) error {
	return errors.NewWithField(ErrCodeCacheClosed, msgCacheClosed, "operation", operation)
}

// NewErrLoaderFailed wraps a loader's own error with meridian's error code.
func NewErrLoaderFailed(key string, cause error) error {
	return errors.Wrap(cause, ErrCodeLoaderFailed, msgLoaderFailed).
		WithContext("key", key).
		AsRetryable()
}

// NewErrLoaderCancelled creates an error for a loader call cancelled via context.
func NewErrLoaderCancelled(key string) error {
	return errors.NewWithField(ErrCodeLoaderCancelled, msgLoaderCancelled, "key", key)
}

// NewErrInvalidLoader creates an error for a nil loader function.
func NewErrInvalidLoader(key string) error {
	return errors.NewWithField(ErrCodeInvalidLoader, msgInvalidLoader, "key", key)
}

// NewErrNoOwner creates an error for a key with no owning node in the ring.
func NewErrNoOwner(key string) error {
	return errors.NewWithField(ErrCodeNoOwner, msgNoOwner, "key", key)
}

// NewErrQuorumUnreachable creates an error when too few replicas responded
// to satisfy the requested consistency level.
func NewErrQuorumUnreachable(key string, needed, reached int) error {
	return errors.NewWithContext(ErrCodeQuorumUnreachable, msgQuorumUnreachable, map[string]interface{}{
		"key":     key,
		"needed":  needed,
		"reached": reached,
	}).AsRetryable()
}

// NewErrStaleTopology creates an error when a request carries a topology
// version the local node has already superseded.
func NewErrStaleTopology(requested, current uint64) error {
	return errors.NewWithContext(ErrCodeStaleTopology, msgStaleTopology, map[string]interface{}{
		"requested_version": requested,
		"current_version":   current,
	}).AsRetryable()
}

// NewErrInternal creates a generic internal error, optionally wrapping cause.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// NewErrPanicRecovered creates an error for a recovered panic.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// IsNotFound reports whether err is a key-not-found error.
func IsNotFound(err error) bool { return errors.HasCode(err, ErrCodeKeyNotFound) }

// IsEmptyKey reports whether err is an empty-key error.
func IsEmptyKey(err error) bool { return errors.HasCode(err, ErrCodeEmptyKey) }

// IsCacheFull reports whether err is a cache-full error.
func IsCacheFull(err error) bool { return errors.HasCode(err, ErrCodeCacheFull) }

// IsCacheClosed reports whether err indicates the cache was already closed.
func IsCacheClosed(err error) bool { return errors.HasCode(err, ErrCodeCacheClosed) }

// IsConfigError reports whether err is a configuration validation error.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeInvalidMaxSize || code == ErrCodeInvalidWindowRatio ||
			code == ErrCodeInvalidShards || code == ErrCodeInvalidTTL || code == ErrCodeInvalidConfig
	}
	return false
}

// IsLoaderError reports whether err originated from a loader call.
func IsLoaderError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeLoaderFailed || code == ErrCodeLoaderCancelled || code == ErrCodeInvalidLoader
	}
	return false
}

// IsDistributedError reports whether err originates in the cluster/router
// layer (no owner, quorum unreachable, stale topology).
func IsDistributedError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeNoOwner || code == ErrCodeQuorumUnreachable || code == ErrCodeStaleTopology
	}
	return false
}

// IsRetryable reports whether err can reasonably be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the structured error code from err, if any.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts the structured context map from err, if any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var merr *errors.Error
	if goerrors.As(err, &merr) {
		return merr.Context
	}
	return nil
}
