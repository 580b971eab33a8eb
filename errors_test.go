// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import "testing"

func TestErrorCodesRoundTrip(t *testing.T) {
	err := NewErrKeyNotFound("k")
	if !IsNotFound(err) {
		t.Fatal("IsNotFound() = false")
	}
	if GetErrorCode(err) != ErrCodeKeyNotFound {
		t.Fatalf("GetErrorCode() = %v, want %v", GetErrorCode(err), ErrCodeKeyNotFound)
	}
	if GetErrorContext(err)["key"] != "k" {
		t.Fatalf("GetErrorContext() = %v, want key=k", GetErrorContext(err))
	}
}

func TestCacheFullIsRetryable(t *testing.T) {
	err := NewErrCacheFull(10, 10)
	if !IsCacheFull(err) {
		t.Fatal("IsCacheFull() = false")
	}
	if !IsRetryable(err) {
		t.Fatal("IsRetryable() = false, want true for a capacity error")
	}
}

func TestDistributedErrorsClassify(t *testing.T) {
	for _, err := range []error{
		NewErrNoOwner("k"),
		NewErrQuorumUnreachable("k", 3, 1),
		NewErrStaleTopology(2, 5),
	} {
		if !IsDistributedError(err) {
			t.Errorf("IsDistributedError(%v) = false", err)
		}
	}
}

func TestLoaderErrorWrapsCause(t *testing.T) {
	cause := NewErrInternal("fetch", nil)
	err := NewErrLoaderFailed("k", cause)
	if !IsLoaderError(err) {
		t.Fatal("IsLoaderError() = false")
	}
	if !IsRetryable(err) {
		t.Fatal("IsRetryable() = false for a wrapped loader failure")
	}
}

func TestNilErrorHelpersReturnFalse(t *testing.T) {
	if IsNotFound(nil) || IsCacheFull(nil) || IsLoaderError(nil) || IsDistributedError(nil) || IsRetryable(nil) {
		t.Fatal("a nil error classified as a specific error kind")
	}
	if GetErrorCode(nil) != "" {
		t.Fatal("GetErrorCode(nil) != \"\"")
	}
	if GetErrorContext(nil) != nil {
		t.Fatal("GetErrorContext(nil) != nil")
	}
}
