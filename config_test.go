// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import (
	"testing"
	"time"
)

func TestValidateRejectsZeroBounds(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); !IsConfigError(err) {
		t.Fatalf("Validate() = %v, want a config error", err)
	}
}

func TestValidateRejectsWeightWithoutWeigher(t *testing.T) {
	cfg := Config{MaximumWeight: 100}
	if err := cfg.Validate(); !IsConfigError(err) {
		t.Fatalf("Validate() = %v, want a config error", err)
	}
}

func TestValidateRejectsRefreshNotBeforeExpire(t *testing.T) {
	cfg := Config{
		MaximumSize:       100,
		ExpireAfterWrite:  time.Second,
		RefreshAfterWrite: time.Second,
	}
	if err := cfg.Validate(); !IsConfigError(err) {
		t.Fatalf("Validate() = %v, want a config error", err)
	}
}

func TestValidateRejectsWeakReferenceFields(t *testing.T) {
	cfg := Config{MaximumSize: 100, WeakKeys: true}
	if err := cfg.Validate(); !IsConfigError(err) {
		t.Fatalf("Validate() = %v, want a config error", err)
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Config{MaximumSize: 100}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Algorithm == "" {
		t.Fatal("Validate() left Algorithm empty")
	}
	if cfg.Logger == nil || cfg.Time == nil || cfg.Metrics == nil {
		t.Fatal("Validate() left an ambient dependency nil")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}
