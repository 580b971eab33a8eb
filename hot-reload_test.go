// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package meridian

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewHotConfigRequiresPath(t *testing.T) {
	if _, err := NewHotConfig(HotConfigOptions{}); err == nil {
		t.Fatal("NewHotConfig with an empty path succeeded, want error")
	}
}

func TestHotConfigReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.yaml")
	if err := os.WriteFile(path, []byte("cache:\n  expire_after_write: 10s\n"), 0644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	reloaded := make(chan TunableConfig, 1)
	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   path,
		PollInterval: 50 * time.Millisecond,
		OnReload: func(old, next TunableConfig) {
			select {
			case reloaded <- next:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("NewHotConfig() = %v", err)
	}
	defer hc.Stop()

	if err := os.WriteFile(path, []byte("cache:\n  expire_after_write: 30s\n"), 0644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.ExpireAfterWrite != 30*time.Second {
			t.Fatalf("reloaded ExpireAfterWrite = %v, want 30s", cfg.ExpireAfterWrite)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a reload callback")
	}
}
