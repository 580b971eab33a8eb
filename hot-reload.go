// hot-reload.go: dynamic configuration reload backed by Argus file watching.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package meridian

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// TunableConfig is the subset of Config that can change for a running
// Cache without reconstructing its store: MaximumSize, Shards, Algorithm
// and WindowRatio are baked into the store and policy at New time and are
// not part of it.
type TunableConfig struct {
	ExpireAfterWrite  time.Duration
	ExpireAfterAccess time.Duration
	RefreshAfterWrite time.Duration
	NegativeCacheTTL  time.Duration
}

// HotConfig watches a configuration file via Argus and invokes OnReload
// with the parsed TunableConfig whenever the file changes. It does not
// mutate a Cache directly: TTLs already in effect for existing entries
// cannot retroactively change, so applying a reload is left to the
// caller's OnReload callback (e.g. swapping in a new Cache built from the
// updated values, or simply adjusting whatever it derives from them).
type HotConfig struct {
	watcher *argus.Watcher
	mu      sync.RWMutex
	current TunableConfig

	// OnReload is called after a configuration file change is parsed.
	// It must be fast and non-blocking.
	OnReload func(old, new TunableConfig)
}

// HotConfigOptions configures HotConfig.
type HotConfigOptions struct {
	// ConfigPath is the file to watch. Argus supports JSON, YAML, TOML,
	// HCL, INI and Properties, detected from the file extension.
	ConfigPath string
	// PollInterval defaults to 1s and is floored at 100ms.
	PollInterval time.Duration
	OnReload     func(old, new TunableConfig)
}

// NewHotConfig starts watching opts.ConfigPath immediately.
//
// Expected keys, under a top-level "cache" section or at the document
// root:
//
//	expire_after_write  (duration string, e.g. "30s")
//	expire_after_access (duration string)
//	refresh_after_write (duration string)
//	negative_cache_ttl  (duration string)
func NewHotConfig(opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("meridian: ConfigPath is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	hc := &HotConfig{OnReload: opts.OnReload}

	watcher, err := argus.UniversalConfigWatcherWithConfig(
		opts.ConfigPath, hc.handleChange, argus.Config{PollInterval: opts.PollInterval},
	)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher
	return hc, nil
}

// Start begins watching, if not already running.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error { return hc.watcher.Stop() }

// Current returns the most recently parsed configuration.
func (hc *HotConfig) Current() TunableConfig {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.current
}

func (hc *HotConfig) handleChange(data map[string]interface{}) {
	hc.mu.Lock()
	old := hc.current
	next := parseTunableConfig(data)
	hc.current = next
	hc.mu.Unlock()

	if hc.OnReload != nil {
		hc.OnReload(old, next)
	}
}

func parseTunableConfig(data map[string]interface{}) TunableConfig {
	section, ok := data["cache"].(map[string]interface{})
	if !ok {
		section = data
	}
	var c TunableConfig
	if d, ok := parseDuration(section["expire_after_write"]); ok {
		c.ExpireAfterWrite = d
	}
	if d, ok := parseDuration(section["expire_after_access"]); ok {
		c.ExpireAfterAccess = d
	}
	if d, ok := parseDuration(section["refresh_after_write"]); ok {
		c.RefreshAfterWrite = d
	}
	if d, ok := parseDuration(section["negative_cache_ttl"]); ok {
		c.NegativeCacheTTL = d
	}
	return c
}

func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}
