// Package httpadapter is wire's reference transport: a wire.Adapter built
// over net/http, using a shared *http.Client with a bounded timeout,
// context-aware requests, and encoding/json bodies. The choice of byte
// transport (TCP framing, HTTP, RPC) is pluggable via wire.Adapter; this
// is the one transport shipped by default.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agilira/meridian/wire"
)

// wireMessage is the JSON envelope exchanged over HTTP; wire.Request and
// wire.Response travel byte-for-byte inside it.
type wireMessage struct {
	OpID            uint64            `json:"op_id"`
	Version         uint8             `json:"version"`
	Op              wire.Operation    `json:"op"`
	Key             []byte            `json:"key,omitempty"`
	Value           []byte            `json:"value,omitempty"`
	Meta            map[string]string `json:"meta,omitempty"`
	TopologyVersion uint64            `json:"topology_version,omitempty"`
	Status          wire.Status       `json:"status"`
}

// Adapter is a wire.Adapter that POSTs a JSON-encoded wire.Request to
// http://<nodeAddr>/meridian/rpc and decodes a wire.Response from the body.
type Adapter struct {
	Client          *http.Client
	MaxPayloadBytes int64
}

// New creates an Adapter with a bounded-timeout client scoped to one
// Adapter instance, so callers can run adapters with different timeouts
// side by side.
func New(timeout time.Duration, maxPayloadBytes int64) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if maxPayloadBytes <= 0 {
		maxPayloadBytes = 4 << 20
	}
	return &Adapter{
		Client:          &http.Client{Timeout: timeout},
		MaxPayloadBytes: maxPayloadBytes,
	}
}

// Send implements wire.Adapter.
func (a *Adapter) Send(ctx context.Context, nodeAddr string, req wire.Request) (wire.Response, error) {
	msg := wireMessage{
		OpID: req.OpID, Version: req.Version, Op: req.Op,
		Key: req.Key, Value: req.Value, Meta: req.Meta,
		TopologyVersion: req.TopologyVersion,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return wire.Response{}, err
	}
	if int64(len(body)) > a.MaxPayloadBytes {
		return wire.Response{}, wire.ErrPayloadTooLarge
	}

	url := fmt.Sprintf("http://%s/meridian/rpc", nodeAddr)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return wire.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return wire.Response{}, wire.ErrTimeout
		}
		return wire.Response{}, fmt.Errorf("%w: %v", wire.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, a.MaxPayloadBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return wire.Response{}, err
	}
	if int64(len(raw)) > a.MaxPayloadBytes {
		return wire.Response{}, wire.ErrPayloadTooLarge
	}
	if resp.StatusCode >= 300 {
		return wire.Response{}, fmt.Errorf("%w: http %d", wire.ErrUnavailable, resp.StatusCode)
	}

	var out wireMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return wire.Response{}, err
	}
	return wire.Response{OpID: out.OpID, Status: out.Status, Value: out.Value, Meta: out.Meta}, nil
}

// Handler adapts a local request handler into an http.HandlerFunc serving
// the /meridian/rpc endpoint Send targets.
func Handler(handle func(context.Context, wire.Request) wire.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in wireMessage
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req := wire.Request{
			OpID: in.OpID, Version: in.Version, Op: in.Op,
			Key: in.Key, Value: in.Value, Meta: in.Meta,
			TopologyVersion: in.TopologyVersion,
		}
		resp := handle(r.Context(), req)
		out := wireMessage{
			OpID: resp.OpID, Status: resp.Status, Value: resp.Value, Meta: resp.Meta,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
