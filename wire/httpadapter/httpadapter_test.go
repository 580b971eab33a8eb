// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package httpadapter

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agilira/meridian/wire"
)

func TestSendRoundTripsThroughHandler(t *testing.T) {
	srv := httptest.NewServer(Handler(func(ctx context.Context, req wire.Request) wire.Response {
		return wire.Response{OpID: req.OpID, Status: wire.StatusOK, Value: append([]byte("echo:"), req.Value...)}
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	a := New(time.Second, 0)

	resp, err := a.Send(context.Background(), addr, wire.Request{OpID: 7, Op: wire.OpGet, Value: []byte("hi")})
	if err != nil {
		t.Fatalf("Send() = %v", err)
	}
	if resp.OpID != 7 || resp.Status != wire.StatusOK || string(resp.Value) != "echo:hi" {
		t.Fatalf("Send() = %+v, want echoed value", resp)
	}
}

func TestSendRejectsOversizedRequest(t *testing.T) {
	a := New(time.Second, 8)
	_, err := a.Send(context.Background(), "example.invalid:1", wire.Request{
		Value: []byte("this payload is definitely longer than eight bytes"),
	})
	if err != wire.ErrPayloadTooLarge {
		t.Fatalf("Send() err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestSendUnreachableNodeReturnsErrUnavailable(t *testing.T) {
	a := New(100*time.Millisecond, 0)
	_, err := a.Send(context.Background(), "127.0.0.1:1", wire.Request{})
	if err == nil {
		t.Fatal("Send() to an unreachable node succeeded, want error")
	}
}
