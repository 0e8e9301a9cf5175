package natsutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nats-io/nats.go"
)

type testMsg struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	carrier.Set("traceparent", "00-abc-def-01")
	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Fatalf("expected traceparent, got %q", got)
	}

	keys := carrier.Keys()
	if len(keys) != 1 {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestNatsHeaderCarrierNilHeader(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	if got := carrier.Get("missing"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if keys := carrier.Keys(); keys != nil {
		t.Fatalf("expected nil keys, got %v", keys)
	}
}

func TestMsgHandler_DeliversDecodedValue(t *testing.T) {
	var got testMsg
	calls := 0
	h := MsgHandler(func(_ context.Context, v testMsg) {
		got = v
		calls++
	})

	data, _ := json.Marshal(testMsg{Name: "test", Value: 42})
	h(&nats.Msg{Subject: "some.subject", Data: data})

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if got.Name != "test" || got.Value != 42 {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestMsgHandler_DropsMalformed(t *testing.T) {
	called := false
	h := MsgHandler(func(_ context.Context, _ testMsg) {
		called = true
	})

	h(&nats.Msg{Data: []byte("{invalid json")})
	if called {
		t.Fatal("handler should not run for malformed messages")
	}
}
