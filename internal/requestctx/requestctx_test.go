package requestctx

import (
	"context"
	"testing"
)

func TestRequestValuesRoundTrip(t *testing.T) {
	ctx := WithClientIP(WithRequestID(context.Background(), "req-1"), "10.0.0.1")
	if GetRequestID(ctx) != "req-1" {
		t.Fatalf("unexpected request id %q", GetRequestID(ctx))
	}
	if GetClientIP(ctx) != "10.0.0.1" {
		t.Fatalf("unexpected ip %q", GetClientIP(ctx))
	}
	if GetRequestID(context.Background()) != "" {
		t.Fatal("expected empty request id")
	}
}
