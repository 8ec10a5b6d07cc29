package httpserver

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
)

func TestWithRequestID_And_RequestIDFromCtx(t *testing.T) {
	t.Parallel()

	if id, ok := RequestIDFromCtx(context.Background()); ok || id != uuid.Nil {
		t.Fatalf("expected no request id in empty ctx")
	}

	want := uuid.Must(uuid.NewV4())
	got, ok := RequestIDFromCtx(WithRequestID(context.Background(), want))
	if !ok || got != want {
		t.Fatalf("mismatch: got %s ok=%v, want %s", got, ok, want)
	}

	bad := context.WithValue(context.Background(), requestIDKey, "not-uuid")
	if id, ok := RequestIDFromCtx(bad); ok || id != uuid.Nil {
		t.Fatalf("expected miss on wrong typed value")
	}
}
