package headers

import (
	"context"
	goerrors "errors"
	"testing"

	"fdg/internal/errors"
)

func TestClangTracerFailureIsSoft(t *testing.T) {
	// A front end that exits nonzero marks the header unparseable, not the
	// whole run broken.
	tracer := &ClangTracer{Binary: "false"}
	_, err := tracer.Trace(context.Background(), t.TempDir(), "broken.h")
	if !goerrors.Is(err, ErrTraceFailed) {
		t.Fatalf("err = %v, want ErrTraceFailed", err)
	}
}

func TestClangTracerMissingBinaryIsFatal(t *testing.T) {
	tracer := &ClangTracer{Binary: "fdg-no-such-compiler"}
	_, err := tracer.Trace(context.Background(), t.TempDir(), "a.h")
	if err == nil {
		t.Fatal("expected error for missing compiler")
	}
	if goerrors.Is(err, ErrTraceFailed) {
		t.Fatal("missing compiler must not be classified as a soft trace failure")
	}
	if errors.CodeOf(err) != errors.CompilerUnavailable {
		t.Errorf("code = %v, want CompilerUnavailable", errors.CodeOf(err))
	}
}

func TestClangTracerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tracer := &ClangTracer{Binary: "true"}
	_, err := tracer.Trace(ctx, t.TempDir(), "a.h")
	if !goerrors.Is(err, ErrTraceFailed) {
		t.Fatalf("err = %v, want ErrTraceFailed for cancelled trace", err)
	}
}
