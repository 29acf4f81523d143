package headers

import (
	"bytes"
	"context"
	goerrors "errors"
	"fmt"
	"os/exec"
	"time"

	"fdg/internal/errors"
	"fdg/internal/logging"
)

// ErrTraceFailed marks a header that cannot be parsed standalone, typically
// because it depends on macros only an umbrella header defines. The header is
// excluded from resolution; this is not escalated as an error.
var ErrTraceFailed = goerrors.New("header cannot be parsed standalone")

// Tracer produces the raw include trace for one header file.
type Tracer interface {
	// Trace runs a dependency trace for header (a path relative to
	// headerDir) and returns the diagnostic text. It returns an error
	// wrapping ErrTraceFailed when the header itself cannot be compiled,
	// and a hard error when the compiler cannot be invoked at all.
	Trace(ctx context.Context, headerDir, header string) (string, error)
}

// ClangTracer traces headers by running a clang-compatible front end in
// syntax-only mode with the verbose include trace enabled. One external
// process is spawned per header; a failure is a deterministic property of the
// header's content, so there are no retries.
type ClangTracer struct {
	// Binary is the compiler front end, e.g. "clang++"
	Binary string
	// Timeout bounds one invocation; zero means no bound. A timed-out
	// trace is treated exactly like a failed one.
	Timeout time.Duration
	// Logger receives the compiler diagnostics of failed traces at trace
	// level
	Logger *logging.Logger
}

// Trace implements Tracer.
func (t *ClangTracer) Trace(ctx context.Context, headerDir, header string) (string, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.Binary, "-fsyntax-only", "-H", "-I.", header)
	cmd.Dir = headerDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stderr.String(), nil
	}

	var exitErr *exec.ExitError
	if goerrors.As(err, &exitErr) || ctx.Err() != nil {
		if t.Logger != nil {
			t.Logger.Trace("header trace failed", map[string]interface{}{
				"header": header,
				"output": stderr.String(),
			})
		}
		return "", fmt.Errorf("%w: %s", ErrTraceFailed, header)
	}

	// Anything else means the compiler could not be spawned; that is fatal
	// for the whole resolution, not just this header.
	return "", errors.New(errors.CompilerUnavailable,
		"failed to invoke "+t.Binary, err)
}
