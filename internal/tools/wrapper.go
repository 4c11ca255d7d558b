package tools

import (
	"context"
	"fmt"
	"time"
)

// Invoker is a crash-isolated tool entry point: it always yields a
// normalized Result, never an error or a panic.
type Invoker func(ctx context.Context, args map[string]any) Result

// Wrap turns a Handler into an Invoker. A returned error becomes a failure
// result carrying the error type and message as an assumption; a panic is
// recovered into the same shape. Invocation latency in milliseconds is
// merged into the payload under the private "_debug" key before the result
// is finalized.
//
// This is the only place escaped handler failures are caught. Handlers
// still do their own defensive checks for common empty/invalid inputs,
// because "no result" and "crashed" need different assumption text.
func Wrap(name string, h Handler) Invoker {
	return func(ctx context.Context, args map[string]any) (result Result) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				result = Normalize(name, map[string]any{
					"status": string(StatusFailure),
					"assumptions": []string{
						fmt.Sprintf("Tool %q panicked: %v", name, rec),
					},
				})
				attachLatency(&result, start)
			}
		}()

		raw, err := h(ctx, args)
		if err != nil {
			raw = map[string]any{
				"status": string(StatusFailure),
				"assumptions": []string{
					fmt.Sprintf("Tool %q failed with %T: %v", name, err, err),
				},
			}
		}

		result = Normalize(name, raw)
		attachLatency(&result, start)
		return result
	}
}

func attachLatency(r *Result, start time.Time) {
	debug, ok := r.Data["_debug"].(map[string]any)
	if !ok {
		debug = map[string]any{}
	}
	debug["latency_ms"] = time.Since(start).Milliseconds()
	r.Data["_debug"] = debug
}
