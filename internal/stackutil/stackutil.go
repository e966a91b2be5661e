package stackutil

import (
	"fmt"
	"runtime"
	"strings"
)

// GetStack returns up to depth frames of the calling goroutine, leaving out
// the caller's own frame plus skip more.
func GetStack(depth, skip int) []runtime.Frame {
	pc := make([]uintptr, depth+skip+2)

	// skip runtime.Callers and this function
	n := runtime.Callers(2, pc)
	if n == 0 {
		return []runtime.Frame{}
	}

	frames := runtime.CallersFrames(pc[:n])

	var a []runtime.Frame

	for i := 0; len(a) < depth; i++ {
		frame, more := frames.Next()

		if i >= skip {
			a = append(a, frame)
		}

		if !more {
			break
		}
	}

	return a
}

// WithoutRuntime drops frames that belong to the runtime package, such as
// the panic machinery between a recover and the panicking call.
func WithoutRuntime(a []runtime.Frame) []runtime.Frame {
	var r []runtime.Frame

	for _, f := range a {
		if strings.HasPrefix(f.Function, "runtime.") {
			continue
		}

		r = append(r, f)
	}

	return r
}

func FormatStack(a []runtime.Frame) []string {
	r := make([]string, len(a))
	for i, e := range a {
		r[i] = FormatStackFrame(e)
	}
	return r
}

func FormatStackFrame(f runtime.Frame) string {
	return fmt.Sprintf("%s:%d: %s", f.File, f.Line, f.Function)
}
