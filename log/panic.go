package log

import (
	"bytes"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Panic renders a recovered value with the stack of the recovering goroutine,
// minus the frames of the recovery machinery itself.
func Panic(recovered any) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		lines := bytes.Split(debug.Stack(), []byte("\n"))
		if len(lines) > 9 {
			lines = lines[9:]
		}
		e.Dict(
			"panic",
			zerolog.
				Dict().
				Str("type", fmt.Sprintf("%T", recovered)).
				Any("content", recovered).
				Bytes("stack_traces", bytes.Join(lines, []byte("\n"))),
		)
	}
}
