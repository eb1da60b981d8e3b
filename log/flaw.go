package log

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
)

// Flaw renders err into the event. When err carries a *flaw.Flaw its records,
// joined errors and stack trace are expanded, and the full wrapped message
// is kept under "summary".
func Flaw(err error) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		flawErr := new(flaw.Flaw)
		if !errors.As(err, &flawErr) {
			e.Err(err)
			return
		}

		e.Str("summary", err.Error())
		e.Dict(
			"error",
			zerolog.
				Dict().
				Str("message", flawErr.Inner).
				Str("type_name", flawErr.InnerType).
				Str("syntax_representation", flawErr.InnerSyntaxRepr),
		)
		e.Array("records", flawRecords(flawErr))
		e.Array("joined_errors", flawJoinedErrors(flawErr))

		stackTraces := zerolog.Arr()
		for _, v := range flawErr.StackTrace {
			stackTraces.Dict(location(v.File, v.Line, v.Function))
		}
		e.Array("stack_traces", stackTraces)
	}
}

func location(file string, line int, function string) *zerolog.Event {
	return zerolog.Dict().Str("location", fmt.Sprintf("%s:%d", file, line)).Str("function", function)
}

func flawRecords(f *flaw.Flaw) *zerolog.Array {
	records := zerolog.Arr()
	for _, v := range f.Records {
		b, err := json.MarshalWithOption(v.Payload, json.UnorderedMap(), json.DisableNormalizeUTF8(), json.DisableHTMLEscape())
		if nil != err {
			payload := zerolog.Dict().Str("error", err.Error()).Str("raw", fmt.Sprintf("%#+v", v.Payload))
			records.Dict(zerolog.Dict().Str("function", v.Function).Dict("payload", payload))
			continue
		}
		records.Dict(zerolog.Dict().Str("function", v.Function).RawJSON("payload", b))
	}
	return records
}

func flawJoinedErrors(f *flaw.Flaw) *zerolog.Array {
	joined := zerolog.Arr()
	for _, v := range f.JoinedErrors {
		d := zerolog.
			Dict().
			Dict(
				"error",
				zerolog.
					Dict().
					Str("message", v.Message).
					Str("type_name", v.TypeName).
					Str("syntax_representation", v.SyntaxRepr),
			)
		if st := v.CallerStackTrace; nil != st {
			d.Dict("caller_stack_trace", location(st.File, st.Line, st.Function))
		} else {
			d.Stringer("caller_stack_trace", nil)
		}
		joined.Dict(d)
	}
	return joined
}
