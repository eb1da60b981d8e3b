package errutil

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/xeptore/flaw/v8"
	"gopkg.in/yaml.v3"
)

func HTTPResponseFlawPayload(res *http.Response) flaw.P {
	out := make(flaw.P, 7)
	out["status"] = res.Status
	out["status_code"] = res.StatusCode
	out["content_length"] = res.ContentLength
	out["proto"] = res.Proto
	out["proto_major"] = res.ProtoMajor
	out["proto_minor"] = res.ProtoMinor
	headers := make(flaw.P, len(res.Header))
	for k, v := range res.Header {
		headers[k] = v
	}
	out["headers"] = headers
	return out
}

type flawDoc struct {
	Inner        string      `yaml:"inner"`
	Records      []recordDoc `yaml:"records"`
	JoinedErrors []joinedDoc `yaml:"joined_errors"`
	StackTrace   []frameDoc  `yaml:"stack_trace"`
}

type recordDoc struct {
	Function string         `yaml:"function"`
	Payload  map[string]any `yaml:"payload"`
}

type joinedDoc struct {
	Message string    `yaml:"message"`
	Caller  *frameDoc `yaml:"caller"`
}

type frameDoc struct {
	File     string `yaml:"file"`
	Line     int    `yaml:"line"`
	Function string `yaml:"function"`
}

func FlawToYAML(f *flaw.Flaw) ([]byte, error) {
	doc := flawDoc{
		Inner:        f.Inner,
		Records:      make([]recordDoc, len(f.Records)),
		JoinedErrors: make([]joinedDoc, len(f.JoinedErrors)),
		StackTrace:   make([]frameDoc, len(f.StackTrace)),
	}
	for i, v := range f.Records {
		doc.Records[i] = recordDoc{Function: v.Function, Payload: v.Payload}
	}
	for i, v := range f.JoinedErrors {
		doc.JoinedErrors[i] = joinedDoc{Message: v.Message, Caller: nil}
		if nil != v.CallerStackTrace {
			doc.JoinedErrors[i].Caller = &frameDoc{
				File:     v.CallerStackTrace.File,
				Line:     v.CallerStackTrace.Line,
				Function: v.CallerStackTrace.Function,
			}
		}
	}
	for i, v := range f.StackTrace {
		doc.StackTrace[i] = frameDoc{File: v.File, Line: v.Line, Function: v.Function}
	}

	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf).Encode(doc); nil != err {
		flawP := flaw.P{"err_debug_tree": Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to encode flaw to yaml: %v", err)).Append(flawP)
	}
	return buf.Bytes(), nil
}

// DumpFlaw writes f as flaw-<timestamp>.yaml into dir and returns the path.
func DumpFlaw(dir string, f *flaw.Flaw, now time.Time) (string, error) {
	b, err := FlawToYAML(f)
	if nil != err {
		return "", err
	}

	fileName := filepath.Join(dir, fmt.Sprintf("flaw-%s.yaml", now.Format("2006-01-02-15-04-05")))
	if err := os.WriteFile(fileName, b, 0o0644); nil != err {
		flawP := flaw.P{"file": fileName, "err_debug_tree": Tree(err).FlawP()}
		return "", flaw.From(fmt.Errorf("failed to write flaw dump: %v", err)).Append(flawP)
	}
	return fileName, nil
}

func IsFlaw(err error) bool {
	if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
		return true
	}
	return false
}
