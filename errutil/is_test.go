package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scplayer/errutil"
)

func TestIsAny(t *testing.T) {
	t.Parallel()

	errA := errors.New("a")
	errB := errors.New("b")

	target, ok := errutil.IsAny(errors.Join(errors.New("c"), errB), errA, errB)
	assert.True(t, ok)
	assert.Equal(t, errB, target)

	target, ok = errutil.IsAny(errors.New("c"), errA, errB)
	assert.False(t, ok)
	assert.NoError(t, target)
}

func TestIsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	assert.False(t, errutil.IsContext(ctx))
	cancel()
	assert.True(t, errutil.IsContext(ctx))
}

func TestIsAccessDeniedResponse(t *testing.T) {
	t.Parallel()

	t.Run("AccessDenied", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{Header: http.Header{"Content-Type": []string{"application/xml"}}} //nolint:exhaustruct
		body := []byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message><RequestId>X</RequestId></Error>`)
		ok, err := errutil.IsAccessDeniedResponse(resp, body)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NonXMLBody", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{Header: http.Header{"Content-Type": []string{"text/html"}}} //nolint:exhaustruct
		ok, err := errutil.IsAccessDeniedResponse(resp, []byte("<html></html>"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("MalformedXML", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{Header: http.Header{"Content-Type": []string{"application/xml"}}} //nolint:exhaustruct
		ok, err := errutil.IsAccessDeniedResponse(resp, []byte("<Error>"))
		require.Error(t, err)
		assert.True(t, errutil.IsFlaw(err))
		assert.False(t, ok)
	})
}
