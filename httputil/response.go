package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/errutil"
)

const maxErrorBodyPreview = 4 * 1024

func readResponseBody(ctx context.Context, r io.Reader) ([]byte, error) {
	respBody, err := io.ReadAll(r)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
		}
	}
	return respBody, nil
}

// ReadResponseBody reads the whole body and rejects an empty one.
func ReadResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp.Body)
	if nil != err {
		return nil, err
	}
	if len(respBody) == 0 {
		return nil, flaw.From(errors.New("unexpected empty response body")).Append(flaw.P{"response": errutil.HTTPResponseFlawPayload(resp)})
	}
	return respBody, nil
}

func ReadOptionalResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	return readResponseBody(ctx, resp.Body)
}

// ReadErrorResponseBody reads at most a few kilobytes of a failed response for diagnostics.
func ReadErrorResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	return readResponseBody(ctx, io.LimitReader(resp.Body, maxErrorBodyPreview))
}

func IsSuccessful(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
