package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/httputil"
	"github.com/xeptore/scplayer/soundcloud"
)

// Connect opens the media locator and returns its body for incremental
// reading. The caller owns the body.
func Connect(ctx context.Context, userAgent string, locator *soundcloud.MediaLocator) (io.ReadCloser, error) {
	flawP := flaw.P{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator.URL, nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}

		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, fmt.Errorf("%w: %w", ErrConnect, flaw.From(fmt.Errorf("failed to create media request: %v", err)).Append(flawP))
	}
	req.Header.Set("User-Agent", userAgent)

	client := http.Client{} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}

		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, fmt.Errorf("%w: %w", ErrConnect, flaw.From(fmt.Errorf("failed to send media request: %v", err)).Append(flawP))
	}
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if httputil.IsSuccessful(resp) {
		return resp.Body, nil
	}

	respBytes, err := httputil.ReadErrorResponseBody(ctx, resp)
	if closeErr := resp.Body.Close(); nil != closeErr {
		flawP["close_err_debug_tree"] = errutil.Tree(closeErr).FlawP()
	}
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		flawP["read_err_debug_tree"] = errutil.Tree(err).FlawP()
	}
	flawP["response_body"] = string(respBytes)

	if resp.StatusCode == http.StatusForbidden {
		expired, err := errutil.IsAccessDeniedResponse(resp, respBytes)
		if nil != err {
			return nil, fmt.Errorf("%w: %w", ErrConnect, flaw.From(errors.New("unexpected 403 response")).Join(err).Append(flawP))
		}
		flawP["locator_expired"] = expired
	}

	return nil, fmt.Errorf("%w: %w", ErrConnect, flaw.From(fmt.Errorf("unexpected status code: %d", resp.StatusCode)).Append(flawP))
}
