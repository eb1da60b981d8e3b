package errutil

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xeptore/flaw/v8"
)

func IsAny(err error, target error, targets ...error) (error, bool) {
	if errors.Is(err, target) {
		return target, true
	}
	for _, t := range targets {
		if errors.Is(err, t) {
			return t, true
		}
	}
	return nil, false
}

func IsContext(ctx context.Context) bool {
	err := ctx.Err()
	return nil != err && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// IsAccessDeniedResponse reports whether a 403 body is the XML error document
// the media CDN answers with once a signed locator has expired.
func IsAccessDeniedResponse(resp *http.Response, respBody []byte) (bool, error) {
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/xml") && !strings.HasPrefix(contentType, "text/xml") {
		return false, nil
	}

	var responseBody struct {
		XMLName   xml.Name `xml:"Error"`
		Code      string   `xml:"Code"`
		Message   string   `xml:"Message"`
		RequestID string   `xml:"RequestId"`
	}
	if err := xml.Unmarshal(respBody, &responseBody); nil != err {
		flawP := flaw.P{"err_debug_tree": Tree(err).FlawP()}
		return false, flaw.From(fmt.Errorf("failed to unmarshal XML response body: %v", err)).Append(flawP)
	}
	return responseBody.Code == "AccessDenied", nil
}
