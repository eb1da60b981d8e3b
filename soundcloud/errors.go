package soundcloud

import (
	"errors"
	"fmt"
)

var (
	ErrClientIDNotFound  = errors.New("client id not found")
	ErrNetwork           = errors.New("network error")
	ErrHTTPStatus        = errors.New("unexpected http status")
	ErrDecode            = errors.New("response decode error")
	ErrUnsupportedFormat = errors.New("no progressive transcoding available")
	ErrStreamExchange    = errors.New("stream url exchange failed")
)

// HTTPStatusError is a non-2xx answer from the catalog. It matches ErrHTTPStatus.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrHTTPStatus.Error(), e.Status)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTPStatus //nolint:errorlint
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Err
}
