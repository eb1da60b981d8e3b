package must

import (
	"errors"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/errutil"
)

// BeFlaw returns the *flaw.Flaw in err's chain and panics when there is none.
func BeFlaw(err error) *flaw.Flaw {
	if f := new(flaw.Flaw); errors.As(err, &f) {
		return f
	}
	panic("expected a flaw in the error chain: " + errutil.UnknownError(err))
}
