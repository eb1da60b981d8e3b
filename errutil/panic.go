package errutil

import (
	"fmt"
)

// UnknownError describes an error that fell through every classification.
func UnknownError(err error) string {
	return fmt.Sprintf("unclassified error of type %T: %v", err, err)
}
