// ABOUTME: Test helpers for validation tests
// ABOUTME: Wraps errors.As for concise assertions

package validation

import (
	"errors"

	"github.com/doklink/doklink-auth/internal/autherr"
)

func asError(err error, target **autherr.Error) bool {
	return errors.As(err, target)
}
