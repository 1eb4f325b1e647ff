package application

import (
	"errors"

	"github.com/oksasatya/agency-identity/internal/domain/apperror"
)

// classify passes classified errors through and marks the rest internal.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Internal(err)
}
