package service

import (
	"fmt"

	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

// internalError hides err behind the generic server error while keeping the
// cause for the error logger.
func internalError(err error, action string) *appErrors.Error {
	return appErrors.Wrap(fmt.Errorf("%s: %w", action, err), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}

func validationError(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}
