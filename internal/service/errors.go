package service

import (
	"errors"
	"fmt"

	"go-shoeroom/internal/apperror"
	"go-shoeroom/internal/repository"
	"go-shoeroom/pkg/validator"
)

// storeError classifies a repository failure. Errors that already carry a
// code pass through unchanged.
func storeError(err error) error {
	var appErr *apperror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrUnavailable):
		return apperror.StoreUnavailable(err)
	default:
		return apperror.Unexpected(err)
	}
}

// validate runs struct validation and reports the first failure, with the
// full list of failed fields in the details.
func validate(req any) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return apperror.InvalidRequest(
		fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", first.FailedField, first.Tag),
		map[string]any{"fields": errs},
	)
}
