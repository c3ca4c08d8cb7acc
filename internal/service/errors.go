package service

import (
	"errors"

	"carmarket/internal/models"
)

// asAppError unwraps err into target when it carries an AppError anywhere in
// its chain.
func asAppError(err error, target **models.AppError) bool {
	return errors.As(err, target)
}
