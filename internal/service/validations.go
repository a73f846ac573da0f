package service

import (
	"sync"

	"github.com/go-playground/validator/v10"
	errorvalues "github.com/limbo/questlog/internal/error_values"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
	})
}

// mapValidationError converts validator failures into the domain's sentinel
// errors so callers can branch with errors.Is.
func mapValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fieldErr := range validationErrs {
		switch fieldErr.Field() {
		case "Name":
			return errorvalues.ErrEmptyName
		case "Priority":
			return errorvalues.ErrPriorityOutOfRange
		case "Progress":
			return errorvalues.ErrProgressOutOfRange
		case "ExperienceReward":
			return errorvalues.ErrNegativeExperience
		}
	}
	return err
}
