package service

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"atlasdocs/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validatePatch enforces the column limits declared on model.DocumentPatch.
func validatePatch(p model.DocumentPatch) error {
	return getValidator().Struct(p)
}
