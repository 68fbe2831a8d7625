package validator

import (
	"github.com/go-playground/validator/v10"
)

// Shared instance; validator caches struct metadata, so reuse matters.
var validate = validator.New()

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}

// Struct validates v against its validate tags using the shared instance.
func Struct(v interface{}) error {
	return validate.Struct(v)
}
