package request

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// rules are the custom binding tags available to every DTO.
var rules = map[string]validator.Func{
	"notblank": notBlank,
}

// RegisterValidators installs the custom binding rules on gin's validator engine.
// It is safe to call more than once; every call reports the first outcome.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = register(v, rules)
	})
	return registerErr
}

// MustRegisterValidators is RegisterValidators for startup code; it panics on failure.
func MustRegisterValidators() {
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

func register(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validator: %w", tag, err)
		}
	}
	return nil
}

// notBlank rejects strings made only of whitespace. Nil pointers pass; pair with required when needed.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
