package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/farmstock-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reportar los campos con su nombre JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError errores de forma de un comando, por campo. Coincide con domain.ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "entrada inválida: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

// Validate valida un comando en el borde; cualquier error de forma se rechaza antes del caso de uso.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		key := strings.SplitN(fe.Namespace(), ".", 2)
		field := fe.Field()
		if len(key) == 2 {
			field = key[1]
		}
		if fe.Param() != "" {
			out.Fields[field] = fe.Tag() + "=" + fe.Param()
		} else {
			out.Fields[field] = fe.Tag()
		}
	}
	return out
}
