package dto

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"confhub/internal/core/apperror"
)

var (
	registerOnce sync.Once
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)
)

// RegisterValidators installs the custom tags and reports fields by their form/json name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil && len(fl.Field().String()) == 5
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// BindingError turns a gin binding failure into a 400 with a per-field message map.
func BindingError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation("invalid request body").WithDetail("error", err.Error())
	}

	fields := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; !seen {
			names = append(names, name)
		}
		fields[name] = message(fe)
	}
	return apperror.NewFieldErrors("invalid fields: "+strings.Join(names, ", "), fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "hhmm":
		return "must be HH:MM"
	case "phone":
		return "must be a valid phone number"
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	case "uuid":
		return "must be a valid id"
	case "dive":
		return "is invalid"
	}
	return "is invalid"
}
