package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()

	commonTags := []string{
		"json",
		"param",
		"query",
		"header",
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range commonTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	// sourcenames accepts alphanumeric source identifiers, also as
	// comma-separated lists.
	validate.RegisterValidation("sourcenames", func(fl validator.FieldLevel) bool {
		slice, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		for _, s := range slice {
			for _, name := range strings.Split(s, ",") {
				if err := validate.Var(strings.TrimSpace(name), "required,alphanum,max=32"); err != nil {
					return false
				}
			}
		}
		return true
	})

	validate.RegisterValidation("optmode", func(fl validator.FieldLevel) bool {
		switch models.OptimizationMode(fl.Field().String()) {
		case "", models.OptimizeBestPrice, models.OptimizeFastest, models.OptimizeMinimumSources, models.OptimizeBalanced:
			return true
		default:
			return false
		}
	})

	return &Validator{
		validate: validate,
	}
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}
