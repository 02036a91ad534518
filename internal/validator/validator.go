package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// trans is the singleton English translator for validation errors.
	trans ut.Translator
	// engine is Gin's binding validator, shared with non-request validation.
	engine *govalidator.Validate
	once   sync.Once
	// setupErr is the outcome of the first Setup call.
	setupErr error
)

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup; later calls return the first result.
func Setup() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			v = govalidator.New()
			v.SetTagName("binding")
		}
		engine = v

		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// Register English translations.
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
			setupErr = fmt.Errorf("register translations: %w", err)
			return
		}

		if err := v.RegisterValidation("fraction_if", fractionIf); err != nil {
			setupErr = fmt.Errorf("register fraction_if: %w", err)
			return
		}
		setupErr = v.RegisterTranslation("fraction_if", trans,
			func(t ut.Translator) error {
				return t.Add("fraction_if", "{0} must be between 0 and 1 when {1} is set", true)
			},
			func(t ut.Translator, fe govalidator.FieldError) string {
				msg, _ := t.T("fraction_if", fe.Field(), fe.Param())
				return msg
			},
		)
		if setupErr != nil {
			setupErr = fmt.Errorf("register fraction_if translation: %w", setupErr)
		}
	})
	return setupErr
}

// fractionIf requires a number in [0,1] if the boolean sibling named by the
// tag parameter is true.
func fractionIf(fl govalidator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	toggle := parent.FieldByName(fl.Param())
	if !toggle.IsValid() || toggle.Kind() != reflect.Bool || !toggle.Bool() {
		return true
	}
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return f >= 0 && f <= 1
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := fl.Field().Int()
		return i >= 0 && i <= 1
	default:
		return false
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Struct validates v outside of a request. Returns nil if v is valid.
func Struct(v interface{}) map[string]string {
	if err := Setup(); err != nil {
		return map[string]string{"detail": err.Error()}
	}
	if err := engine.Struct(v); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// StructSchema validates criteria configurations by their struct tags.
type StructSchema struct{}

// Validate implements criteria.Schema.
func (StructSchema) Validate(v interface{}) map[string]string {
	return Struct(v)
}
