// Package validators validates and sanitizes incoming request payloads.
package validators

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
	"github.com/truemail-rb/truemail-go"
)

const verifierEmail = "team@mail.server-notes.app"

// Validator bundles the struct validator, the email verifier and the sanitizing policy.
type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
	policy      *bluemonday.Policy
}

var (
	instance      *Validator
	once          sync.Once
	configuration *truemail.Configuration
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9.\-_]+$`)
)

var errNotAPointer = errors.New("payload must be a pointer to a struct")

// GetValidator returns the shared validator, creating it on first use.
func GetValidator() *Validator {
	once.Do(func() {
		// Regex validation only, no MX or SMTP lookups.
		config, err := truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         verifierEmail,
			ValidationTypeDefault: "regex",
		})
		if err != nil {
			log.Warn("Error configuring email verification, falling back to syntax checks: ", err)
		}
		configuration = config

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: validateEmail,
			policy:      bluemonday.StrictPolicy(),
		}

		registerCustomValidators(instance)
	})

	return instance
}

func validateEmail(email string) bool {
	if configuration == nil {
		return true
	}
	return truemail.IsValid(email, configuration)
}

func registerCustomValidators(v *Validator) {
	if err := v.Validate.RegisterValidation("username_validation", usernameValidation); err != nil {
		log.Error("Error registering username validation: ", err)
	}

	if err := v.Validate.RegisterValidation("nomarkup", func(fl validator.FieldLevel) bool {
		return !v.ContainsMarkup(fl.Field().String())
	}); err != nil {
		log.Error("Error registering markup validation: ", err)
	}

	if err := v.Validate.RegisterValidation("email_check", func(fl validator.FieldLevel) bool {
		return v.VerifyEmail(fl.Field().String())
	}); err != nil {
		log.Error("Error registering email validation: ", err)
	}
}

func usernameValidation(fl validator.FieldLevel) bool {
	// Allows a-z, A-Z, 0-9, ., - and _
	return usernameRegex.MatchString(fl.Field().String())
}

// SanitizeData strips markup from every string, *string and []string field of the given struct pointer.
// The text is stored and also emailed, so it is cleaned before it reaches the database.
// Fields tagged `sanitize:"-"` are left as sent, passwords are hashed exactly as typed.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Pointer || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return errNotAPointer
	}

	value = value.Elem()
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() || value.Type().Field(i).Tag.Get("sanitize") == "-" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(v.SanitizeText(field.String()))
		case reflect.Pointer:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(v.SanitizeText(field.Elem().String()))
			}
		case reflect.Slice:
			if field.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := 0; j < field.Len(); j++ {
				field.Index(j).SetString(v.SanitizeText(field.Index(j).String()))
			}
		}
	}

	return nil
}

// SanitizeText removes all HTML from the given text and trims surrounding whitespace.
func (v *Validator) SanitizeText(text string) string {
	return strings.TrimSpace(v.policy.Sanitize(text))
}

// ContainsMarkup reports whether sanitizing text would remove anything from it.
// Characters that are merely escaped, such as a lone & or <, are not markup.
func (v *Validator) ContainsMarkup(text string) bool {
	return html.UnescapeString(v.policy.Sanitize(text)) != text
}
