package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Languages are the base languages accepted by the import endpoint.
var Languages = []string{"enUS", "deDE", "esES", "esMX", "frFR", "itIT", "koKR", "ptBR", "ruRU", "zhCN", "zhTW"}

// MissingPhraseHandlers are the accepted policies for phrases that exist
// remotely but were not uploaded.
var MissingPhraseHandlers = []string{
	"DoNothing",
	"DeletePhrase",
	"DeleteIfTranslationsOnlyExistForSelectedLanguage",
	"DeleteIfNoTranslations",
}

// Metadata accompanies the localization payload.
type Metadata struct {
	Namespace             string `json:"namespace,omitempty"`
	Language              string `json:"language" validate:"language"`
	MissingPhraseHandling string `json:"missing-phrase-handling" validate:"missing_handler"`
}

// NewMetadata builds and validates upload metadata.
func NewMetadata(namespace, language, missing string) (Metadata, error) {
	m := Metadata{
		Namespace:             namespace,
		Language:              language,
		MissingPhraseHandling: missing,
	}
	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "language", oneOf(Languages))
	mustRegister(v, "missing_handler", oneOf(MissingPhraseHandlers))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}

// Validate checks the language and handler against the accepted values.
func (m Metadata) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		allowed := Languages
		what := "language"
		if e.Tag() == "missing_handler" {
			allowed = MissingPhraseHandlers
			what = "missing phrase handler"
		}
		msgs = append(msgs, fmt.Sprintf("invalid %s %q, must be one of: %s",
			what, e.Value(), strings.Join(allowed, ", ")))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// JSON encodes the metadata as sent in the form field.
func (m Metadata) JSON() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(b), nil
}
