package forms

import (
	"errors"
	"strings"

	"care4-server/internal/utils"

	"github.com/go-playground/validator/v10"
)

// Validate checks every field of values against the schema rules and returns
// one message per failing field. A nil map means the values are valid.
func (s *Schema) Validate(values map[string]any) map[string]string {
	var fields map[string]string
	for name := range s.Rules {
		if msg := s.ValidateField(name, values[name]); msg != "" {
			if fields == nil {
				fields = make(map[string]string)
			}
			fields[name] = msg
		}
	}
	return fields
}

// ValidateField checks one value and returns its message, or "" when valid.
// A value of a type the rule cannot check is reported as invalid.
func (s *Schema) ValidateField(name string, value any) (msg string) {
	rule, ok := s.Rules[name]
	if !ok {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			msg = s.label(name) + " has an invalid value"
		}
	}()
	if err := utils.Validator().Var(value, rule); err != nil {
		return s.message(name, err)
	}
	return ""
}

func (s *Schema) label(name string) string {
	if d, ok := s.Field(name); ok && d.Label != "" {
		return d.Label
	}
	return name
}

func (s *Schema) message(name string, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if msg, ok := s.Messages[name+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := s.Messages[name]; ok {
		return msg
	}

	return s.label(name) + " " + strings.TrimSpace(utils.TranslateFieldError(fe))
}
