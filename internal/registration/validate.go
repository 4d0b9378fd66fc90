package registration

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hackgods/clinidesk/internal/document"
)

// FieldErrors maps a json field path to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var birthDateLayouts = []string{"02/01/2006", "2006-01-02"}

// ParseBirthDate accepts DD/MM/YYYY or YYYY-MM-DD.
func ParseBirthDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var messages = map[string]string{
	"required":  "is required",
	"min":       "must have at least %s characters",
	"max":       "must have at most %s characters",
	"email":     "must be a valid email",
	"eqfield":   "must match %s",
	"cpf":       "is not a valid CPF",
	"cnpj":      "is not a valid CNPJ",
	"cep":       "must have 8 digits",
	"birthdate": "must be a past date as DD/MM/YYYY or YYYY-MM-DD",
}

// Validator checks registration forms and reports problems per field.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	out := &Validator{v: v, now: now}
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return document.ValidCPF(fl.Field().String())
	})
	_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return document.ValidCNPJ(fl.Field().String())
	})
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		return document.ValidCEP(fl.Field().String())
	})
	_ = v.RegisterValidation("birthdate", out.validBirthDate)
	return out
}

func (v *Validator) validBirthDate(fl validator.FieldLevel) bool {
	t, ok := ParseBirthDate(fl.Field().String())
	if !ok {
		return false
	}
	return !t.After(v.now())
}

// Struct returns FieldErrors when form breaks any rule, nil otherwise.
func (v *Validator) Struct(form any) error {
	err := v.v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		param := fe.Param()
		if fe.Tag() == "eqfield" {
			param = "password"
		}
		return fmt.Sprintf(msg, param)
	}
	return msg
}
