// Package forms decodes submitted values into tagged input structs and
// validates them. Error messages are i18n keys.
package forms

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"studioflow/models"
)

var (
	decoder  = schema.NewDecoder()
	encoder  = schema.NewEncoder()
	validate = validator.New(validator.WithRequiredStructEnabled())
)

func init() {
	decoder.SetAliasTag("form")
	decoder.IgnoreUnknownKeys(true)
	encoder.SetAliasTag("form")

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"notblank":   notBlank,
		"nospace":    noSpace,
		"complexity": complexity,
		"status":     validStatus,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// stopTags end a field's checks when they fail.
var stopTags = map[string]bool{"required": true, "notblank": true}

// messages maps "field.tag" to the i18n key shown under the field.
var messages = map[string]string{
	"username.required":       "UsernameRequired",
	"username.notblank":       "UsernameRequired",
	"username.min":            "UsernameLength",
	"username.max":            "UsernameLength",
	"username.nospace":        "UsernameNoSpaces",
	"password.required":       "PasswordRequired",
	"password.notblank":       "PasswordRequired",
	"password.min":            "PasswordLength",
	"password.max":            "PasswordLength",
	"password.complexity":     "PasswordComplexity",
	"new_password.min":        "PasswordLength",
	"new_password.max":        "PasswordLength",
	"new_password.complexity": "PasswordComplexity",
	"confirmation.required":   "ConfirmationRequired",
	"confirmation.notblank":   "ConfirmationRequired",
	"confirmation.eqfield":    "PasswordsMustMatch",
	"client_id.required":      "SelectValidClient",
	"client_id.number":        "SelectValidClient",
	"status.status":           "SelectValidStatus",
}

func message(field, tag string) string {
	if key, ok := messages[field+"."+tag]; ok {
		return key
	}
	return "InvalidField"
}

type Form struct {
	Values url.Values
	Errors map[string][]string
}

func New(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{Values: values, Errors: map[string][]string{}}
}

func (f *Form) Get(name string) string {
	return f.Values.Get(name)
}

func (f *Form) Set(name, value string) {
	f.Values.Set(name, value)
}

// AddError records msg for the field once.
func (f *Form) AddError(name, msg string) {
	for _, m := range f.Errors[name] {
		if m == msg {
			return
		}
	}
	f.Errors[name] = append(f.Errors[name], msg)
}

// Error returns the first message for the field, or "".
func (f *Form) Error(name string) string {
	if errs := f.Errors[name]; len(errs) > 0 {
		return errs[0]
	}
	return ""
}

// Messages returns every message for the field.
func (f *Form) Messages(name string) []string {
	return f.Errors[name]
}

func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// Int parses the named field, returning 0 when it is not an integer.
func (f *Form) Int(name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(f.Get(name)))
	return n
}

// Bind decodes the values into dst, a pointer to a struct with `form` names
// and `validate` rules, and records a message for every failing rule.
func (f *Form) Bind(dst any) error {
	if err := f.Decode(dst); err != nil {
		return err
	}
	f.check(dst)
	return nil
}

// Decode fills dst from the values without validating. Unknown keys, such
// as the CSRF token, are ignored.
func (f *Form) Decode(dst any) error {
	return decoder.Decode(dst, f.Values)
}

// check runs validate.Struct, which reports one failure per field. Rules after
// the failing one still run, unless it was a stop tag, so a field lists
// every problem at once.
func (f *Form) check(dst any) {
	var errs validator.ValidationErrors
	if !errors.As(validate.Struct(dst), &errs) {
		return
	}

	v := reflect.Indirect(reflect.ValueOf(dst))
	for _, fe := range errs {
		f.AddError(fe.Field(), message(fe.Field(), fe.Tag()))
		if stopTags[fe.Tag()] {
			continue
		}
		sf, ok := v.Type().FieldByName(fe.StructField())
		if !ok {
			continue
		}
		value := v.FieldByIndex(sf.Index).Interface()

		rules := strings.Split(sf.Tag.Get("validate"), ",")
		after := false
		for _, rule := range rules {
			tag, param, _ := strings.Cut(rule, "=")
			if !after {
				after = tag == fe.Tag()
				continue
			}
			var err error
			if tag == "eqfield" {
				err = validate.VarWithValue(value, v.FieldByName(param).Interface(), tag)
			} else {
				err = validate.Var(value, rule)
			}
			if err != nil {
				f.AddError(fe.Field(), message(fe.Field(), tag))
			}
		}
	}
}

// Fill encodes src into the form values, used to prefill edit pages.
func (f *Form) Fill(src any) error {
	return encoder.Encode(src, f.Values)
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func noSpace(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

// complexity requires a lowercase and an uppercase ASCII letter, a digit and
// a character that is neither letter nor digit.
func complexity(fl validator.FieldLevel) bool {
	var lower, upper, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}
	return lower && upper && digit && special
}

func validStatus(fl validator.FieldLevel) bool {
	_, err := models.ParseStatus(fl.Field().String())
	return err == nil
}
