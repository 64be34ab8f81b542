// Package validation checks sign-up submissions and collects every
// field failure so forms can re-render all errors at once.
package validation

import (
	"errors"
	"html"
	"strings"

	"clubboard/web/service"

	"github.com/go-playground/validator/v10"
)

// SignUpForm is the sign-up submission. Username is normalized in
// place during validation.
type SignUpForm struct {
	Username             string `form:"username" validate:"min=3"`
	Password             string `form:"password" validate:"min=4"`
	PasswordConfirmation string `form:"passwordConfirmation"`
}

// FieldErrors maps a field name to its first failure message.
type FieldErrors map[string]string

// Any reports whether any field failed.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"Username": "Username must be at least 3 characters",
	"Password": "Password must be at least 4 characters",
}

// CheckSignUp normalizes and validates the form. The returned map is
// keyed by form field; the error return is reserved for store
// failures during the uniqueness check.
func CheckSignUp(form *SignUpForm, users *service.UserService) (FieldErrors, error) {
	form.Username = html.EscapeString(strings.TrimSpace(form.Username))
	form.Password = strings.TrimSpace(form.Password)

	fieldErrs := FieldErrors{}

	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			if _, seen := fieldErrs[formField(fe.Field())]; seen {
				continue
			}
			fieldErrs[formField(fe.Field())] = fieldMessages[fe.Field()]
		}
	}

	if form.PasswordConfirmation != form.Password {
		fieldErrs["passwordConfirmation"] = "Passwords must match."
	}

	if _, bad := fieldErrs["username"]; !bad {
		taken, err := users.IsUsernameTaken(form.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs["username"] = "Username is already taken"
		}
	}

	return fieldErrs, nil
}

// formField maps a struct field name to its form key.
func formField(structField string) string {
	switch structField {
	case "Username":
		return "username"
	case "Password":
		return "password"
	case "PasswordConfirmation":
		return "passwordConfirmation"
	}
	return structField
}
