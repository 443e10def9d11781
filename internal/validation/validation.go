// Package validation checks registration forms before anything is sent to the
// store API. Validation is pure: the result depends only on the form and the
// instant passed in.
package validation

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Field keys of a FieldErrors map.
const (
	FieldFullName        = "full_name"
	FieldEmail           = "email"
	FieldDateOfBirth     = "date_of_birth"
	FieldGender          = "gender"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// RegistrationForm is the state of a registration form as typed by the user.
type RegistrationForm struct {
	FullName        string `json:"full_name" validate:"required_trimmed,trimmed_min=2,trimmed_max=100"`
	Email           string `json:"email" validate:"required_trimmed,simple_email"`
	DateOfBirth     string `json:"date_of_birth" validate:"required_trimmed,past_date"`
	Gender          Gender `json:"gender" validate:"required"`
	Password        string `json:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// FieldErrors maps a field key to a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Valid() bool { return len(e) == 0 }

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Clear drops the message of a field the user is editing.
func (e FieldErrors) Clear(field string) {
	delete(e, field)
}

var messages = map[string]map[string]string{
	FieldFullName: {
		"required_trimmed": "Full name is required",
		"trimmed_min":      "Full name must be at least 2 characters",
		"trimmed_max":      "Full name must not exceed 100 characters",
	},
	FieldEmail: {
		"required_trimmed": "Email is required",
		"simple_email":     "Email is invalid",
	},
	FieldDateOfBirth: {
		"required_trimmed": "Date of birth is required",
		"past_date":        "Date of birth must be in the past",
	},
	FieldGender: {
		"required": "Gender is required",
	},
	FieldPassword: {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
		"max":      "Password must not exceed 100 characters",
	},
	FieldConfirmPassword: {
		"required": "Please confirm your password",
		"eqfield":  "Passwords do not match",
	},
}

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

func shared() *validator.Validate {
	engineOnce.Do(func() { engine = NewValidator() })
	return engine
}

// Validate applies every field rule and returns the failures, one message per field.
func Validate(form RegistrationForm, now time.Time) FieldErrors {
	errs := FieldErrors{}
	err := shared().StructCtx(WithNow(context.Background(), now), form)
	if err == nil {
		return errs
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs
	}
	for _, fe := range ves {
		field := fe.Field()
		if msg, ok := messages[field][fe.Tag()]; ok {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateAccount checks the account fields only (name, email, password and its
// confirmation). Gender and date of birth are collected after sign-up.
func ValidateAccount(form RegistrationForm, now time.Time) FieldErrors {
	errs := Validate(form, now)
	errs.Clear(FieldGender)
	errs.Clear(FieldDateOfBirth)
	return errs
}
