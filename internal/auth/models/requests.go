package models

import (
	"strings"
	"time"

	dErrors "campus/pkg/domain-errors"
	s "campus/pkg/string"
	"campus/pkg/validation"
)

// passwordPolicy is applied to every password a user chooses.
const passwordPolicy = "min=8,hasupper,hasdigit"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = validation.Messages{
	"email.required":    MsgEmailRequired,
	"email":             MsgEmailInvalid,
	"password.required": MsgPasswordRequired,
}

func (r *LoginRequest) Normalize() {
	r.Email = s.NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	return validation.Validate(r, loginMessages)
}

// ChangePasswordRequest is the body of POST /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

var newPasswordMessages = validation.Messages{
	"newPassword.min":      MsgNewPasswordTooShort,
	"newPassword.hasupper": MsgPasswordNeedsUpper,
	"newPassword.hasdigit": MsgPasswordNeedsDigit,
}

// Validate runs the checks in a fixed order: every field present, new
// password policy, confirmation match, new differs from current. Whether
// the current password is right is the service's job.
func (r *ChangePasswordRequest) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"currentPassword", r.CurrentPassword},
		{"newPassword", r.NewPassword},
		{"confirmNewPassword", r.ConfirmNewPassword},
	} {
		if f.value == "" {
			return dErrors.NewField(dErrors.CodeValidation, f.name, MsgMissingFields)
		}
	}
	if err := validation.ValidateVar(r.NewPassword, passwordPolicy, "newPassword", newPasswordMessages); err != nil {
		return err
	}
	if r.NewPassword != r.ConfirmNewPassword {
		return dErrors.NewField(dErrors.CodeValidation, "confirmNewPassword", MsgPasswordMismatch)
	}
	if r.NewPassword == r.CurrentPassword {
		return dErrors.NewField(dErrors.CodeValidation, "newPassword", MsgPasswordUnchanged)
	}
	return nil
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	DNI             string `json:"dni" validate:"required,dni"`
	FirstName       string `json:"firstName" validate:"required,notblank,max=100"`
	LastName        string `json:"lastName" validate:"required,notblank,max=150"`
	Email           string `json:"email" validate:"required,email,max=255"`
	DateOfBirth     string `json:"dateOfBirth" validate:"required,isodate"`
	Password        string `json:"password" validate:"required,min=8,hasupper,hasdigit"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

var registerMessages = validation.Messages{
	"dni":                      MsgDNIInvalid,
	"firstName":                MsgFirstNameRequired,
	"lastName":                 MsgLastNameRequired,
	"email.required":           MsgEmailRequired,
	"email":                    MsgEmailInvalid,
	"dateOfBirth":              MsgDateOfBirthInvalid,
	"password.required":        MsgPasswordRequired,
	"password.min":             MsgPasswordTooShort,
	"password.hasupper":        MsgPasswordNeedsUpper,
	"password.hasdigit":        MsgPasswordNeedsDigit,
	"confirmPassword.required": MsgPasswordMismatch,
}

func (r *RegisterRequest) Normalize() {
	s.TrimStrings(&r.FirstName, &r.LastName, &r.DateOfBirth)
	r.DNI = strings.ToUpper(strings.TrimSpace(r.DNI))
	r.Email = s.NormalizeEmail(r.Email)
}

func (r *RegisterRequest) Validate() error {
	if err := validation.Validate(r, registerMessages); err != nil {
		return err
	}
	if r.Password != r.ConfirmPassword {
		return dErrors.NewField(dErrors.CodeValidation, "confirmPassword", MsgPasswordMismatch)
	}
	return nil
}

// BirthDate parses DateOfBirth; only meaningful after Validate succeeded.
func (r *RegisterRequest) BirthDate() time.Time {
	t, _ := time.Parse(validation.DateLayout, r.DateOfBirth)
	return t
}
