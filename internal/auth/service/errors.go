package service

import (
	"errors"

	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
)

// Missing user and wrong password share one error so callers cannot tell them apart.
var (
	errInvalidCredentials = dErrors.New(dErrors.CodeInvalidCredentials, models.MsgInvalidCredentials)
	errNoSession          = dErrors.New(dErrors.CodeUnauthorized, models.MsgUnauthorized)
	errSessionInvalid     = dErrors.New(dErrors.CodeUnauthorized, models.MsgSessionInvalid)
	errCurrentPassword    = dErrors.NewField(dErrors.CodeUnauthorized, "currentPassword", models.MsgCurrentPasswordWrong)
	errAlreadyRegistered  = dErrors.New(dErrors.CodeValidation, models.MsgAlreadyRegistered)
)

// inactiveError words the refusal differently for admins. The status value
// itself never leaks.
func inactiveError(role models.Role) error {
	if role == models.RoleAdmin {
		return dErrors.New(dErrors.CodeAccountInactive, models.MsgAdminInactive)
	}
	return dErrors.New(dErrors.CodeAccountInactive, models.MsgAccountInactive)
}

// internal wraps a dependency failure. Domain errors keep their code.
func internal(err error, msg string) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// transportError maps a session sink failure. An unbound transport is
// reported as unavailable, still a 500 to the client.
func transportError(err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "session transport unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "session transport failed")
}
