package models

// UserView is the public projection of a user returned on login.
type UserView struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Role               Role   `json:"role"`
	FirstName          string `json:"firstName"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

func NewUserView(u *User) UserView {
	return UserView{
		ID:                 u.ID.String(),
		Email:              u.Email,
		Role:               u.Role,
		FirstName:          u.FirstName,
		MustChangePassword: u.MustChangePassword,
	}
}

// LoginResult is the service outcome of a successful login.
type LoginResult struct {
	User  UserView
	Token *SessionToken
}

// ChangePasswordResult carries the replacement token.
type ChangePasswordResult struct {
	Token *SessionToken
}

// MessageResponse is the body of endpoints that only confirm an action.
// Token is set when the body transport is enabled.
type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token,omitempty"`
	User    UserView `json:"user"`
}
