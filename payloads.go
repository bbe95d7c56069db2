package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// RegisterPayload is the body for POST /auth/register.
type RegisterPayload struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
			validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
			validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
			validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
			validation.Field(&r.Role, validation.In(
				string(RoleCustomer),
				string(RoleVendor),
				string(RoleAdmin),
			)),
		)
	}, "Invalid registration payload")
}

// LoginPayload is the body for POST /auth/login.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login payload")
}

// RefreshPayload is the body for POST /auth/refresh.
type RefreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.RefreshToken, validation.Required),
		)
	}, "Invalid refresh payload")
}

// LogoutPayload is the body for POST /auth/logout. The refresh token is
// optional; the access token comes from the Authorization header.
type LogoutPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordPayload is the body for POST /auth/forgot-password.
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

func (r ForgotPasswordPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "Invalid password recovery payload")
}

// ResetPasswordPayload is the body for POST /auth/reset-password.
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r ResetPasswordPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Token, validation.Required),
			validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		)
	}, "Invalid password reset payload")
}

// ChangePasswordPayload is the body for POST /auth/change-password.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.CurrentPassword, validation.Required),
			validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
		)
	}, "Invalid password change payload")
}

// UpdateProfilePayload is the body for PUT /users/profile. Empty fields
// are left untouched.
type UpdateProfilePayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r UpdateProfilePayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.FirstName, validation.Length(1, 200)),
			validation.Field(&r.LastName, validation.Length(1, 200)),
		)
	}, "Invalid profile payload")
}

// UpdateStatusPayload is the body for PUT /users/:id/status.
type UpdateStatusPayload struct {
	IsActive *bool `json:"isActive"`
}

func (r UpdateStatusPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.IsActive, validation.NotNil),
		)
	}, "Invalid status payload")
}
