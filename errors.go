package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside the HTTP status. Clients
// branch on these rather than on message strings.
const (
	TextCodeEmailExists         = "EMAIL_EXISTS"
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeAccountDeactivated  = "ACCOUNT_DEACTIVATED"
	TextCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenRevoked        = "TOKEN_REVOKED"
	TextCodeNoToken             = "NO_TOKEN"
	TextCodeAuthRequired        = "AUTH_REQUIRED"
	TextCodeForbidden           = "FORBIDDEN"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeInvalidPassword     = "INVALID_PASSWORD"
	TextCodeCannotDeleteSelf    = "CANNOT_DELETE_SELF"
	TextCodeTooManyAttempts     = "TOO_MANY_ATTEMPTS"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
)

// ErrEmailExists is returned when registering an email that is already taken.
var ErrEmailExists = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the uniform invalid-credentials error. It
// deliberately does not distinguish a missing user from a wrong password.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountDeactivated is returned when a deactivated user presents valid
// credentials. The credential check runs first, so a wrong password on a
// deactivated account still reports invalid credentials.
var ErrAccountDeactivated = goerrors.New("account has been deactivated", goerrors.CategoryAuthz).
	WithTextCode(TextCodeAccountDeactivated).
	WithCode(goerrors.CodeForbidden)

// ErrInvalidRefreshToken covers signature failure, registry miss, and
// user-id mismatch on refresh. A rotated (already consumed) token lands here.
var ErrInvalidRefreshToken = goerrors.New("refresh token is invalid or no longer active", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken is the guard rejection for bearer tokens that fail
// signature, issuer, audience, or expiry checks.
var ErrInvalidToken = goerrors.New("token is invalid or expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidActionToken covers password-reset and email-verification tokens
// that match no account or are past their expiry. Unlike bearer token
// failures this is a payload problem, not an authentication failure.
var ErrInvalidActionToken = goerrors.New("token is invalid or expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is a narrower variant of ErrInvalidToken kept separate so
// clients can prompt a silent refresh instead of a re-login.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenRevoked is returned when an access token is found in the blacklist.
var ErrTokenRevoked = goerrors.New("token has been revoked", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoToken is returned when the Authorization header is missing or is not
// a bearer credential.
var ErrNoToken = goerrors.New("missing or malformed authorization header", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthRequired is the role-check rejection when no identity is attached
// to the request context.
var ErrAuthRequired = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(TextCodeAuthRequired).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when the authenticated role is not in the
// allowed set for a route.
var ErrForbidden = goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrUserNotFound is returned when a user record is gone or soft-deleted.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidPassword is returned by change-password when the current
// password does not verify.
var ErrInvalidPassword = goerrors.New("current password is incorrect", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidPassword).
	WithCode(goerrors.CodeUnauthorized)

// ErrCannotDeleteSelf guards the admin hard-delete endpoint.
var ErrCannotDeleteSelf = goerrors.New("administrators cannot delete their own account", goerrors.CategoryValidation).
	WithTextCode(TextCodeCannotDeleteSelf).
	WithCode(goerrors.CodeBadRequest)

// ErrTooManyLoginAttempts is returned when the failed-login counter exceeds
// the cooldown threshold.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts, try again later", goerrors.CategoryAuth).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// IsTokenExpiredError matches expired-token errors, including the legacy
// string form produced by the JWT parser.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError matches malformed-token errors by message.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed")
}
