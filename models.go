package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResetTokenTTL is how long a password-reset token stays valid.
const PasswordResetTokenTTL = time.Hour

// User is the credential-store record. The password is only ever stored as
// a bcrypt hash; PublicUser strips the hash and the internal tokens before
// anything leaves the service.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                     uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email                  string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash           string     `bun:"password_hash,notnull" json:"-"`
	FirstName              string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName               string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Role                   UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	IsActive               bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	IsEmailVerified        bool       `bun:"is_email_verified,notnull,default:false" json:"is_email_verified"`
	EmailVerificationToken string     `bun:"email_verification_token,nullzero" json:"-"`
	PasswordResetToken     string     `bun:"password_reset_token,nullzero" json:"-"`
	PasswordResetExpires   *time.Time `bun:"password_reset_expires,nullzero" json:"-"`
	LoginAttempts          int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt         *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	LastLoginAt            *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt              *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt              *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// NormalizeEmail lowercases and trims an email address. Uniqueness is
// enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword hashes plaintext into PasswordHash using the given bcrypt
// cost. It is a no-op when the plaintext already matches the stored hash,
// so callers can pass a record through unconditionally.
func (u *User) SetPassword(plaintext string, cost int) error {
	if u.PasswordHash != "" && ComparePasswordAndHash(plaintext, u.PasswordHash) == nil {
		return nil
	}

	hash, err := HashPassword(plaintext, cost)
	if err != nil {
		return err
	}

	u.PasswordHash = hash
	return nil
}

// VerifyPassword reports whether candidate matches the stored hash.
func (u *User) VerifyPassword(candidate string) bool {
	return ComparePasswordAndHash(candidate, u.PasswordHash) == nil
}

// GeneratePasswordResetToken sets a fresh single-use reset token with a
// one-hour expiry and returns it. The caller must persist the record.
func (u *User) GeneratePasswordResetToken() string {
	token := uuid.New().String()
	expires := time.Now().Add(PasswordResetTokenTTL)

	u.PasswordResetToken = token
	u.PasswordResetExpires = &expires

	return token
}

// ClearPasswordResetToken removes the reset token after a successful reset,
// enforcing single use.
func (u *User) ClearPasswordResetToken() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

// PasswordResetTokenValid reports whether the stored reset token is present
// and not yet expired.
func (u *User) PasswordResetTokenValid(now time.Time) bool {
	if u.PasswordResetToken == "" || u.PasswordResetExpires == nil {
		return false
	}
	return u.PasswordResetExpires.After(now)
}

// GenerateVerificationToken sets a fresh email-verification token and
// returns it. Set at registration, cleared once verification succeeds.
func (u *User) GenerateVerificationToken() string {
	token := uuid.New().String()
	u.EmailVerificationToken = token
	return token
}

// MarkEmailVerified flips the verified flag and clears the token.
func (u *User) MarkEmailVerified() {
	u.IsEmailVerified = true
	u.EmailVerificationToken = ""
}

// FullName joins first and last name for display purposes.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PublicUser is the client-facing projection of a User. It never carries
// the password hash or the internal verification/reset tokens.
type PublicUser struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Role            UserRole   `json:"role"`
	IsActive        bool       `json:"isActive"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	LastLoginAt     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// PublicUsers maps a slice of records to their public projections.
func PublicUsers(users []*User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
