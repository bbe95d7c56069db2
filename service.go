package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// MaxLoginAttempts is the maximum number of failed attempts a user gets
// before the cool down kicks in.
var MaxLoginAttempts = 5

// CoolDownPeriod is the window in which we enforce the attempt limit.
var CoolDownPeriod = "24h"

// Service implements the account lifecycle: registration, login, token
// refresh, logout, password recovery, and email verification. It owns no
// transport concerns; HTTP controllers call into it and translate its
// errors.
type Service struct {
	repo     RepositoryManager
	sessions SessionTracker
	tokens   TokenVerifier
	mailer   Mailer
	cfg      Config
	logger   Logger
	now      func() time.Time
}

// RegisterInput carries the fields needed to create an account. Payload
// validation happens at the transport boundary; the service assumes the
// input is well formed.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      UserRole
}

// NewService wires the account service from its collaborators.
func NewService(repo RepositoryManager, sessions SessionTracker, tokens TokenVerifier, cfg Config) *Service {
	logger := Logger(defLogger{})
	return &Service{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		mailer:   NewLogMailer(logger),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Service) WithMailer(mailer Mailer) *Service {
	if mailer != nil {
		s.mailer = mailer
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *Service) WithClock(clock func() time.Time) *Service {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Register creates a new account and logs it in, returning the user with
// a fresh token pair. The email is normalized before the uniqueness check,
// the password is hashed, and a verification email goes out on success.
// Email delivery failures are logged, never surfaced.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, *TokenPair, error) {
	user := &User{
		Email:     NormalizeEmail(input.Email),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      RoleCustomer,
		IsActive:  true,
	}

	if input.Role != "" {
		role, ok := ParseRole(string(input.Role))
		if !ok {
			return nil, nil, goerrors.New("invalid role", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
		}
		user.Role = role
	}

	if err := user.SetPassword(input.Password, s.cfg.GetBcryptCost()); err != nil {
		return nil, nil, err
	}

	verificationToken := user.GenerateVerificationToken()

	created, err := s.repo.Users().Register(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, created.Email, verificationToken); err != nil {
		s.logger.Error("failed to send verification email to %s: %v", created.Email, err)
	}

	pair, err := s.sessions.IssuePair(ctx, created)
	if err != nil {
		return nil, nil, err
	}

	return created, pair, nil
}

// Login verifies credentials and issues a token pair. Failed password
// checks count toward the attempt limit; the limit check runs before the
// password check so a locked account reveals nothing about the password,
// and the deactivation check runs after it so a deactivated response
// proves the caller held valid credentials.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	user, err := s.repo.Users().GetByIdentifier(ctx, NormalizeEmail(email))
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, nil, ErrMismatchedHashAndPassword
		}
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// too many attempts in the window, cool off
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, nil, ErrTooManyLoginAttempts
	}

	if !user.VerifyPassword(password) {
		if err := s.repo.Users().TrackAttemptedLogin(ctx, user); err != nil {
			return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login attempt")
		}
		return nil, nil, ErrMismatchedHashAndPassword
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDeactivated
	}

	if err := s.repo.Users().TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Error("failed to track successful login for %s: %v", user.ID, err)
	}

	pair, err := s.sessions.IssuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is atomically
// consumed and a fresh pair is issued. A replayed or revoked token fails;
// previously issued access tokens keep working until they expire.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, live, err := s.sessions.ConsumeRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, ErrInvalidRefreshToken
	}

	if userID != claims.UserID() {
		s.logger.Warn("refresh token subject mismatch for user %s", userID)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during refresh")
	}

	if !user.IsActive {
		return nil, ErrUserNotFound
	}

	return s.sessions.IssuePair(ctx, user)
}

// Logout revokes both halves of a session: the access token goes on the
// blacklist for the rest of its lifetime and the refresh token is removed
// from the registry. Logging out twice is a no-op.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if err := s.sessions.Blacklist(ctx, accessToken); err != nil {
			return err
		}
	}

	if refreshToken != "" {
		if err := s.sessions.InvalidateRefresh(ctx, refreshToken); err != nil {
			return err
		}
	}

	return nil
}

// ForgotPassword starts password recovery. The response is identical
// whether or not the email belongs to an account, so the endpoint cannot
// be used to enumerate users. The generated token is returned for
// non-production echo; callers decide whether to expose it.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.Users().GetByIdentifier(ctx, NormalizeEmail(email))
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during password recovery")
	}

	token := user.GeneratePasswordResetToken()

	if err := s.repo.Users().SetPasswordResetToken(ctx, user.ID, token, *user.PasswordResetExpires); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store password reset token")
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.logger.Error("failed to send password reset email to %s: %v", user.Email, err)
	}

	return token, nil
}

// ResetPassword finishes recovery: the token must match an account and be
// inside its expiry window. Success burns the token and revokes every
// refresh token the account holds.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.Users().FindByResetToken(ctx, token)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrInvalidActionToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if !user.PasswordResetTokenValid(s.now()) {
		return ErrInvalidActionToken
	}

	hash, err := HashPassword(newPassword, s.cfg.GetBcryptCost())
	if err != nil {
		return err
	}

	if err := s.repo.Users().ResetPassword(ctx, user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset password")
	}

	s.revokeAllSessions(ctx, user.ID.String())

	return nil
}

// ChangePassword rotates the password of an authenticated user. The
// current password must verify, and success revokes every refresh token
// the account holds. Access tokens in flight keep working until expiry.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.Users().GetByIdentifier(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during password change")
	}

	if !user.VerifyPassword(currentPassword) {
		return ErrInvalidPassword
	}

	hash, err := HashPassword(newPassword, s.cfg.GetBcryptCost())
	if err != nil {
		return err
	}

	if err := s.repo.Users().ResetPassword(ctx, user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to change password")
	}

	s.revokeAllSessions(ctx, user.ID.String())

	return nil
}

// VerifyEmail consumes a verification token, marking the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	user, err := s.repo.Users().FindByVerificationToken(ctx, token)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidActionToken
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up verification token")
	}

	if err := s.repo.Users().MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email verified")
	}

	user.MarkEmailVerified()

	return user, nil
}

// GetUser loads a user by ID or email.
func (s *Service) GetUser(ctx context.Context, identifier string) (*User, error) {
	user, err := s.repo.Users().GetByIdentifier(ctx, identifier)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput carries the mutable profile fields. Empty fields are
// left untouched.
type UpdateProfileInput struct {
	FirstName string
	LastName  string
}

// UpdateProfile updates a user's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}

	updated, err := s.repo.Users().Update(ctx, user, repository.UpdateByID(user.ID.String()))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	return updated, nil
}

// ListUsers pages through accounts with optional role and active filters.
func (s *Service) ListUsers(ctx context.Context, filter ListUsersFilter) ([]*User, int, error) {
	return s.repo.Users().ListUsers(ctx, filter)
}

// SetUserActive activates or deactivates an account. Deactivation also
// revokes the account's refresh tokens so sessions die with it.
func (s *Service) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) (*User, error) {
	user, err := s.repo.Users().SetActive(ctx, userID, active)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !active {
		s.revokeAllSessions(ctx, userID.String())
	}

	return user, nil
}

// DeleteUser removes an account permanently. Admins cannot delete their
// own account; deactivate first, then have another admin delete.
func (s *Service) DeleteUser(ctx context.Context, actorID string, userID uuid.UUID) error {
	if actorID == userID.String() {
		return ErrCannotDeleteSelf
	}

	if err := s.repo.Users().DeleteByID(ctx, userID); err != nil {
		if goerrors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	s.revokeAllSessions(ctx, userID.String())

	return nil
}

func (s *Service) revokeAllSessions(ctx context.Context, userID string) {
	if err := s.sessions.InvalidateAllForUser(ctx, userID); err != nil {
		s.logger.Error("failed to revoke sessions for %s: %v", userID, err)
	}
}
