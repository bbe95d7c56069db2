package auth

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController serves the /auth endpoints.
type HTTPController struct {
	service   *Service
	guard     *Guard
	responder *JSONResponder
	ctxKey    string
	echoReset bool
	logger    Logger
}

// NewHTTPController wires the auth endpoints. The reset token is echoed in
// the forgot-password response only outside production.
func NewHTTPController(service *Service, guard *Guard, cfg Config) *HTTPController {
	responder := NewJSONResponder(cfg)
	return &HTTPController{
		service:   service,
		guard:     guard,
		responder: responder,
		ctxKey:    cfg.GetContextKey(),
		echoReset: cfg.GetEnvironment() != "production",
		logger:    defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		c.logger = logger
		c.responder.WithLogger(logger)
	}
	return c
}

// RegisterRoutes mounts the auth endpoints on the given group.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/register", c.Register)
	group.Post("/login", c.Login)
	group.Post("/refresh", c.Refresh)
	group.Post("/logout", c.Logout, c.guard.Authenticate())
	group.Post("/forgot-password", c.ForgotPassword)
	group.Post("/reset-password", c.ResetPassword)
	group.Post("/change-password", c.ChangePassword, c.guard.Authenticate())
	group.Get("/verify-email/:token", c.VerifyEmail)
}

// Register creates an account and returns it with a fresh token pair.
func (c *HTTPController) Register(ctx router.Context) error {
	payload := new(RegisterPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	user, pair, err := c.service.Register(ctx.Context(), RegisterInput{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      UserRole(payload.Role),
	})
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusCreated, "account created", map[string]any{
		"user":   user.Public(),
		"tokens": pair,
	})
}

// Login verifies credentials and returns the user with a token pair.
func (c *HTTPController) Login(ctx router.Context) error {
	payload := new(LoginPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	user, pair, err := c.service.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "login successful", map[string]any{
		"user":   user.Public(),
		"tokens": pair,
	})
}

// Refresh rotates a refresh token for a new pair.
func (c *HTTPController) Refresh(ctx router.Context) error {
	payload := new(RefreshPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	pair, err := c.service.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "token refreshed", map[string]any{
		"tokens": pair,
	})
}

// Logout revokes the presented access token and, when supplied, the
// refresh token. Runs behind the guard.
func (c *HTTPController) Logout(ctx router.Context) error {
	payload := new(LogoutPayload)
	if err := ctx.Bind(payload); err != nil {
		// body is optional on logout
		payload = &LogoutPayload{}
	}

	accessToken, err := c.guard.extractToken(ctx)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	if err := c.service.Logout(ctx.Context(), accessToken, payload.RefreshToken); err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "logged out", nil)
}

// ForgotPassword always responds with the same generic message so the
// endpoint cannot confirm whether an email is registered.
func (c *HTTPController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	token, err := c.service.ForgotPassword(ctx.Context(), payload.Email)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	var data map[string]any
	if c.echoReset && token != "" {
		data = map[string]any{"resetToken": token}
	}

	return c.responder.OK(ctx, router.StatusOK, "if the email is registered, a reset link has been sent", data)
}

// ResetPassword finishes password recovery with a valid reset token.
func (c *HTTPController) ResetPassword(ctx router.Context) error {
	payload := new(ResetPasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	if err := c.service.ResetPassword(ctx.Context(), payload.Token, payload.Password); err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "password has been reset", nil)
}

// ChangePassword rotates the authenticated user's password.
func (c *HTTPController) ChangePassword(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.ctxKey)
	if !ok {
		return c.responder.Err(ctx, ErrAuthRequired)
	}

	payload := new(ChangePasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	if err := c.service.ChangePassword(ctx.Context(), claims.UserID(), payload.CurrentPassword, payload.NewPassword); err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "password has been changed", nil)
}

// VerifyEmail consumes an email-verification token.
func (c *HTTPController) VerifyEmail(ctx router.Context) error {
	token := ctx.Param("token")
	if token == "" {
		return c.responder.Err(ctx, ErrInvalidActionToken)
	}

	user, err := c.service.VerifyEmail(ctx.Context(), token)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "email verified", map[string]any{
		"user": user.Public(),
	})
}

func (c *HTTPController) badPayload(ctx router.Context, err error) error {
	return c.responder.Err(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse request body").
		WithCode(goerrors.CodeBadRequest))
}
