package auth

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// UsersController serves the /users endpoints: the authenticated user's
// own profile plus the admin management surface.
type UsersController struct {
	service   *Service
	guard     *Guard
	responder *JSONResponder
	ctxKey    string
	logger    Logger
}

func NewUsersController(service *Service, guard *Guard, cfg Config) *UsersController {
	return &UsersController{
		service:   service,
		guard:     guard,
		responder: NewJSONResponder(cfg),
		ctxKey:    cfg.GetContextKey(),
		logger:    defLogger{},
	}
}

func (c *UsersController) WithLogger(logger Logger) *UsersController {
	if logger != nil {
		c.logger = logger
		c.responder.WithLogger(logger)
	}
	return c
}

// RegisterRoutes mounts the user endpoints on the given group. Profile
// routes need authentication; management routes additionally need the
// admin role.
func (c *UsersController) RegisterRoutes(group RouteRegistrar) {
	authed := c.guard.Authenticate()
	admin := c.guard.RequireRole(RoleAdmin)

	group.Get("/profile", c.Profile, authed)
	group.Put("/profile", c.UpdateProfile, authed)
	group.Delete("/profile", c.DeactivateProfile, authed)

	group.Get("/", c.ListUsers, authed, admin)
	group.Get("/:id", c.GetUser, authed, admin)
	group.Put("/:id/status", c.UpdateStatus, authed, admin)
	group.Delete("/:id", c.DeleteUser, authed, admin)
}

// Profile returns the authenticated user's record.
func (c *UsersController) Profile(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.ctxKey)
	if !ok {
		return c.responder.Err(ctx, ErrAuthRequired)
	}

	user, err := c.service.GetUser(ctx.Context(), claims.UserID())
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "", map[string]any{
		"user": user.Public(),
	})
}

// UpdateProfile updates the authenticated user's name fields.
func (c *UsersController) UpdateProfile(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.ctxKey)
	if !ok {
		return c.responder.Err(ctx, ErrAuthRequired)
	}

	payload := new(UpdateProfilePayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	user, err := c.service.UpdateProfile(ctx.Context(), claims.UserID(), UpdateProfileInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "profile updated", map[string]any{
		"user": user.Public(),
	})
}

// DeactivateProfile soft-deletes the authenticated user's own account.
func (c *UsersController) DeactivateProfile(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.ctxKey)
	if !ok {
		return c.responder.Err(ctx, ErrAuthRequired)
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return c.responder.Err(ctx, ErrAuthRequired)
	}

	if _, err := c.service.SetUserActive(ctx.Context(), id, false); err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "account deactivated", nil)
}

// ListUsers pages through accounts. Admin only.
func (c *UsersController) ListUsers(ctx router.Context) error {
	filter := ListUsersFilter{
		Page:  ctx.QueryInt("page", 1),
		Limit: ctx.QueryInt("limit", 20),
		Role:  UserRole(ctx.Query("role", "")),
	}

	switch ctx.Query("isActive", "") {
	case "true":
		active := true
		filter.IsActive = &active
	case "false":
		active := false
		filter.IsActive = &active
	}

	users, total, err := c.service.ListUsers(ctx.Context(), filter)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "", map[string]any{
		"users": PublicUsers(users),
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// GetUser returns any account by ID. Admin only.
func (c *UsersController) GetUser(ctx router.Context) error {
	id, err := c.pathID(ctx)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	user, err := c.service.GetUser(ctx.Context(), id.String())
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "", map[string]any{
		"user": user.Public(),
	})
}

// UpdateStatus activates or deactivates an account. Admin only.
func (c *UsersController) UpdateStatus(ctx router.Context) error {
	id, err := c.pathID(ctx)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	payload := new(UpdateStatusPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.badPayload(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.responder.Err(ctx, err)
	}

	user, err := c.service.SetUserActive(ctx.Context(), id, *payload.IsActive)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "status updated", map[string]any{
		"user": user.Public(),
	})
}

// DeleteUser removes an account permanently. Admin only; admins cannot
// delete their own account.
func (c *UsersController) DeleteUser(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, c.ctxKey)
	if !ok {
		return c.responder.Err(ctx, ErrAuthRequired)
	}

	id, err := c.pathID(ctx)
	if err != nil {
		return c.responder.Err(ctx, err)
	}

	if err := c.service.DeleteUser(ctx.Context(), claims.UserID(), id); err != nil {
		return c.responder.Err(ctx, err)
	}

	return c.responder.OK(ctx, router.StatusOK, "user deleted", nil)
}

func (c *UsersController) pathID(ctx router.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

func (c *UsersController) badPayload(ctx router.Context, err error) error {
	return c.responder.Err(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse request body").
		WithCode(goerrors.CodeBadRequest))
}
