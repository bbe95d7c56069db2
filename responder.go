package auth

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError is the error half of the envelope. Fields carries per-field
// validation messages when the failure was a validation one.
type APIError struct {
	Message  string `json:"message"`
	TextCode string `json:"textCode,omitempty"`
	Fields   any    `json:"fields,omitempty"`
}

// JSONResponder translates service results and errors into the wire
// envelope. It is the single place where internal errors get scrubbed.
type JSONResponder struct {
	logger     Logger
	production bool
}

func NewJSONResponder(cfg Config) *JSONResponder {
	production := false
	if sc, ok := cfg.(interface{ IsProduction() bool }); ok {
		production = sc.IsProduction()
	} else {
		production = cfg.GetEnvironment() == "production"
	}
	return &JSONResponder{
		logger:     defLogger{},
		production: production,
	}
}

func (r *JSONResponder) WithLogger(logger Logger) *JSONResponder {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// OK writes a success envelope.
func (r *JSONResponder) OK(ctx router.Context, status int, message string, data any) error {
	return ctx.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Err writes an error envelope, deriving the status code from the rich
// error's category. Internal failures are logged with full detail and
// returned with a generic message in production.
func (r *JSONResponder) Err(ctx router.Context, err error) error {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		rich = goerrors.Wrap(err, goerrors.CategoryInternal, "internal server error").
			WithCode(goerrors.CodeInternal)
	}

	status := rich.Code
	if status == 0 {
		status = statusFromCategory(rich.Category)
	}

	apiErr := &APIError{
		Message:  rich.Message,
		TextCode: rich.TextCode,
	}

	if rich.Category == goerrors.CategoryValidation {
		apiErr.Fields = rich.ValidationMap()
	}

	if status >= router.StatusInternalServerError {
		r.logger.Error("request failed: %v", err)
		if r.production {
			apiErr.Message = "internal server error"
			apiErr.Fields = nil
		}
	}

	return ctx.JSON(status, APIResponse{
		Success: false,
		Error:   apiErr,
	})
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryConflict:
		return router.StatusBadRequest
	case goerrors.CategoryAuth:
		return router.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return router.StatusForbidden
	case goerrors.CategoryNotFound:
		return router.StatusNotFound
	default:
		return router.StatusInternalServerError
	}
}
