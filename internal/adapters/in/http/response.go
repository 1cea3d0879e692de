package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fulfillment/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Envelope wraps every response body.
type Envelope struct {
	StatusCode int        `json:"statusCode"`
	Success    bool       `json:"success"`
	Data       any        `json:"data,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func respond(ctx echo.Context, status int, data any) error {
	return ctx.JSON(status, Envelope{StatusCode: status, Success: true, Data: data})
}

// ErrorHandler renders errors returned by handlers and middleware in the
// envelope. Domain errors map by kind; anything unknown is logged and
// answered with a generic 500.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "HTTPErrorHandler")

	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		status, body := classify(err)
		if status == http.StatusInternalServerError {
			logger.ErrorContext(ctx.Request().Context(), "Request failed",
				"method", ctx.Request().Method,
				"path", ctx.Path(),
				"error", err)
		}

		var writeErr error
		if ctx.Request().Method == http.MethodHead {
			writeErr = ctx.NoContent(status)
		} else {
			writeErr = ctx.JSON(status, Envelope{StatusCode: status, Success: false, Error: &body})
		}
		if writeErr != nil {
			logger.ErrorContext(ctx.Request().Context(), "Failed to write error response", "error", writeErr)
		}
	}
}

func classify(err error) (int, ErrorBody) {
	var (
		validationErrs validator.ValidationErrors
		httpErr        *echo.HTTPError
	)
	// An echo error carries its own status; its Internal cause is for logs only.
	switch {
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			msg = m
		}
		return httpErr.Code, ErrorBody{Message: msg}
	case errors.As(err, &validationErrs):
		details := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fe.Field()+" failed on "+fe.Tag())
		}
		return http.StatusBadRequest, ErrorBody{Message: "request validation failed", Details: details}
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, ErrorBody{Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, ErrorBody{Message: err.Error()}
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, ErrorBody{Message: err.Error()}
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Message: "internal server error"}
	}
}

// RequestValidator adapts go-playground/validator to echo.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// bind decodes the body into req and validates it. Decoding failures are
// reported as invalid values.
func bind(ctx echo.Context, req any) error {
	if err := ctx.Bind(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return errs.NewValueIsInvalidErrorWithCause("body", httpErr.Internal)
		}
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	return ctx.Validate(req)
}
