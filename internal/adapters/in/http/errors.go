package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// statusOf maps a use case error onto the HTTP status reported to the client.
func statusOf(err error) int {
	var validationErrs validator.ValidationErrors
	var httpErr *echo.HTTPError

	switch {
	case errors.Is(err, commands.ErrInventoryLocked):
		return http.StatusLocked
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.As(err, &validationErrs):
		return http.StatusUnprocessableEntity
	case errors.As(err, &httpErr):
		return httpErr.Code
	default:
		return http.StatusInternalServerError
	}
}

func details(err error) []string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		out := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			out = append(out, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
		}
		return out
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	out := make([]string, 0)
	for _, cause := range joined.Unwrap() {
		if isCategory(cause) {
			continue
		}
		out = append(out, cause.Error())
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

// isCategory reports whether err is one of the bare category sentinels that
// typed errors carry next to their cause.
func isCategory(err error) bool {
	switch err {
	case errs.ErrObjectNotFound, errs.ErrValueIsInvalid, errs.ErrValueIsOutOfRange, errs.ErrValueIsRequired,
		errs.ErrConflict, errs.ErrUnauthorized, errs.ErrForbidden, errs.ErrInternal:
		return true
	}
	return false
}

// writeError renders err as an Error body. Internal failures are logged and
// reported with a generic message.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("method", c.Request().Method),
			slog.String("route", c.Path()),
			slog.Any("error", err),
		)
		return c.JSON(status, Error{Code: status, Message: http.StatusText(status)})
	}

	message := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message = fmt.Sprint(httpErr.Message)
	}
	return c.JSON(status, Error{Code: status, Message: message, Details: details(err)})
}
