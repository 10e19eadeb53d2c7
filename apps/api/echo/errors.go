package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/assistant"
	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/community"
	"github.com/pcacademy/backend/core/forum"
	"github.com/pcacademy/backend/core/progress"
	"github.com/pcacademy/backend/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errMissingToken         = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken         = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errLessonLocked         = echo.NewHTTPError(http.StatusForbidden, "lesson is locked; complete the preceding lesson first")
	errStoreUnavailable     = echo.NewHTTPError(http.StatusServiceUnavailable, "temporarily unavailable, please retry")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if code, message = mapDomainError(origErr); code > 0 {
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			logger.Error(msg, errors.Wrap(err, msg), contextIdentity(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// mapDomainError translates known service errors to HTTP responses.
// Returns code 0 for errors it does not know.
func mapDomainError(err error) (int, interface{}) {
	if core.IsStoreUnavailable(err) {
		return errStoreUnavailable.Code, errStoreUnavailable.Message
	}
	switch err {
	case user.ErrNotFound, catalog.ErrNotFound, community.ErrNotFound, forum.ErrNotFound:
		return http.StatusNotFound, err.Error()
	case community.ErrNotOwner, forum.ErrNotOwner:
		return http.StatusForbidden, err.Error()
	case progress.ErrNotAuthenticated:
		return http.StatusUnauthorized, err.Error()
	case progress.ErrNoQuiz:
		return http.StatusBadRequest, err.Error()
	case assistant.ErrUnavailable:
		return http.StatusBadGateway, err.Error()
	}
	return 0, nil
}
