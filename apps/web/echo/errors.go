package echoweb

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/grammarlab/grammarlab/core"
)

// newHTTPErrorHandler returns an echo.HTTPErrorHandler that serves JSON to
// API clients and the error page to browsers, and signals a graceful
// shutdown when an unrecoverable error surfaces.
func newHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
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
				fldErrs[vErr.Field()] = vErr.Error()
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
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg))

			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else if isAPIRequest(ctx) {
			err = ctx.JSON(code, message)
		} else {
			err = ctx.Render(code, "error", page{
				Title: http.StatusText(code),
				Error: http.StatusText(code),
				Retry: ctx.Request().URL.Path,
			})
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func isAPIRequest(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/api") || wantsJSON(ctx)
}
