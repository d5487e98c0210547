package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/catalog"
	"github.com/grammarlab/grammarlab/core/user"
	"github.com/grammarlab/grammarlab/webapp"
)

// loginRequest is deliberately not validated beyond binding: any malformed
// or unknown credential gets the same uniform failure message.
type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// wantsJSON reports whether the request came from an API client rather than
// a browser form.
func wantsJSON(ctx echo.Context) bool {
	return ctx.Request().Header.Get(echo.HeaderContentType) == echo.MIMEApplicationJSON
}

// resultStatus maps a failed envelope to an HTTP status. The envelope is the
// contract; the status is a transport nicety.
func resultStatus(errv *core.ResultError) int {
	switch errv.Message {
	case webapp.MsgNotAuthenticated:
		return http.StatusUnauthorized
	case webapp.MsgInvalidCredentials, webapp.MsgUserExists:
		return http.StatusBadRequest
	case "permission denied":
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func jsonResult[T any](ctx echo.Context, res core.Result[T]) error {
	if res.Success {
		return ctx.JSON(http.StatusOK, res)
	}
	return ctx.JSON(resultStatus(res.Error), res)
}

func (s *server) login(ctx echo.Context) error {
	data := new(loginRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	data.Email = core.CleanString(data.Email, true)

	res := s.opts.Facade.Login(ctx.Request().Context(), data.Email, data.Password)
	if wantsJSON(ctx) {
		if res.Success {
			s.setSessionCookie(ctx, res.Data.Token)
		}
		return jsonResult(ctx, res)
	}

	if !res.Success {
		p := page{Title: "Log in", Error: res.Error.Message}
		return ctx.Render(http.StatusBadRequest, "login", p)
	}
	s.setSessionCookie(ctx, res.Data.Token)
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) signup(ctx echo.Context) error {
	data := new(user.NewUser)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(s.opts.Validate, s.opts.Translator); err != nil {
		if wantsJSON(ctx) {
			return err
		}
		return ctx.Render(http.StatusBadRequest, "signup", page{Title: "Sign up", Error: validationMessage(err)})
	}

	res := s.opts.Facade.Signup(ctx.Request().Context(), data.Email, data.Password, data.Name)
	if wantsJSON(ctx) {
		if res.Success {
			s.setSessionCookie(ctx, res.Data.Auth.Token)
		}
		return jsonResult(ctx, res)
	}

	if !res.Success {
		p := page{Title: "Sign up", Error: res.Error.Message}
		return ctx.Render(http.StatusBadRequest, "signup", p)
	}
	s.setSessionCookie(ctx, res.Data.Auth.Token)
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// logout always clears the session cookie, whatever the backend says.
func (s *server) logout(ctx echo.Context) error {
	token := s.sessionToken(ctx)
	res := s.opts.Facade.Logout(ctx.Request().Context(), token)
	s.clearSessionCookie(ctx)

	if wantsJSON(ctx) {
		return jsonResult(ctx, res)
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *server) currentUserAPI(ctx echo.Context) error {
	res := s.opts.Facade.CurrentUser(ctx.Request().Context(), s.sessionToken(ctx))
	return jsonResult(ctx, res)
}

func (s *server) updateNameAPI(ctx echo.Context) error {
	data := new(user.UpdateName)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(s.opts.Validate, s.opts.Translator); err != nil {
		return err
	}

	res := s.opts.Facade.UpdateName(ctx.Request().Context(), s.sessionToken(ctx), data.Name)
	return jsonResult(ctx, res)
}

func (s *server) updatePasswordAPI(ctx echo.Context) error {
	data := new(user.ChangePassword)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(s.opts.Validate, s.opts.Translator); err != nil {
		return err
	}

	res := s.opts.Facade.UpdatePassword(ctx.Request().Context(), s.sessionToken(ctx), data.OldPassword, data.NewPassword)
	return jsonResult(ctx, res)
}

func (s *server) createCourseAPI(ctx echo.Context) error {
	data := new(catalog.NewCourse)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(s.opts.Validate, s.opts.Translator); err != nil {
		return err
	}

	res := s.opts.Facade.CreateCourse(ctx.Request().Context(), s.sessionToken(ctx), *data)
	return jsonResult(ctx, res)
}

func (s *server) healthz(ctx echo.Context) error {
	if err := s.opts.Facade.Ping(ctx.Request().Context()); err != nil {
		if core.IsShutdown(err) {
			// a dead backend config never heals; let the error handler
			// signal a shutdown
			return err
		}
		return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "build": s.opts.Conf.Build})
}
