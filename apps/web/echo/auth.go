package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// sessionToken reads the signed token from the session cookie, or "".
func (s *server) sessionToken(ctx echo.Context) string {
	cookie, err := ctx.Cookie(s.opts.Conf.Server.SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *server) setSessionCookie(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     s.opts.Conf.Server.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.opts.Conf.Server.JWTExpirationDelta),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !s.opts.Conf.Debug,
	})
}

func (s *server) clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     s.opts.Conf.Server.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !s.opts.Conf.Debug,
	})
}
