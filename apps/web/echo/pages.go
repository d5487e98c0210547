package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/grammarlab/grammarlab/webapp"
)

// resolveIdentity builds and resolves the per-request identity from the
// session cookie.
func (s *server) resolveIdentity(ctx echo.Context) (*webapp.Identity, string) {
	token := s.sessionToken(ctx)
	id := webapp.NewIdentity(s.opts.Facade)
	id.Init(ctx.Request().Context(), token)
	return id, token
}

// guardedPage runs the route guard and, on a Render decision, the page
// function. Pending renders the neutral loading shell; Redirect redirects.
func (s *server) guardedPage(ctx echo.Context, req webapp.Requirements, render func(id *webapp.Identity, token string) error) error {
	id, token := s.resolveIdentity(ctx)

	decision := s.guard.Decide(ctx.Request().Context(), id, token, req)
	switch decision.Kind {
	case webapp.DecisionPending:
		return ctx.Render(http.StatusOK, "loading", page{Title: "Loading"})
	case webapp.DecisionRedirect:
		return ctx.Redirect(http.StatusSeeOther, decision.Location)
	}
	return render(id, token)
}

func (s *server) homePage(ctx echo.Context) error {
	id, _ := s.resolveIdentity(ctx)
	return ctx.Render(http.StatusOK, "home", page{Title: "Welcome", User: id.User()})
}

func (s *server) loginPage(ctx echo.Context) error {
	id, _ := s.resolveIdentity(ctx)
	if id.User() != nil {
		return ctx.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return ctx.Render(http.StatusOK, "login", page{Title: "Log in"})
}

func (s *server) signupPage(ctx echo.Context) error {
	id, _ := s.resolveIdentity(ctx)
	if id.User() != nil {
		return ctx.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return ctx.Render(http.StatusOK, "signup", page{Title: "Sign up"})
}

// dashboardPage is the student dashboard. Admins are auto-forwarded to
// /admin unless they asked for the student view with ?view=student.
func (s *server) dashboardPage(ctx echo.Context) error {
	req := webapp.Requirements{
		RequireAuth:     true,
		RedirectAdminTo: "/admin",
		Override:        ctx.QueryParam("view") == "student",
	}
	return s.guardedPage(ctx, req, func(id *webapp.Identity, _ string) error {
		p := page{Title: "Dashboard", User: id.User(), Retry: "/dashboard"}
		res := s.opts.Facade.Levels(ctx.Request().Context())
		if !res.Success {
			p.Error = res.Error.Message
		} else {
			p.Data = res.Data
		}
		return ctx.Render(http.StatusOK, "dashboard", p)
	})
}

func (s *server) levelsPage(ctx echo.Context) error {
	return s.guardedPage(ctx, webapp.Requirements{RequireAuth: true}, func(id *webapp.Identity, _ string) error {
		p := page{Title: "Levels", User: id.User(), Retry: "/levels"}
		res := s.opts.Facade.Levels(ctx.Request().Context())
		if !res.Success {
			p.Error = res.Error.Message
		} else {
			p.Data = res.Data
		}
		return ctx.Render(http.StatusOK, "levels", p)
	})
}

func (s *server) coursesPage(ctx echo.Context) error {
	return s.guardedPage(ctx, webapp.Requirements{RequireAuth: true}, func(id *webapp.Identity, _ string) error {
		levelID := ctx.Param("id")
		p := page{Title: "Courses", User: id.User(), Retry: "/levels/" + levelID + "/courses"}
		res := s.opts.Facade.Courses(ctx.Request().Context(), levelID)
		if !res.Success {
			p.Error = res.Error.Message
		} else {
			p.Data = res.Data
		}
		return ctx.Render(http.StatusOK, "courses", p)
	})
}

func (s *server) lessonsPage(ctx echo.Context) error {
	return s.guardedPage(ctx, webapp.Requirements{RequireAuth: true}, func(id *webapp.Identity, _ string) error {
		courseID := ctx.Param("id")
		p := page{Title: "Lessons", User: id.User(), Retry: "/courses/" + courseID + "/lessons"}
		res := s.opts.Facade.Lessons(ctx.Request().Context(), courseID)
		if !res.Success {
			p.Error = res.Error.Message
		} else {
			p.Data = res.Data
		}
		return ctx.Render(http.StatusOK, "lessons", p)
	})
}

func (s *server) lessonPage(ctx echo.Context) error {
	return s.guardedPage(ctx, webapp.Requirements{RequireAuth: true}, func(id *webapp.Identity, _ string) error {
		lessonID := ctx.Param("id")
		p := page{Title: "Lesson", User: id.User(), Retry: "/lessons/" + lessonID}
		res := s.opts.Facade.Lesson(ctx.Request().Context(), lessonID)
		if !res.Success {
			p.Error = res.Error.Message
			return ctx.Render(http.StatusNotFound, "error", p)
		}
		p.Title = res.Data.Title
		p.Data = res.Data
		return ctx.Render(http.StatusOK, "lesson", p)
	})
}
