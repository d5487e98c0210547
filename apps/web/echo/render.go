package echoweb

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/grammarlab/grammarlab/core/user"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

type renderer struct {
	templates *template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer() echo.Renderer {
	return &renderer{
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.gohtml")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// page is the data every template receives.
type page struct {
	Title   string
	User    *user.User
	Loading bool
	// Error and Retry drive the failed-fetch state: the message plus the
	// URL of the "Try Again" link.
	Error string
	Retry string
	Data  interface{}
}
