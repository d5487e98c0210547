package catalog

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/grammarlab/grammarlab/core"
)

// Level is a proficiency grouping of courses (a1 .. c2). Read-only from the
// application's perspective.
type Level struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// Course is a unit of instruction belonging to one Level. Level is a foreign
// key into the levels collection; referential integrity is the backend's
// business, not ours.
type Course struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Level             string      `json:"level"`
	Difficulty        int         `json:"difficulty"`         // 1..5
	EstimatedDuration int         `json:"estimated_duration"` // minutes
	ImageURL          null.String `json:"image_url,omitempty"`
	IsActive          bool        `json:"is_active"`
	CreatedAt         time.Time   `json:"created_at"` // UTC
	UpdatedAt         time.Time   `json:"updated_at"` // UTC
}

// Lesson is a unit of content belonging to one Course. Creation is not
// implemented; rows are seeded backend-side.
type Lesson struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description null.String `json:"description,omitempty"`
	Course      string      `json:"course"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Title             string `json:"title" form:"title" validate:"required"`
	Description       string `json:"description" form:"description" validate:"required"`
	Level             string `json:"level" form:"level" validate:"required"`
	Difficulty        int    `json:"difficulty" form:"difficulty" validate:"omitempty,min=1,max=5"`
	EstimatedDuration int    `json:"estimated_duration" form:"estimated_duration" validate:"omitempty,min=0"`
	ImageURL          string `json:"image_url" form:"image_url" validate:"omitempty,url"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Level = core.CleanString(nc.Level)
	nc.ImageURL = core.CleanString(nc.ImageURL)

	if err := validate.Struct(nc); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			return core.NewValidationError(err, core.TranslateValidationErrors(vErrs, translator)...)
		}
		return err
	}
	return nil
}
