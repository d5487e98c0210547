package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/grammarlab/grammarlab/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

type dbCourse struct {
	ID                string         `db:"id"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	Level             string         `db:"level"`
	Difficulty        int            `db:"difficulty"`
	EstimatedDuration int            `db:"estimated_duration"`
	ImageURL          sql.NullString `db:"image_url"`
	IsActive          bool           `db:"is_active"`
	CreatedAt         sql.NullTime   `db:"created_at"`
	UpdatedAt         sql.NullTime   `db:"updated_at"`
}

func (repo *catalogRepository) QueryAllLevels(ctx context.Context) ([]catalog.Level, error) {
	levels := make([]catalog.Level, 0)
	err := repo.db.SelectContext(ctx, &levels, `SELECT id, code FROM level ORDER BY code`)
	if err != nil {
		return nil, errors.Wrap(err, "querying levels")
	}
	return levels, nil
}

func (repo *catalogRepository) FilterCourses(ctx context.Context, levelID string) ([]catalog.Course, error) {
	var rows []dbCourse
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM course WHERE level = $1 AND is_active ORDER BY title`, levelID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]catalog.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (row dbCourse) toCourse() catalog.Course {
	course := catalog.Course{
		ID:                row.ID,
		Title:             row.Title,
		Description:       row.Description,
		Level:             row.Level,
		Difficulty:        row.Difficulty,
		EstimatedDuration: row.EstimatedDuration,
		IsActive:          row.IsActive,
	}
	course.ImageURL.String, course.ImageURL.Valid = row.ImageURL.String, row.ImageURL.Valid
	if row.CreatedAt.Valid {
		course.CreatedAt = row.CreatedAt.Time.UTC()
	}
	if row.UpdatedAt.Valid {
		course.UpdatedAt = row.UpdatedAt.Time.UTC()
	}
	return course
}

type dbLesson struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Course      string         `db:"course"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   sql.NullTime   `db:"created_at"`
}

func (row dbLesson) toLesson() catalog.Lesson {
	lesson := catalog.Lesson{
		ID:       row.ID,
		Title:    row.Title,
		Course:   row.Course,
		IsActive: row.IsActive,
	}
	lesson.Description.String, lesson.Description.Valid = row.Description.String, row.Description.Valid
	if row.CreatedAt.Valid {
		lesson.CreatedAt = row.CreatedAt.Time.UTC()
	}
	return lesson
}

func (repo *catalogRepository) FilterLessons(ctx context.Context, courseID string) ([]catalog.Lesson, error) {
	var rows []dbLesson
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM lesson WHERE course = $1 AND is_active ORDER BY created_at, title`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}

	lessons := make([]catalog.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toLesson())
	}
	return lessons, nil
}

func (repo *catalogRepository) GetLessonByID(ctx context.Context, id string) (catalog.Lesson, error) {
	var row dbLesson
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Lesson{}, catalog.ErrNotFound
		}
		return catalog.Lesson{}, errors.Wrap(err, "querying lesson")
	}
	return row.toLesson(), nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	course.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course (id, title, description, level, difficulty, estimated_duration, image_url, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		course.ID, course.Title, course.Description, course.Level, course.Difficulty,
		course.EstimatedDuration, course.ImageURL, course.IsActive, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "inserting course")
	}
	return course, nil
}

func (repo *catalogRepository) EnsureLevel(ctx context.Context, code string) (catalog.Level, error) {
	var lvl catalog.Level
	err := repo.db.GetContext(ctx, &lvl,
		`INSERT INTO level (id, code) VALUES ($1, $2)
		 ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		 RETURNING id, code`, uuid.New().String(), code)
	if err != nil {
		return catalog.Level{}, errors.Wrap(err, "upserting level")
	}
	return lvl, nil
}
