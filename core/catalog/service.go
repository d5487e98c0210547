package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("not found")

type (
	Repository interface {
		QueryAllLevels(ctx context.Context) ([]Level, error)
		// FilterCourses matches `level = levelID AND is_active = true`,
		// literally: an empty levelID matches nothing rather than everything.
		FilterCourses(ctx context.Context, levelID string) ([]Course, error)
		FilterLessons(ctx context.Context, courseID string) ([]Lesson, error)
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		CreateCourse(ctx context.Context, course Course) (Course, error)
		// EnsureLevel upserts a level by code; seeding tooling only.
		EnsureLevel(ctx context.Context, code string) (Level, error)
	}

	Service interface {
		Levels(ctx context.Context) ([]Level, error)
		CoursesByLevel(ctx context.Context, levelID string) ([]Course, error)
		LessonsByCourse(ctx context.Context, courseID string) ([]Lesson, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
		CreateCourse(ctx context.Context, nc NewCourse) (Course, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Levels(ctx context.Context) ([]Level, error) {
	return svc.repo.QueryAllLevels(ctx)
}

func (svc *service) CoursesByLevel(ctx context.Context, levelID string) ([]Course, error) {
	return svc.repo.FilterCourses(ctx, levelID)
}

func (svc *service) LessonsByCourse(ctx context.Context, courseID string) ([]Lesson, error) {
	return svc.repo.FilterLessons(ctx, courseID)
}

func (svc *service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

// CreateCourse creates a student-visible course; IsActive defaults to true.
func (svc *service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	course := Course{
		Title:             nc.Title,
		Description:       nc.Description,
		Level:             nc.Level,
		Difficulty:        nc.Difficulty,
		EstimatedDuration: nc.EstimatedDuration,
		ImageURL:          null.NewString(nc.ImageURL, nc.ImageURL != ""),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if course.Difficulty == 0 {
		course.Difficulty = 1
	}
	return svc.repo.CreateCourse(ctx, course)
}
