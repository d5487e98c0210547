package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/grammarlab/grammarlab/core/catalog"
)

type catalogRepository struct {
	levels  *levelTable
	courses *courseTable
	lessons *lessonTable
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{levels: db.level, courses: db.course, lessons: db.lesson}
}

func (repo *catalogRepository) QueryAllLevels(_ context.Context) ([]catalog.Level, error) {
	repo.levels.RLock()
	defer repo.levels.RUnlock()

	levels := make([]catalog.Level, 0, len(repo.levels.table))
	for _, lvl := range repo.levels.table {
		levels = append(levels, *lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Code < levels[j].Code })
	return levels, nil
}

func (repo *catalogRepository) FilterCourses(_ context.Context, levelID string) ([]catalog.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := make([]catalog.Course, 0)
	for _, course := range repo.courses.table {
		if course.Level == levelID && course.IsActive {
			courses = append(courses, *course)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}

func (repo *catalogRepository) FilterLessons(_ context.Context, courseID string) ([]catalog.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	lessons := make([]catalog.Lesson, 0)
	for _, lesson := range repo.lessons.table {
		if lesson.Course == courseID && lesson.IsActive {
			lessons = append(lessons, *lesson)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Title < lessons[j].Title })
	return lessons, nil
}

func (repo *catalogRepository) GetLessonByID(_ context.Context, id string) (catalog.Lesson, error) {
	repo.lessons.RLock()
	defer repo.lessons.RUnlock()

	if lesson, ok := repo.lessons.table[id]; ok {
		return *lesson, nil
	}
	return catalog.Lesson{}, catalog.ErrNotFound
}

func (repo *catalogRepository) EnsureLevel(_ context.Context, code string) (catalog.Level, error) {
	repo.levels.Lock()
	defer repo.levels.Unlock()

	for _, lvl := range repo.levels.table {
		if lvl.Code == code {
			return *lvl, nil
		}
	}
	lvl := catalog.Level{ID: uuid.New().String(), Code: code}
	repo.levels.table[lvl.ID] = &lvl
	return lvl, nil
}

func (repo *catalogRepository) CreateCourse(_ context.Context, course catalog.Course) (catalog.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	course.ID = uuid.New().String()
	repo.courses.table[course.ID] = &course
	return course, nil
}
