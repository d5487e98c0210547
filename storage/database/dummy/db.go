package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/grammarlab/grammarlab/core/catalog"
	"github.com/grammarlab/grammarlab/core/user"
)

type (
	DB struct {
		user   *userTable
		level  *levelTable
		course *courseTable
		lesson *lessonTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	levelTable struct {
		sync.RWMutex
		table map[string]*catalog.Level
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*catalog.Course
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*catalog.Lesson
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		level:  &levelTable{table: make(map[string]*catalog.Level)},
		course: &courseTable{table: make(map[string]*catalog.Course)},
		lesson: &lessonTable{table: make(map[string]*catalog.Lesson)},
	}
	return db, nil
}

// SeedLevel adds a level row; the application itself never creates levels.
func (db *DB) SeedLevel(code string) catalog.Level {
	db.level.Lock()
	defer db.level.Unlock()

	lvl := catalog.Level{ID: uuid.New().String(), Code: code}
	db.level.table[lvl.ID] = &lvl
	return lvl
}

// SeedLesson adds a lesson row; lesson creation is not an application feature.
func (db *DB) SeedLesson(lesson catalog.Lesson) catalog.Lesson {
	db.lesson.Lock()
	defer db.lesson.Unlock()

	lesson.ID = uuid.New().String()
	db.lesson.table[lesson.ID] = &lesson
	return lesson
}

// SeedCourse adds a course row directly, bypassing the service defaults.
func (db *DB) SeedCourse(course catalog.Course) catalog.Course {
	db.course.Lock()
	defer db.course.Unlock()

	course.ID = uuid.New().String()
	db.course.table[course.ID] = &course
	return course
}
