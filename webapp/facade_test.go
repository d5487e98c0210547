package webapp

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/catalog"
	"github.com/grammarlab/grammarlab/core/user"
	emailsvc "github.com/grammarlab/grammarlab/services/email"
	dummydb "github.com/grammarlab/grammarlab/storage/database/dummy"
	dummysessions "github.com/grammarlab/grammarlab/storage/sessions/dummy"
	testutil "github.com/grammarlab/grammarlab/tests"
)

var conf = core.NewConfig()

func setup(t *testing.T) (*Facade, *dummydb.DB, *testutil.Logger) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	logger := testutil.NewLogger()
	fac := NewFacade(conf, logger, func() (*Deps, error) {
		mailSvc := emailsvc.NewConsoleServiceMock(conf)
		return &Deps{
			Users:    user.NewService(dummydb.NewUserRepository(db), mailSvc),
			Catalog:  catalog.NewService(dummydb.NewCatalogRepository(db)),
			Sessions: dummysessions.NewRegistry(),
		}, nil
	})
	return fac, db, logger
}

func assertFailure(t *testing.T, success bool, errv *core.ResultError, wantMsg string) {
	t.Helper()
	assert.False(t, success)
	require.NotNil(t, errv)
	assert.Equal(t, wantMsg, errv.Message)
}

func TestFacadeLazyInit(t *testing.T) {
	t.Run("initializer runs once under concurrent first calls", func(t *testing.T) {
		var calls int32
		db, _ := dummydb.Open()
		fac := NewFacade(conf, testutil.NewLogger(), func() (*Deps, error) {
			atomic.AddInt32(&calls, 1)
			mailSvc := emailsvc.NewConsoleServiceMock(conf)
			return &Deps{
				Users:    user.NewService(dummydb.NewUserRepository(db), mailSvc),
				Catalog:  catalog.NewService(dummydb.NewCatalogRepository(db)),
				Sessions: dummysessions.NewRegistry(),
			}, nil
		})

		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fac.Levels(ctx)
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	})

	t.Run("initializer failure is cached, not retried", func(t *testing.T) {
		var calls int32
		logger := testutil.NewLogger()
		fac := NewFacade(conf, logger, func() (*Deps, error) {
			atomic.AddInt32(&calls, 1)
			return nil, errors.New("backend not configured")
		})

		ctx := context.Background()
		res1 := fac.Levels(ctx)
		res2 := fac.Courses(ctx, "whatever")
		assert.False(t, res1.Success)
		assert.False(t, res2.Success)
		assert.Contains(t, res1.Error.Message, "backend not configured")
		assert.Equal(t, res1.Error.Message, res2.Error.Message)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		assert.NotEmpty(t, logger.Errors())

		// a failed init never heals, so it reads as a shutdown request
		assert.True(t, core.IsShutdown(fac.Ping(ctx)))
	})
}

func TestFacadeSignup(t *testing.T) {
	fac, _, _ := setup(t)
	ctx := context.Background()

	res := fac.Signup(ctx, "awa@test.cm", "secret1234", "Awa Diop")
	require.True(t, res.Success)
	assert.Nil(t, res.Error)
	assert.Equal(t, "Awa Diop", res.Data.User.Name)
	assert.NotEmpty(t, res.Data.Auth.Token)
	assert.Equal(t, res.Data.User.ID, res.Data.Auth.User.ID)
	assert.True(t, res.Data.User.IsStudent())

	// the fresh session is immediately usable
	cur := fac.CurrentUser(ctx, res.Data.Auth.Token)
	require.True(t, cur.Success)
	assert.Equal(t, "awa@test.cm", cur.Data.Email)

	t.Run("duplicate email", func(t *testing.T) {
		dup := fac.Signup(ctx, "awa@test.cm", "othersecret", "Other")
		assertFailure(t, dup.Success, dup.Error, MsgUserExists)
	})
}

func TestFacadeLogin(t *testing.T) {
	fac, db, logger := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, dummydb.NewUserRepository(db),
		"Jon Doe", "jon@test.cm", "secret1234", []string{user.RoleStudent}, true)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantMsg string
	}{
		{name: "ok", email: "jon@test.cm", pwd: "secret1234"},
		{name: "wrong password", email: "jon@test.cm", pwd: "nope", wantMsg: MsgInvalidCredentials},
		{name: "unknown email", email: "ghost@test.cm", pwd: "secret1234", wantMsg: MsgInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fac.Login(ctx, tt.email, tt.pwd)
			if tt.wantMsg != "" {
				assertFailure(t, res.Success, res.Error, tt.wantMsg)
				return
			}
			require.True(t, res.Success)
			assert.NotEmpty(t, res.Data.Token)
			assert.Equal(t, tt.email, res.Data.User.Email)
		})
	}

	// bad credentials are routine, never an error log
	assert.Empty(t, logger.Errors())

	t.Run("inactive account", func(t *testing.T) {
		testutil.CreateUser(t, dummydb.NewUserRepository(db),
			"Gone", "gone@test.cm", "secret1234", []string{user.RoleStudent}, false)
		res := fac.Login(ctx, "gone@test.cm", "secret1234")
		assertFailure(t, res.Success, res.Error, MsgInvalidCredentials)
	})
}

func TestFacadeLogout(t *testing.T) {
	fac, db, _ := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, dummydb.NewUserRepository(db),
		"Jon Doe", "jon@test.cm", "secret1234", []string{user.RoleStudent}, true)

	t.Run("always succeeds", func(t *testing.T) {
		for _, token := range []string{"", "garbage", "a.b.c"} {
			res := fac.Logout(ctx, token)
			assert.True(t, res.Success)
			assert.Nil(t, res.Error)
		}
	})

	t.Run("kills all sessions of the user", func(t *testing.T) {
		first := fac.Login(ctx, "jon@test.cm", "secret1234")
		second := fac.Login(ctx, "jon@test.cm", "secret1234")
		require.True(t, first.Success)
		require.True(t, second.Success)

		res := fac.Logout(ctx, first.Data.Token)
		assert.True(t, res.Success)

		for _, token := range []string{first.Data.Token, second.Data.Token} {
			cur := fac.CurrentUser(ctx, token)
			assertFailure(t, cur.Success, cur.Error, MsgNotAuthenticated)
		}
	})
}

func TestFacadeCurrentUser(t *testing.T) {
	fac, _, logger := setup(t)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		res := fac.CurrentUser(ctx, token)
		assertFailure(t, res.Success, res.Error, MsgNotAuthenticated)
	}
	// the expected "no session" outcome must not be error-logged
	assert.Empty(t, logger.Errors())
}

func TestFacadeUpdateName(t *testing.T) {
	fac, _, _ := setup(t)
	ctx := context.Background()
	signup := fac.Signup(ctx, "awa@test.cm", "secret1234", "Awa")
	require.True(t, signup.Success)
	token := signup.Data.Auth.Token

	res := fac.UpdateName(ctx, token, "Awa Diop")
	require.True(t, res.Success)
	assert.Equal(t, "Awa Diop", res.Data.Name)

	cur := fac.CurrentUser(ctx, token)
	require.True(t, cur.Success)
	assert.Equal(t, "Awa Diop", cur.Data.Name)

	t.Run("unauthenticated", func(t *testing.T) {
		res := fac.UpdateName(ctx, "", "Nope")
		assertFailure(t, res.Success, res.Error, MsgNotAuthenticated)
	})
}

func TestFacadeUpdatePassword(t *testing.T) {
	fac, _, _ := setup(t)
	ctx := context.Background()
	signup := fac.Signup(ctx, "awa@test.cm", "secret1234", "Awa")
	require.True(t, signup.Success)
	token := signup.Data.Auth.Token

	t.Run("wrong old password", func(t *testing.T) {
		res := fac.UpdatePassword(ctx, token, "nope", "newsecret123")
		assertFailure(t, res.Success, res.Error, MsgInvalidCredentials)
	})

	t.Run("ok", func(t *testing.T) {
		res := fac.UpdatePassword(ctx, token, "secret1234", "newsecret123")
		require.True(t, res.Success)

		login := fac.Login(ctx, "awa@test.cm", "newsecret123")
		assert.True(t, login.Success)
		old := fac.Login(ctx, "awa@test.cm", "secret1234")
		assertFailure(t, old.Success, old.Error, MsgInvalidCredentials)
	})
}

func TestFacadeLevels(t *testing.T) {
	fac, db, _ := setup(t)
	ctx := context.Background()
	db.SeedLevel("b1")
	db.SeedLevel("a1")
	db.SeedLevel("c2")

	res := fac.Levels(ctx)
	require.True(t, res.Success)
	codes := make([]string, 0, len(res.Data))
	for _, lvl := range res.Data {
		codes = append(codes, lvl.Code)
	}
	assert.Equal(t, []string{"a1", "b1", "c2"}, codes)

	// listing is read-only and repeatable
	again := fac.Levels(ctx)
	require.True(t, again.Success)
	assert.Equal(t, res.Data, again.Data)
}

func TestFacadeCourses(t *testing.T) {
	fac, db, _ := setup(t)
	ctx := context.Background()
	a1 := db.SeedLevel("a1")
	b2 := db.SeedLevel("b2")
	active := db.SeedCourse(catalog.Course{Title: "Articles", Level: a1.ID, Difficulty: 1, IsActive: true})
	db.SeedCourse(catalog.Course{Title: "Drafts", Level: a1.ID, Difficulty: 2, IsActive: false})
	db.SeedCourse(catalog.Course{Title: "Tenses", Level: b2.ID, Difficulty: 3, IsActive: true})

	t.Run("only active courses of the level", func(t *testing.T) {
		res := fac.Courses(ctx, a1.ID)
		require.True(t, res.Success)
		require.Len(t, res.Data, 1)
		assert.Equal(t, active.ID, res.Data[0].ID)
	})

	t.Run("empty level id matches nothing", func(t *testing.T) {
		res := fac.Courses(ctx, "")
		require.True(t, res.Success)
		assert.Empty(t, res.Data)
	})

	t.Run("unknown level id matches nothing", func(t *testing.T) {
		res := fac.Courses(ctx, "no-such-level")
		require.True(t, res.Success)
		assert.Empty(t, res.Data)
	})
}

func TestFacadeLessons(t *testing.T) {
	fac, db, _ := setup(t)
	ctx := context.Background()
	a1 := db.SeedLevel("a1")
	course := db.SeedCourse(catalog.Course{Title: "Articles", Level: a1.ID, Difficulty: 1, IsActive: true})
	lesson := db.SeedLesson(catalog.Lesson{Title: "Definite articles", Course: course.ID, IsActive: true})
	db.SeedLesson(catalog.Lesson{Title: "Hidden", Course: course.ID, IsActive: false})

	res := fac.Lessons(ctx, course.ID)
	require.True(t, res.Success)
	require.Len(t, res.Data, 1)
	assert.Equal(t, lesson.ID, res.Data[0].ID)

	t.Run("single lesson", func(t *testing.T) {
		res := fac.Lesson(ctx, lesson.ID)
		require.True(t, res.Success)
		assert.Equal(t, lesson.Title, res.Data.Title)
	})

	t.Run("not found", func(t *testing.T) {
		res := fac.Lesson(ctx, "no-such-lesson")
		assert.False(t, res.Success)
		require.NotNil(t, res.Error)
	})
}

func TestFacadeCreateCourse(t *testing.T) {
	fac, db, _ := setup(t)
	ctx := context.Background()
	a1 := db.SeedLevel("a1")
	nc := catalog.NewCourse{Title: "Articles", Description: "The a/an/the of it", Level: a1.ID}

	t.Run("unauthenticated", func(t *testing.T) {
		res := fac.CreateCourse(ctx, "", nc)
		assertFailure(t, res.Success, res.Error, MsgNotAuthenticated)
	})

	t.Run("student is denied", func(t *testing.T) {
		signup := fac.Signup(ctx, "awa@test.cm", "secret1234", "Awa")
		require.True(t, signup.Success)
		res := fac.CreateCourse(ctx, signup.Data.Auth.Token, nc)
		assertFailure(t, res.Success, res.Error, "permission denied")
	})

	t.Run("admin creates", func(t *testing.T) {
		testutil.CreateUser(t, dummydb.NewUserRepository(db),
			"Admin", "admin@test.cm", "secret1234", []string{user.RoleAdmin}, true)
		login := fac.Login(ctx, "admin@test.cm", "secret1234")
		require.True(t, login.Success)

		res := fac.CreateCourse(ctx, login.Data.Token, nc)
		require.True(t, res.Success)
		assert.Equal(t, "Articles", res.Data.Title)
		assert.True(t, res.Data.IsActive)
		assert.Equal(t, 1, res.Data.Difficulty)

		listed := fac.Courses(ctx, a1.ID)
		require.True(t, listed.Success)
		assert.Len(t, listed.Data, 1)
	})
}

func TestFacadeIsAdmin(t *testing.T) {
	fac, db, _ := setup(t)
	ctx := context.Background()

	isAdmin, err := fac.IsAdmin(ctx, "")
	assert.NoError(t, err)
	assert.False(t, isAdmin)

	signup := fac.Signup(ctx, "awa@test.cm", "secret1234", "Awa")
	require.True(t, signup.Success)
	isAdmin, err = fac.IsAdmin(ctx, signup.Data.Auth.Token)
	assert.NoError(t, err)
	assert.False(t, isAdmin)

	testutil.CreateUser(t, dummydb.NewUserRepository(db),
		"Admin", "admin@test.cm", "secret1234", []string{user.RoleAdminOwner}, true)
	login := fac.Login(ctx, "admin@test.cm", "secret1234")
	require.True(t, login.Success)
	isAdmin, err = fac.IsAdmin(ctx, login.Data.Token)
	assert.NoError(t, err)
	assert.True(t, isAdmin)
}
