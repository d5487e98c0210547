// Package webapp holds the application-facing layer of Grammar Lab: a
// data-access facade returning a uniform result envelope, the per-request
// identity state, and the route guard deciding render vs redirect.
package webapp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/catalog"
	"github.com/grammarlab/grammarlab/core/session"
	"github.com/grammarlab/grammarlab/core/user"
)

// User-facing failure messages. Everything else passes the underlying
// message through.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserExists         = "User already exists with this email"
	MsgNotAuthenticated   = "Not authenticated"
)

type (
	// Deps are the backend services the facade delegates to.
	Deps struct {
		Users    user.Service
		Catalog  catalog.Service
		Sessions session.Registry
	}

	// Facade exposes one method per backend operation. Every method wraps
	// exactly one logical backend call and never lets a raw error escape:
	// callers only ever see a core.Result.
	//
	// The backend dependencies are constructed lazily on first use, so a
	// missing backend configuration fails the first real call instead of
	// application startup.
	Facade struct {
		conf   *core.Config
		logger core.Logger
		codec  *tokenCodec

		initOnce sync.Once
		init     func() (*Deps, error)
		deps     *Deps
		initErr  error
	}

	// AuthSession is a successful login: the signed token and its user.
	AuthSession struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	// SignupData composes the outcome of Signup: the created identity plus
	// the session from the immediate follow-up login.
	SignupData struct {
		User user.User   `json:"user"`
		Auth AuthSession `json:"auth"`
	}
)

func NewFacade(conf *core.Config, logger core.Logger, init func() (*Deps, error)) *Facade {
	return &Facade{
		conf:   conf,
		logger: logger,
		codec:  newTokenCodec(conf),
		init:   init,
	}
}

// backend returns the lazily-constructed dependencies. The initializer runs
// at most once, also under concurrent first calls; its error is cached and
// returned by every subsequent call.
func (f *Facade) backend() (*Deps, error) {
	f.initOnce.Do(func() {
		f.deps, f.initErr = f.init()
		if f.initErr != nil {
			// the initializer never runs again, so this failure is permanent:
			// surface it as a shutdown request
			f.initErr = core.NewShutdownError(errors.Wrap(f.initErr, "initializing backend").Error())
		}
	})
	return f.deps, f.initErr
}

// Login authenticates the credentials and registers a new session.
func (f *Facade) Login(ctx context.Context, email, pwd string) core.Result[AuthSession] {
	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.FailErr[AuthSession](err)
	}

	usr, err := deps.Users.Authenticate(ctx, email, pwd)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return core.Fail[AuthSession](MsgInvalidCredentials)
		}
		f.logger.Error("login failed", err)
		return core.FailErr[AuthSession](err)
	}

	sess := session.Session{
		ID:        uuid.New().String(),
		UserID:    usr.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err = deps.Sessions.Add(ctx, sess, f.conf.Server.JWTExpirationDelta); err != nil {
		f.logger.Error("registering session failed", err, usr)
		return core.FailErr[AuthSession](err)
	}

	token, err := f.codec.generate(usr, sess)
	if err != nil {
		f.logger.Error("generating token failed", err, usr)
		return core.FailErr[AuthSession](err)
	}
	return core.OK(AuthSession{Token: token, User: usr})
}

// Signup creates the identity, then immediately logs in with the same
// credentials, composing both outcomes.
func (f *Facade) Signup(ctx context.Context, email, pwd, name string) core.Result[SignupData] {
	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.FailErr[SignupData](err)
	}

	usr, err := deps.Users.Create(ctx, user.NewUser{Name: name, Email: email, Password: pwd})
	if err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return core.Fail[SignupData](MsgUserExists)
		}
		f.logger.Error("signup failed", err)
		return core.FailErr[SignupData](err)
	}

	login := f.Login(ctx, email, pwd)
	if !login.Success {
		return core.Result[SignupData]{Success: false, Error: login.Error}
	}
	return core.OK(SignupData{User: usr, Auth: login.Data})
}

// Logout drops all of the caller's sessions, best-effort: it always reports
// success so the caller proceeds to clear local identity state regardless.
func (f *Facade) Logout(ctx context.Context, token string) core.Result[struct{}] {
	claims, err := f.codec.parse(token)
	if err != nil {
		return core.OK(struct{}{})
	}
	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.OK(struct{}{})
	}
	if err = deps.Sessions.DeleteAllForUser(ctx, claims.Subject); err != nil {
		f.logger.Error("deleting sessions failed", err)
	}
	return core.OK(struct{}{})
}

// CurrentUser resolves the identity behind the token. An absent or dead
// session is an expected outcome, reported as MsgNotAuthenticated and never
// logged at error severity.
func (f *Facade) CurrentUser(ctx context.Context, token string) core.Result[user.User] {
	if token == "" {
		return core.Fail[user.User](MsgNotAuthenticated)
	}
	claims, err := f.codec.parse(token)
	if err != nil {
		return core.Fail[user.User](MsgNotAuthenticated)
	}

	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.FailErr[user.User](err)
	}

	alive, err := deps.Sessions.Exists(ctx, claims.SessionID)
	if err != nil {
		f.logger.Error("checking session failed", err)
		return core.FailErr[user.User](err)
	}
	if !alive {
		return core.Fail[user.User](MsgNotAuthenticated)
	}

	usr, err := deps.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.Fail[user.User](MsgNotAuthenticated)
		}
		f.logger.Error("fetching current user failed", err)
		return core.FailErr[user.User](err)
	}
	return core.OK(usr)
}

// UpdateName renames the current identity.
func (f *Facade) UpdateName(ctx context.Context, token, name string) core.Result[user.User] {
	current := f.CurrentUser(ctx, token)
	if !current.Success {
		return current
	}
	deps, _ := f.backend() // CurrentUser succeeded; backend is up

	usr, err := deps.Users.UpdateName(ctx, current.Data.ID, name)
	if err != nil {
		f.logger.Error("updating name failed", err, current.Data)
		return core.FailErr[user.User](err)
	}
	return core.OK(usr)
}

// UpdatePassword replaces the current identity's password after verifying
// the old one.
func (f *Facade) UpdatePassword(ctx context.Context, token, oldPwd, newPwd string) core.Result[user.User] {
	current := f.CurrentUser(ctx, token)
	if !current.Success {
		return current
	}
	deps, _ := f.backend()

	usr, err := deps.Users.ChangePassword(ctx, current.Data.ID, oldPwd, newPwd)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return core.Fail[user.User](MsgInvalidCredentials)
		}
		f.logger.Error("updating password failed", err, current.Data)
		return core.FailErr[user.User](err)
	}
	return core.OK(usr)
}

// Levels lists all levels, unfiltered.
func (f *Facade) Levels(ctx context.Context) core.Result[[]catalog.Level] {
	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.FailErr[[]catalog.Level](err)
	}
	levels, err := deps.Catalog.Levels(ctx)
	if err != nil {
		f.logger.Error("listing levels failed", err)
		return core.FailErr[[]catalog.Level](err)
	}
	return core.OK(levels)
}

// Courses lists active courses of a level. The filter is literal: an empty
// levelID matches nothing rather than meaning "all levels".
func (f *Facade) Courses(ctx context.Context, levelID string) core.Result[[]catalog.Course] {
	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.FailErr[[]catalog.Course](err)
	}
	courses, err := deps.Catalog.CoursesByLevel(ctx, levelID)
	if err != nil {
		f.logger.Error("listing courses failed", err)
		return core.FailErr[[]catalog.Course](err)
	}
	return core.OK(courses)
}

// Lessons lists active lessons of a course.
func (f *Facade) Lessons(ctx context.Context, courseID string) core.Result[[]catalog.Lesson] {
	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.FailErr[[]catalog.Lesson](err)
	}
	lessons, err := deps.Catalog.LessonsByCourse(ctx, courseID)
	if err != nil {
		f.logger.Error("listing lessons failed", err)
		return core.FailErr[[]catalog.Lesson](err)
	}
	return core.OK(lessons)
}

// Lesson fetches a single lesson by id.
func (f *Facade) Lesson(ctx context.Context, id string) core.Result[catalog.Lesson] {
	deps, err := f.backend()
	if err != nil {
		f.logger.Error("backend unavailable", err)
		return core.FailErr[catalog.Lesson](err)
	}
	lesson, err := deps.Catalog.GetLesson(ctx, id)
	if err != nil {
		if errors.Cause(err) != catalog.ErrNotFound {
			f.logger.Error("fetching lesson failed", err)
		}
		return core.FailErr[catalog.Lesson](err)
	}
	return core.OK(lesson)
}

// CreateCourse creates a course on behalf of an administrator.
func (f *Facade) CreateCourse(ctx context.Context, token string, nc catalog.NewCourse) core.Result[catalog.Course] {
	current := f.CurrentUser(ctx, token)
	if !current.Success {
		return core.Result[catalog.Course]{Success: false, Error: current.Error}
	}
	deps, _ := f.backend()

	isAdmin, err := deps.Users.IsAdmin(ctx, current.Data.ID)
	if err != nil {
		f.logger.Error("checking admin capability failed", err, current.Data)
		return core.FailErr[catalog.Course](err)
	}
	if !isAdmin {
		return core.Fail[catalog.Course]("permission denied")
	}

	course, err := deps.Catalog.CreateCourse(ctx, nc)
	if err != nil {
		f.logger.Error("creating course failed", err, current.Data)
		return core.FailErr[catalog.Course](err)
	}
	return core.OK(course)
}

// Ping reports backend liveness for the health endpoint.
func (f *Facade) Ping(ctx context.Context) error {
	deps, err := f.backend()
	if err != nil {
		return err
	}
	return deps.Sessions.Ping(ctx)
}

// IsAdmin is the opaque, failable capability query behind admin pages.
// An unauthenticated caller is simply not an admin; backend trouble is an
// error the caller must handle (the guard redirects and logs).
func (f *Facade) IsAdmin(ctx context.Context, token string) (bool, error) {
	current := f.CurrentUser(ctx, token)
	if !current.Success {
		if current.Error.Message == MsgNotAuthenticated {
			return false, nil
		}
		return false, errors.New(current.Error.Message)
	}
	deps, _ := f.backend()
	return deps.Users.IsAdmin(ctx, current.Data.ID)
}
