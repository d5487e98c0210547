package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/grammarlab/grammarlab/core"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		UpdateName(ctx context.Context, id, name string) (User, error)
		ChangePassword(ctx context.Context, id, oldPwd, newPwd string) (User, error)
		IsAdmin(ctx context.Context, id string) (bool, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

// Create registers a new student identity and sends a welcome email.
func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.repo.CheckEmailUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Roles:     []string{RoleStudent},
		Prefs:     make(map[string]string),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

// Authenticate verifies the credentials and records the login time.
// It returns ErrInvalidCredentials for an unknown email or a wrong password
// alike, so callers cannot probe for registered accounts.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) UpdateName(ctx context.Context, id, name string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = name
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) ChangePassword(ctx context.Context, id, oldPwd, newPwd string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err = usr.CheckPassword(oldPwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err = usr.SetPassword(newPwd); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// IsAdmin is the capability query behind the admin dashboard. It hits the
// backend every time; admin rights may be granted or revoked out-of-band.
func (svc *service) IsAdmin(ctx context.Context, id string) (bool, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}
	return usr.IsAdmin(), nil
}

func (svc *service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome to Grammar Lab",
		TextContent: fmt.Sprintf(
			"Hi %s,\r\n\r\nYour Grammar Lab account is ready. "+
				"Pick a level and start your first lesson!\r\n", usr.Name),
	})
}
