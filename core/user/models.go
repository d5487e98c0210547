package user

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/grammarlab/grammarlab/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	StudentRoles = []string{RoleStudent}
	AllRoles     = append(append([]string{}, AdminRoles...), StudentRoles...)
)

// User is the identity held by the backend. The application never assigns
// IDs; they are issued on creation.
type User struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Roles        []string          `json:"roles"`
	Prefs        map[string]string `json:"prefs"`
	IsActive     bool              `json:"is_active"`
	PasswordHash []byte            `json:"-"`
	CreatedAt    time.Time         `json:"created_at"` // UTC
	UpdatedAt    time.Time         `json:"updated_at"` // UTC
	LastLogin    time.Time         `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u *User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

func (nu *NewUser) Validate(validate *validator.Validate, translator ut.Translator) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			return core.NewValidationError(err, core.TranslateValidationErrors(vErrs, translator)...)
		}
		return err
	}
	return nil
}

// UpdateName renames the current identity.
type UpdateName struct {
	Name string `json:"name" form:"name" validate:"required"`
}

func (un *UpdateName) Validate(validate *validator.Validate, translator ut.Translator) error {
	un.Name = core.CleanString(un.Name)
	if err := validate.Struct(un); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			return core.NewValidationError(err, core.TranslateValidationErrors(vErrs, translator)...)
		}
		return err
	}
	return nil
}

// ChangePassword replaces the current identity's password after verifying
// the old one.
type ChangePassword struct {
	OldPassword string `json:"old_password" form:"old_password" validate:"required"`
	NewPassword string `json:"new_password" form:"new_password" validate:"required,min=8"`
}

func (cp *ChangePassword) Validate(validate *validator.Validate, translator ut.Translator) error {
	if err := validate.Struct(cp); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			return core.NewValidationError(err, core.TranslateValidationErrors(vErrs, translator)...)
		}
		return err
	}
	return nil
}
