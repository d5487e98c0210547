package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/grammarlab/grammarlab/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// dbUser mirrors the "user" table.
type dbUser struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Roles        pq.StringArray `db:"roles"`
	Prefs        []byte         `db:"prefs"`
	IsActive     bool           `db:"is_active"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    time.Time      `db:"last_login"`
}

func (du dbUser) toUser() (user.User, error) {
	prefs := make(map[string]string)
	if len(du.Prefs) > 0 {
		if err := json.Unmarshal(du.Prefs, &prefs); err != nil {
			return user.User{}, errors.Wrap(err, "decoding user prefs")
		}
	}
	return user.User{
		ID:           du.ID,
		Name:         du.Name,
		Email:        du.Email,
		Roles:        du.Roles,
		Prefs:        prefs,
		IsActive:     du.IsActive,
		PasswordHash: du.PasswordHash,
		CreatedAt:    du.CreatedAt.UTC(),
		UpdatedAt:    du.UpdatedAt.UTC(),
		LastLogin:    du.LastLogin.UTC(),
	}, nil
}

func encodePrefs(prefs map[string]string) ([]byte, error) {
	if prefs == nil {
		prefs = make(map[string]string)
	}
	return json.Marshal(prefs)
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	var exists bool
	err := repo.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND id != ALL($2))`,
		email, pq.Array(exclIDs),
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	prefs, err := encodePrefs(usr.Prefs)
	if err != nil {
		return user.User{}, err
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO "user" (id, name, email, roles, prefs, is_active, password_hash, created_at, updated_at, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		usr.ID, usr.Name, usr.Email, pq.Array(usr.Roles), prefs, usr.IsActive,
		usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, query string, arg interface{}) (user.User, error) {
	var du dbUser
	if err := repo.db.GetContext(ctx, &du, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "querying user")
	}
	return du.toUser()
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE email = $1`, email)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	prefs, err := encodePrefs(usr.Prefs)
	if err != nil {
		return user.User{}, err
	}

	res, err := repo.db.ExecContext(ctx,
		`UPDATE "user"
		 SET name = $2, email = $3, roles = $4, prefs = $5, is_active = $6,
		     password_hash = $7, updated_at = $8, last_login = $9
		 WHERE id = $1`,
		usr.ID, usr.Name, usr.Email, pq.Array(usr.Roles), prefs, usr.IsActive,
		usr.PasswordHash, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
