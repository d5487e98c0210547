package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/grammarlab/grammarlab/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email && !isExcluded(*usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func isExcluded(usr user.User, excluded []user.User) bool {
	for _, ex := range excluded {
		if ex.ID == usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = uuid.New().String()
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.table[usr.ID] = &usr
	return usr, nil
}
