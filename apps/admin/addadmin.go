package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/user"
)

// addAdmin creates an owner-admin account, or promotes an existing account
// and resets its password.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Name:      name,
			Email:     email,
			Roles:     []string{user.RoleAdminOwner},
			Prefs:     make(map[string]string),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	if name != "" {
		usr.Name = name
	}
	usr.Roles = []string{user.RoleAdminOwner}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
