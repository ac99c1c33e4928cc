package main

import (
	"context"
	"time"

	"github.com/quadbase/ocms/core"
	"github.com/quadbase/ocms/core/user"
)

// addUser creates a user.User, or resets its password if it already exists.
func (cli *commandLine) addUser(uname, pwd string, role user.Role) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsername(ctx, uname)
	if err == nil {
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		return cli.usrRepo.UpdatePasswordHash(ctx, usr.ID, usr.PasswordHash)
	}
	if err != user.ErrNotFound {
		return err
	}

	usr = user.User{Username: uname, Role: role, CreatedAt: time.Now().UTC()}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.CreateUser(ctx, usr)
	return err
}
