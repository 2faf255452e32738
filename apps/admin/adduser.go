package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core/user"
)

// addUser creates a user and prints the invitation code they will log in
// with.
func (cli *commandLine) addUser(name, email, role string) error {
	created, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		Name:  name,
		Email: email,
		Role:  role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s) created\ninvitation code: %s\n",
		created.User.Name, user.RoleDisplayName(created.User.Role), created.InvitationCode)
	return nil
}

// genCode re-issues an invitation code for an existing user, revoking their
// previous one.
func (cli *commandLine) genCode(email string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := cli.usrSvc.GenerateCode(ctx, usr.ID)
	if err != nil {
		return err
	}
	fmt.Printf("invitation code: %s\n", code.Code)
	return nil
}

func (cli *commandLine) setPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.CompletePasswordSetup(ctx, usr.ID, user.SetPassword{
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
