package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrSvc.ResetPassword(context.Background(), email, pwd)
	if err != nil {
		return err
	}
	fmt.Printf("Password of %s updated.\n", usr.Email)
	return nil
}

// createSuperuser creates an active superuser, or promotes the existing user with that email.
func (cli *commandLine) createSuperuser(email, phone, pwd string) error {
	usr, err := cli.usrSvc.CreateSuperuser(context.Background(), email, phone, pwd)
	if err != nil {
		return errors.Wrap(err, "creating superuser")
	}
	fmt.Printf("Superuser %s (#%d) ready.\n", usr.Email, usr.ID)
	return nil
}
