package main

import (
	"time"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
)

// addOperator updates or creates an operator account.
func (cli *commandLine) addOperator(name, uname, email, pwd string, isAdmin bool) error {
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	op, err := cli.opRepo.GetOperatorByUsernameOrEmail(uname)
	if err != nil {
		if err != operator.ErrNotFound {
			return err
		}
		op = operator.Operator{
			Name:      name,
			Username:  uname,
			Email:     email,
			IsAdmin:   isAdmin,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := op.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.opRepo.CreateOperator(op)
		return err
	}

	if name != "" {
		op.Name = name
	}
	if email != "" {
		op.Email = email
	}
	if err := op.SetPassword(pwd); err != nil {
		return err
	}
	op.UpdatedAt = now
	active := true
	_, err = cli.opRepo.UpdateOperator(op, &isAdmin, &active)
	return err
}
