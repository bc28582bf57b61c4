package main

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	op, err := cli.opRepo.GetOperatorByUsernameOrEmail(core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err := op.SetPassword(pwd); err != nil {
		return err
	}
	op.UpdatedAt = time.Now().UTC()
	_, err = cli.opRepo.UpdateOperator(op, nil, nil)
	return err
}
