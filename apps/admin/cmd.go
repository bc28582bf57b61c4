package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/telepoint/backoffice/core/operator"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	opRepo operator.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the application database and user if missing")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command")
	fmt.Println("  addoperator -name NAME -username USERNAME -email EMAIL [-admin] - create or update an operator")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset an operator's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addOperatorCmd := flag.NewFlagSet("addoperator", flag.ExitOnError)
	addOperatorName := addOperatorCmd.String("name", "", "The operator's display name.")
	addOperatorUname := addOperatorCmd.String("username", "", "The operator's username.")
	addOperatorEmail := addOperatorCmd.String("email", "", "The operator's email.")
	addOperatorAdmin := addOperatorCmd.Bool("admin", false, "Grant management permissions.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The operator's username or email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addoperator":
		if err := addOperatorCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addOperatorUname == "" && *addOperatorEmail == "" {
			addOperatorCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addOperatorCmd.Usage()
			return errHelp
		}
		return cli.addOperator(*addOperatorName, *addOperatorUname, *addOperatorEmail, string(pwd), *addOperatorAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() ([]byte, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	return pwd, err
}
