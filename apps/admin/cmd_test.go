package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core/operator"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

func setup(t *testing.T) (*commandLine, operator.Repository) {
	t.Helper()
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	db, err := dummydb.Open()
	require.NoError(t, err)
	opRepo := dummydb.NewOperatorRepository(db)

	return &commandLine{db: &sqlx.DB{}, opRepo: opRepo}, opRepo
}

func createOperator(t *testing.T, repo operator.Repository, name, uname, email, pwd string, isAdmin bool) operator.Operator {
	t.Helper()
	now := time.Now().UTC()
	op := operator.Operator{
		Name: name, Username: uname, Email: email,
		IsAdmin: isAdmin, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, op.SetPassword(pwd))
	op, err := repo.CreateOperator(op)
	require.NoError(t, err)
	return op
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	pwd        string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create requires a NAME argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "ticket", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, opRepo := setup(t)

	op := createOperator(t, opRepo, "Awe", "awe", "awe@test.it", "mdr", false)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "operator not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: operator.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", op.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "-username", op.Email}, pwd: "lmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := opRepo.GetOperatorByID(op.ID)
				require.NoError(t, err)
				if bytes.Equal(refreshed.PasswordHash, op.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}

func Test_commandLine_addOperator(t *testing.T) {
	cli, opRepo := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cret"), nil }

	err := cli.run([]string{"admin", "addoperator", "-name", "Boss", "-username", "boss", "-email", "boss@test.it", "-admin"})
	require.NoError(t, err)

	op, err := opRepo.GetOperatorByUsername("boss")
	require.NoError(t, err)
	assert.True(t, op.IsAdmin)
	assert.True(t, op.IsActive)
	assert.NoError(t, op.CheckPassword("s3cret"))

	// running again updates instead of duplicating
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("n3wpass"), nil }
	err = cli.run([]string{"admin", "addoperator", "-username", "boss", "-email", "boss@test.it"})
	require.NoError(t, err)

	refreshed, err := opRepo.GetOperatorByUsername("boss")
	require.NoError(t, err)
	assert.Equal(t, op.ID, refreshed.ID)
	assert.NoError(t, refreshed.CheckPassword("n3wpass"))
}
