package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/grammarlab/grammarlab/core/user"
	dummydb "github.com/grammarlab/grammarlab/storage/database/dummy"
	testutil "github.com/grammarlab/grammarlab/tests"
)

func setup(t *testing.T) *commandLine {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return &commandLine{
		usrRepo: dummydb.NewUserRepository(db),
		catRepo: dummydb.NewCatalogRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sqlx.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
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
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	existing := testutil.CreateUser(t, cli.usrRepo,
		"Awa", "awa@test.cm", "secret1234", []string{user.RoleStudent}, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addadmin", "-email", "boss@test.cm"}, wantErr: errHelp},
		{name: "creates a new admin", args: []string{"addadmin", "-email", "boss@test.cm", "-name", "Boss"}, extra: extra{pwd: "secret1234"}},
		{name: "promotes an existing user", args: []string{"addadmin", "-email", existing.Email}, extra: extra{pwd: "newsecret123"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			email := args[3]
			usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
			if err != nil {
				t.Fatalf("GetUserByEmail() failed: %v", err)
			}
			if !usr.IsAdmin() {
				t.Error("expected an admin account")
			}
		})
	}

	t.Run("promotion resets the password", func(t *testing.T) {
		usr, err := cli.usrRepo.GetUserByEmail(ctx, existing.Email)
		if err != nil {
			t.Fatalf("GetUserByEmail() failed: %v", err)
		}
		if bytes.Equal(usr.PasswordHash, existing.PasswordHash) {
			t.Error("failed to update the password")
		}
	})
}

func Test_commandLine_seedLevels(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	if err := cli.run([]string{"admin", "seedlevels"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	// re-running must not duplicate
	if err := cli.run([]string{"admin", "seedlevels"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	levels, err := cli.catRepo.QueryAllLevels(ctx)
	if err != nil {
		t.Fatalf("QueryAllLevels() failed: %v", err)
	}
	if len(levels) != len(defaultLevelCodes) {
		t.Fatalf("got %d levels, want %d", len(levels), len(defaultLevelCodes))
	}
	for i, code := range defaultLevelCodes {
		if levels[i].Code != code {
			t.Errorf("levels[%d].Code = %s, want %s", i, levels[i].Code, code)
		}
	}
}
