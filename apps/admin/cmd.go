package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/grammarlab/grammarlab/core/catalog"
	"github.com/grammarlab/grammarlab/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sqlx.DB
	usrRepo user.Repository
	catRepo catalog.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]          - run a migration command (up, down, status, ...)")
	fmt.Println("  addadmin -email EMAIL [-name NAME] - create or promote an admin account")
	fmt.Println("  seedlevels                      - ensure the standard levels (a1 .. c2) exist")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminEmail := addAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")
	addAdminName := addAdminCmd.String("name", "", "The admin's display name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminEmail == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminName, *addAdminEmail, string(pwd))
	case "seedlevels":
		return cli.seedLevels()
	default:
		cli.printUsage()
		return errHelp
	}
}
