package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core/calendar"
	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/feed"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc  user.Service
	stdSvc  student.Service
	clsSvc  class.Service
	feedSvc feed.Service
	chatSvc chat.Service
	calSvc  calendar.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -name NAME -email EMAIL [-role ROLE] - create a user and print their invitation code")
	fmt.Println("  gencode -email EMAIL - issue a fresh invitation code for an existing user")
	fmt.Println("  setpassword -email EMAIL - set a user's password. The password will be prompted next")
	fmt.Println("  seed - load a demo school fixture")
	fmt.Println("  agenda -email EMAIL - print a user's merged calendar")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", user.RoleAdmin, "One of: ADMIN, TEACHER, PARENT, STUDENT_USER.")

	genCodeCmd := flag.NewFlagSet("gencode", flag.ExitOnError)
	genCodeEmail := genCodeCmd.String("email", "", "The user's email.")

	setPwdCmd := flag.NewFlagSet("setpassword", flag.ExitOnError)
	setPwdEmail := setPwdCmd.String("email", "", "The user's email. The password will be prompted next.")

	agendaCmd := flag.NewFlagSet("agenda", flag.ExitOnError)
	agendaEmail := agendaCmd.String("email", "", "The user's email.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole)
	case "gencode":
		if err := genCodeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *genCodeEmail == "" {
			genCodeCmd.Usage()
			return errHelp
		}
		return cli.genCode(*genCodeEmail)
	case "setpassword":
		if err := setPwdCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setPwdEmail == "" {
			setPwdCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			setPwdCmd.Usage()
			return errHelp
		}
		return cli.setPassword(*setPwdEmail, string(pwd))
	case "seed":
		return cli.seed()
	case "agenda":
		if err := agendaCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *agendaEmail == "" {
			agendaCmd.Usage()
			return errHelp
		}
		return cli.agenda(*agendaEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}
