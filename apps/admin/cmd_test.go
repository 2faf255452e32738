package main

import (
	"context"
	"io/ioutil"
	"log"
	"strings"
	"testing"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/calendar"
	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/feed"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
)

type mailSvcStub struct{}

func (mailSvcStub) SendMessages(...*core.EmailMessage) {}

func setup(t *testing.T) *commandLine {
	t.Helper()

	conf := &core.Config{AppName: "Darasa", TestMode: true}
	logger := logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
	logger.Enable(false)

	db := inmemdb.Open(logger)
	usrSvc := user.NewService(conf, inmemdb.NewUserRepository(db), mailSvcStub{}, logger)
	clsSvc := class.NewService(inmemdb.NewClassRepository(db), logger)
	stdSvc := student.NewService(inmemdb.NewStudentRepository(db), usrSvc, logger)
	postRepo := inmemdb.NewPostRepository(db)

	return &commandLine{
		usrSvc:  usrSvc,
		stdSvc:  stdSvc,
		clsSvc:  clsSvc,
		feedSvc: feed.NewService(postRepo, logger),
		chatSvc: chat.NewService(inmemdb.NewMessageRepository(db), usrSvc, logger),
		calSvc:  calendar.NewService(inmemdb.NewCalendarRepository(db), usrSvc, stdSvc, clsSvc, postRepo, logger),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("LePassword#007"), nil }

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "adduser: no flags", args: []string{"adduser"}, wantErr: errHelp},
		{name: "adduser: missing email", args: []string{"adduser", "-name", "Alice"}, wantErr: errHelp},
		{name: "adduser: bad role", args: []string{"adduser", "-name", "Alice", "-email", "alice@darasa.io", "-role", "BOSS"}, wantErrStr: "role"},
		{name: "adduser", args: []string{"adduser", "-name", "Alice", "-email", "alice@darasa.io"}},
		{name: "adduser: duplicate email", args: []string{"adduser", "-name", "Alice2", "-email", "alice@darasa.io"}, wantErrStr: "email"},
		{name: "gencode: no flags", args: []string{"gencode"}, wantErr: errHelp},
		{name: "gencode: unknown user", args: []string{"gencode", "-email", "nobody@darasa.io"}, wantErr: user.ErrNotFound},
		{name: "gencode", args: []string{"gencode", "-email", "alice@darasa.io"}},
		{name: "setpassword: no flags", args: []string{"setpassword"}, wantErr: errHelp},
		{name: "setpassword", args: []string{"setpassword", "-email", "alice@darasa.io"}},
		{name: "agenda: no flags", args: []string{"agenda"}, wantErr: errHelp},
		{name: "agenda", args: []string{"agenda", "-email", "alice@darasa.io"}},
		{name: "seed", args: []string{"seed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("run() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrStr) {
					t.Errorf("run() error = %v, want containing %q", err, tt.wantErrStr)
				}
			default:
				if err != nil {
					t.Errorf("run() unexpected error = %v", err)
				}
			}
		})
	}

	// the seeded demo school is queryable
	users, err := cli.usrSvc.QueryAll(context.Background())
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(users) < 5 {
		t.Errorf("QueryAll() = %d users, want at least 5", len(users))
	}
}
