package main

import (
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/calendar"
	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/feed"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	inmemdb "github.com/trezcool/darasa/storage/inmem"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridAPIKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	db := inmemdb.Open(logger)
	usrSvc := user.NewService(conf, inmemdb.NewUserRepository(db), mailSvc, logger)
	clsSvc := class.NewService(inmemdb.NewClassRepository(db), logger)
	stdSvc := student.NewService(inmemdb.NewStudentRepository(db), usrSvc, logger)
	postRepo := inmemdb.NewPostRepository(db)
	feedSvc := feed.NewService(postRepo, logger)
	chatSvc := chat.NewService(inmemdb.NewMessageRepository(db), usrSvc, logger)
	calSvc := calendar.NewService(inmemdb.NewCalendarRepository(db), usrSvc, stdSvc, clsSvc, postRepo, logger)

	cli := commandLine{
		usrSvc:  usrSvc,
		stdSvc:  stdSvc,
		clsSvc:  clsSvc,
		feedSvc: feedSvc,
		chatSvc: chatSvc,
		calSvc:  calSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
