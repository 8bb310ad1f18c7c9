package main

import (
	"fmt"
	"log"
	"net/mail"
	"os"

	apiclient "github.com/trezcool/shule/client"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enroll"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stderr, "shulectl: ", 0)

	var logger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	opts := apiclient.FromConfig(conf)
	opts.Logger = logger
	opts.OnSessionExpired = func(route string) {
		fmt.Fprintln(os.Stderr, "session expired; run `shulectl login` to authenticate again")
	}
	client, err := apiclient.NewClient(opts)
	errAndDie(err)

	validate, _ := core.NewValidator()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	var notify []mail.Address
	if conf.AdminEmailAddr != "" {
		notify = append(notify, conf.AdminEmail())
	}
	enrollSvc := enroll.NewService(client, validate, logger, mailSvc, notify...)

	cli := &commandLine{
		client:    client,
		enrollSvc: enrollSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		std.Fatalf("%+v", err)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
