package main

import (
	"context"
	"fmt"
	"syscall"

	"golang.org/x/term"
)

var readPasswordFunc = term.ReadPassword // mockable

func (cli *commandLine) login(uname string) error {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		return errHelp
	}

	if err := cli.client.Login(context.Background(), uname, string(pwd)); err != nil {
		return err
	}
	fmt.Println("authenticated; token:")
	fmt.Println(cli.client.Token())
	return nil
}
