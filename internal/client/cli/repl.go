package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	VerifyEmail(ctx context.Context, args []string) error
	ResendVerification(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: register, login, verify <token>, resend, forgot, reset, ping, exit"
	helpSignedIn  = "Available commands: whoami, refresh, passwd, logout, verify <token>, resend, ping, exit"
)

// runREPL reads commands from scanner until EOF or exit/quit. Handler errors
// are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("credkeeper %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "verify":
			err = a.VerifyEmail(ctx, args)
		case "resend":
			err = a.ResendVerification(ctx)
		case "forgot":
			err = a.ForgotPassword(ctx)
		case "reset":
			err = a.ResetPassword(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "refresh":
			err = a.Refresh(ctx)
		case "passwd":
			err = a.ChangePassword(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "ping":
			err = a.Ping(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", describe(err))
		}
	}
}

// Root runs the REPL over stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to credkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
