package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// commandFunc is the signature shared by every REPL command.
type commandFunc func(ctx context.Context, args []string) error

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	DeleteAccount(ctx context.Context, args []string) error
	Features(ctx context.Context, args []string) error

	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Subject(ctx context.Context, args []string) error
	Subjects(ctx context.Context, args []string) error
	View(ctx context.Context, args []string) error
	Toggle(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Browse(ctx context.Context, args []string) error

	Show(ctx context.Context, args []string) error
	Tab(ctx context.Context, args []string) error
	Ask(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Suggest(ctx context.Context, args []string) error

	Upload(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, whoami, features, help, exit"
	helpSignedIn  = "Available commands:\n" +
		"  (l)ist [all|recent|subjects], search <text>, subject [name|all], subjects,\n" +
		"  view grid|list, toggle <subject>, refresh, browse [subject]\n" +
		"  show <id> [tab], tab summary|document|qa|history, ask <question>, history, suggest\n" +
		"  upload <path>, delete [id], export [id]\n" +
		"  whoami, profile, delete-account, features, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the WhatTheNote CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// Commands that need a session answer with a hint while signed out. Command
// errors are reported through userMessage and never end the loop, which
// exits on scanner EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	anonymous := map[string]commandFunc{
		"register": a.Register,
		"login":    a.Login,
		"whoami":   a.WhoAmI,
		"features": a.Features,
	}
	gated := map[string]commandFunc{
		"logout":         a.Logout,
		"profile":        a.Profile,
		"delete-account": a.DeleteAccount,
		"l":              a.List,
		"list":           a.List,
		"search":         a.Search,
		"subject":        a.Subject,
		"subjects":       a.Subjects,
		"view":           a.View,
		"toggle":         a.Toggle,
		"refresh":        a.Refresh,
		"browse":         a.Browse,
		"show":           a.Show,
		"open":           a.Show,
		"tab":            a.Tab,
		"ask":            a.Ask,
		"history":        a.History,
		"suggest":        a.Suggest,
		"upload":         a.Upload,
		"delete":         a.Delete,
		"rm":             a.Delete,
		"export":         a.Export,
		"download":       a.Export,
	}

	for {
		printlnFn(fmt.Sprintf("wtn> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		fn, ok := anonymous[cmd]
		if !ok {
			if fn, ok = gated[cmd]; ok && !a.isLoggedIn() {
				printlnFn(userMessage(errNotLoggedIn))
				continue
			}
		}
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err := fn(ctx, args); err != nil {
			printlnFn(userMessage(err))
		}
	}
}
