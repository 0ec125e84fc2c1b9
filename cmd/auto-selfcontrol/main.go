package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"autoselfcontrol/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		runPass   bool
		install   bool
		uninstall bool
		status    bool
		watch     bool
		dir       string
	)
	flag.BoolVar(&runPass, "run", false, "start SelfControl now if a schedule is active")
	flag.BoolVar(&runPass, "r", false, "shorthand for -run")
	flag.BoolVar(&install, "install", false, "install the launchd daemon from config.json")
	flag.BoolVar(&install, "i", false, "shorthand for -install")
	flag.BoolVar(&uninstall, "uninstall", false, "remove the launchd daemon and the frozen run state")
	flag.BoolVar(&status, "status", false, "print installation and block status")
	flag.BoolVar(&watch, "watch", false, "stay in the foreground and react to config changes")
	flag.StringVar(&dir, "dir", defaultSettingsDir(), "settings directory")
	flag.StringVar(&dir, "d", defaultSettingsDir(), "shorthand for -dir")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(dir, app.Deps{})
	defer a.Close()

	var err error
	switch {
	case runPass:
		err = a.Run(ctx)
	case install:
		err = a.Install(ctx)
	case uninstall:
		err = a.Uninstall(ctx)
	case status:
		err = a.Status(ctx)
	case watch:
		err = a.Watch(ctx)
	default:
		flag.Usage()
		err = errors.New("no action specified")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return app.ExitCode(err)
}

func defaultSettingsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Running under sudo without HOME; root's default on macOS.
		return "/var/root/.config/auto-selfcontrol"
	}
	return filepath.Join(home, ".config", "auto-selfcontrol")
}
