package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/repoboard/internal/client/app"
	"github.com/dmitrijs2005/repoboard/internal/client/config"
	"github.com/dmitrijs2005/repoboard/internal/flagx"
	"github.com/dmitrijs2005/repoboard/internal/logging"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(args[1:])
	if err != nil {
		log.Printf("config: %v", err)
		return 2
	}

	var repo string
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.StringVar(&repo, "r", "", "repository (owner/name) whose board to watch")
	if err := fs.Parse(flagx.FilterArgs(args[1:], []string{"-r"})); err != nil || repo == "" {
		log.Printf("usage: %s -r owner/name [-a addr] [-f store]", args[0])
		return 2
	}

	logger := logging.New(logging.Options{Level: os.Getenv("LOG_LEVEL"), Format: "text"})

	a, err := app.NewApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer a.Close()

	if err := a.SignIn(ctx, os.Getenv("GITHUB_TOKEN")); err != nil {
		log.Printf("sign in: %v", err)
		return 1
	}

	if err := a.Watch(ctx, repo); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}
