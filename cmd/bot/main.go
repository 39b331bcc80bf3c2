package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomaldridge12/loanbot/internal/app"
	"github.com/tomaldridge12/loanbot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	bot, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build app:", err)
		os.Exit(1)
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot.Logger.Info("loanbot starting", "env", cfg.AppEnv, "roster", cfg.RosterPath)
	bot.Run(ctx)
	bot.Logger.Info("loanbot stopped")
}
