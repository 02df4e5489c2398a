// Recipebook is a terminal recipe catalog. It talks to the recipe service
// named by RECIPES_API_BASE and falls back to a local dataset for the rest
// of the session once the service stops answering.
//
// Usage:
//
//	recipebook [-verbose] [-quiet] [-log-file path] [-env-file path]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hammamikhairi/recipebook/internal/api"
	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/command"
	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".recipebook/recipebook.log", "file to write logs to (use \"stderr\" to log to console)")
	envFile := flag.String("env-file", ".env", "dotenv file merged into the environment before reading settings")
	flag.Parse()

	if err := config.LoadFile(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logLevel := cfg.LogLevel
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		if dir := filepath.Dir(*logFile); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := api.NewFromConfig(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	store := catalog.New(client, log, catalog.WithPageSize(cfg.PageSize))
	ui := display.NewUI(store.State())

	app := &cliApp{
		cfg:    cfg,
		store:  store,
		parser: command.NewParser(log),
		log:    log,
		ui:     ui,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}
