package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/commands"
)

// Version is set at build time via -ldflags "-X main.Version=X.Y.Z"
var Version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:   "coachboard",
	Short: "coachboard - tasks, risks and analytics from the terminal",
	Long: `coachboard is the command-line client for the coachboard backend.

Quick Start:
  coachboard login                  Log in with username/email and password
  coachboard tasks board            Kanban view of your tasks
  coachboard analytics show         Dashboard metrics

Commands:
  login / logout / register         Session management
  oauth-callback <url>              Finish a Google sign-in
  status / whoami                   Inspect the stored session
  tasks|risks|projects|posts        list, get, create, update, delete
  analytics show|export             Metrics and reports
  ai generate|history|export        AI studio
  account ...                       Profile, photo, password, data export, deletion
  config init|show                  Write or print the configuration

Config: ~/.coachboard/config.yaml (override the directory with COACHBOARD_HOME)`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	commands.RegisterFlags(rootCmd)
	commands.Register(rootCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
