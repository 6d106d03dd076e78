package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/config"
)

var (
	configForce        bool
	configSessionStore string
	configCacheBackend string
)

var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Long: `Write config.yaml with the defaults merged with any environment overrides.

Use --api-url, --session-store and --cache-backend to change values before saving.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configInitCmd.Flags().StringVar(&configSessionStore, "session-store", "", "file, sqlite or memory")
	configInitCmd.Flags().StringVar(&configCacheBackend, "cache-backend", "", "memory, redis or none")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

func configPath() (string, error) {
	if ConfigPath != "" {
		return ConfigPath, nil
	}
	return config.DefaultPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if APIURL != "" {
		cfg.APIURL = APIURL
	}
	if configSessionStore != "" {
		cfg.Session.Store = configSessionStore
		cfg.Session.Path = ""
	}
	if configCacheBackend != "" {
		cfg.Cache.Backend = configCacheBackend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Wrote "+path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput {
		return printJSON(out, cfg)
	}
	printField(out, "Config", path)
	printField(out, "API", cfg.APIURL)
	printField(out, "Request timeout", cfg.RequestTimeout)
	printField(out, "Session store", fmt.Sprintf("%s (%s)", cfg.Session.Store, cfg.Session.Path))
	printField(out, "Cache", fmt.Sprintf("%s, ttl %s", cfg.Cache.Backend, cfg.Cache.TTL))
	if cfg.RateLimit.RPS > 0 {
		printField(out, "Rate limit", fmt.Sprintf("%.1f rps, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	printField(out, "Log", fmt.Sprintf("%s (%s)", cfg.Log.Level, cfg.Log.Format))
	return nil
}
