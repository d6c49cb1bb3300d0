package main

import (
	"fmt"
	"os"

	"github.com/celebrationpro/celebro/internal/config"
	"github.com/celebrationpro/celebro/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "celebro",
	Short: "Celebro - event planning task tracker",
	Long:  `Celebro tracks event-planning tasks as a hierarchy with dependencies, computing start eligibility, progress roll-up and the critical path per event.`,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	cfgPath string
	dbPath  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(boardCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openStore opens the store configured via flags and config file.
func openStore() (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

// resolveEvent falls back to the configured default event.
func resolveEvent(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.DefaultEvent != "" {
		return cfg.DefaultEvent, nil
	}
	return "", fmt.Errorf("no event given: pass --event or set default_event in %s", cfgPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// --- Helpers ---

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
