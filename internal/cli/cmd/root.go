// Package cmd provides Cobra CLI commands for omnote.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnote/omnote/internal/config"
)

var (
	flagSystemTheme bool
	flagNoWatch     bool

	settings *config.Settings

	rootCmd = &cobra.Command{
		Use:   "omnote",
		Short: "A keyboard-driven plain-text editor that follows your terminal theme",
		Long: `OmNote - a plain-text editor whose palette follows your terminal.

The editor resolves its colors from a prioritized cascade of sources
(Omarchy theme, alacritty, kitty, foot, OMNOTE_* environment overrides)
and live-updates as those files change. Open tabs, cursor positions and
window geometry are persisted crash-safe between runs.

The graphical editor is launched by the desktop entry; these subcommands
expose the resolution and persistence core for inspection and scripting.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}

			// Flags mirror the control environment variables so the config
			// layer sees one consistent channel.
			if flagSystemTheme {
				if err := os.Setenv("OMNOTE_THEME_MODE", "system"); err != nil {
					return err
				}
			}
			if flagNoWatch {
				if err := os.Setenv("OMNOTE_NO_WATCH", "1"); err != nil {
					return err
				}
			}

			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("initialize config: %w", err)
			}
			if err := mgr.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			settings = mgr.Get()
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagSystemTheme, "system-theme", false,
		"use the system theme, bypassing the source cascade")
	rootCmd.PersistentFlags().BoolVar(&flagNoWatch, "no-watch", false,
		"disable live theme watching (one-shot resolution at startup)")

	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
