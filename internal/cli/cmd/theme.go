package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/omnote/omnote/internal/config"
	"github.com/omnote/omnote/internal/logging"
	"github.com/omnote/omnote/internal/theme"
)

var themeJSON bool

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Inspect palette resolution",
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Resolve the palette once and print it",
	RunE: func(_ *cobra.Command, _ []string) error {
		log := logging.NewFromEnv()
		resolver := theme.NewResolver(theme.ResolverOptions{
			ForceSystem: settings.Theme.Mode == config.ThemeModeSystem,
			Log:         log,
		})
		pal := resolver.Resolve()

		if themeJSON {
			out, err := json.MarshalIndent(pal, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		printPalette(pal)
		return nil
	},
}

var themeWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch theme sources and print each palette change",
	RunE: func(cobraCmd *cobra.Command, _ []string) error {
		log := logging.NewFromEnv()
		resolver := theme.NewResolver(theme.ResolverOptions{
			ForceSystem: settings.Theme.Mode == config.ThemeModeSystem,
			Log:         log,
		})
		svc := theme.NewSyncService(resolver, theme.SyncOptions{
			LiveSync: settings.Theme.Watch,
			Debounce: time.Duration(settings.Theme.DebounceMs) * time.Millisecond,
			Log:      log,
		})

		unsubscribe := svc.Subscribe(func(pal theme.Palette) {
			printPalette(pal)
		})
		defer unsubscribe()

		svc.Start()

		ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return svc.Stop(stopCtx)
	},
}

func init() {
	themeShowCmd.Flags().BoolVar(&themeJSON, "json", false, "print the palette as JSON")
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeWatchCmd)
}

func printPalette(pal theme.Palette) {
	fmt.Printf("source: %s\n", pal.Source)
	printSwatch("background", pal.Background)
	printSwatch("foreground", pal.Foreground)
	printSwatch("accent", pal.Accent)
	printSwatch("cursor", pal.Cursor)
	printSwatch("selection bg", pal.SelectionBG)
	printSwatch("selection fg", pal.SelectionFG)
}

func printSwatch(label, hex string) {
	if hex == "" {
		return
	}
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("      ")
	fmt.Printf("  %-13s %s %s\n", label, swatch, hex)
}
