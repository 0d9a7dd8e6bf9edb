package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnote/omnote/internal/config"
	"github.com/omnote/omnote/internal/logging"
	"github.com/omnote/omnote/internal/session"
	"github.com/omnote/omnote/internal/theme"
)

// runCmd drives the resolution and persistence core without the editor
// widget on top: restore the session, keep the palette synchronized, flush
// and stop cleanly on SIGINT/SIGTERM. Useful for debugging a theme setup.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the headless core until interrupted",
	RunE: func(cobraCmd *cobra.Command, _ []string) error {
		log := logging.NewFromEnv()

		resolver := theme.NewResolver(theme.ResolverOptions{
			ForceSystem: settings.Theme.Mode == config.ThemeModeSystem,
			Log:         log,
		})
		sync := theme.NewSyncService(resolver, theme.SyncOptions{
			LiveSync: settings.Theme.Watch,
			Debounce: time.Duration(settings.Theme.DebounceMs) * time.Millisecond,
			Log:      log,
		})

		sessionPath, err := config.GetSessionFile()
		if err != nil {
			return err
		}
		store := session.NewStore(sessionPath, log)
		manager := session.NewManager(store, session.ManagerOptions{
			FlushInterval: time.Duration(settings.Session.FlushIntervalMs) * time.Millisecond,
			OnWriteFailure: func(err error) {
				log.Error().Err(err).Msg("session persistence degraded")
			},
			Log: log,
		})

		if err := manager.Restore(); err != nil {
			return err
		}
		doc := manager.Document()
		log.Info().Int("tabs", len(doc.Tabs)).Msg("session restored")

		sync.Start()

		ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(settings.Session.ShutdownTimeoutMs)*time.Millisecond,
		)
		defer cancel()

		if err := sync.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("theme sync did not stop cleanly")
		}
		return manager.Close(shutdownCtx)
	},
}
