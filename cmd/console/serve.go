package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/demexconsole/console/internal/config"
	"github.com/demexconsole/console/internal/dispatch"
	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/metrics"
	"github.com/demexconsole/console/internal/patchfile"
	"github.com/demexconsole/console/internal/persist"
	"github.com/demexconsole/console/internal/show"
	"github.com/demexconsole/console/internal/statusapi"
)

func newServeCmd() *cobra.Command {
	var patchPath string
	var restore bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the render loop and dispatch DMX to configured outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if patchPath == "" {
				patchPath = cfg.ShowFile
			}
			return runServe(cfg, patchPath, restore)
		},
	}

	cmd.Flags().StringVar(&patchPath, "patch", "", "patch file to load (defaults to $SHOW_FILE)")
	cmd.Flags().BoolVar(&restore, "restore", false, "restore the most recently saved show snapshot instead of the patch file's fixtures")
	return cmd
}

func runServe(cfg *config.Config, patchPath string, restore bool) error {
	doc, err := patchfile.Load(patchPath)
	if err != nil {
		return err
	}

	dispatcher, err := dispatch.NewDispatcher(cfg.Outputs...)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	store, err := persist.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	// A restored snapshot re-patches its own fixtures from scratch (see
	// persist.Snapshot.Apply), so a restore replaces the patch file's
	// fixtures outright rather than layering on top of them — patching
	// both into the same store would risk colliding ids/addresses.
	var s *show.Show
	restored := false
	if restore {
		if snap, err := store.Latest(); err != nil {
			log.Printf("🎭 no prior show snapshot to restore: %v", err)
		} else {
			lookup, err := doc.TypeLookup(patchPath)
			if err != nil {
				return err
			}
			s = show.New(fixture.NewStore(), dispatcher)
			if err := snap.Apply(s, lookup); err != nil {
				return err
			}
			restored = true
		}
	}
	if !restored {
		fixtures := fixture.NewStore()
		if err := doc.Apply(patchPath, fixtures); err != nil {
			return err
		}
		s = show.New(fixtures, dispatcher)
	}
	s.SetTickRate(cfg.TickRate)

	hub := statusapi.NewHub(s)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	s.SetTickCallback(func(dirty []uint16, elapsed time.Duration) {
		hub.HandleTick(dirty, elapsed)
		logger.Debug("tick", "dirtyUniverses", len(dirty), "elapsedMicros", elapsed.Microseconds())
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: hub.Router(cfg.CORSOrigin),
	}

	mux := http.NewServeMux()
	mux.Handle("/", httpServer.Handler)
	mux.Handle("/metrics", metrics.Handler())
	httpServer.Handler = mux

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Printf("🎬 status API listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("status API server error: %v", err)
		}
	}()

	go s.Run(ctx)

	<-ctx.Done()
	log.Printf("🎬 shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	s.Stop()

	if _, err := store.Save("autosave", persist.FromShow(s)); err != nil {
		log.Printf("show autosave failed: %v", err)
	}

	return nil
}
