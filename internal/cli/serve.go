package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maestro-drills/backend/internal/catalog"
	"github.com/maestro-drills/backend/internal/exercises"
	"github.com/maestro-drills/backend/internal/logger"
	"github.com/maestro-drills/backend/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the due digest worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(load)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Catalog.SeedOnStart {
				entries, err := catalog.Default()
				if err != nil {
					return err
				}
				if _, err := a.service.Seed(ctx, entries); err != nil {
					return fmt.Errorf("seed catalog: %w", err)
				}
			}

			return serve(ctx, a)
		},
	}
}

func newRouter(service *exercises.Service, log *logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recover(log), middleware.RequestLogger(log))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	exercises.NewHandler(service, log).RegisterRoutes(api)
	return r
}

func serve(ctx context.Context, a *app) error {
	c := cors.New(cors.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           c.Handler(newRouter(a.service, a.log)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if a.cfg.Digest.Enabled {
		g.Go(func() error {
			a.service.StartDueDigestWorker(gctx, a.cfg.Digest.Hour)
			return nil
		})
	}

	return g.Wait()
}
