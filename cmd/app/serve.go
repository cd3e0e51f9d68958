package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"telegram-forum-notifier/internal/infra/api"
	pg "telegram-forum-notifier/internal/infra/db/postgres"
	"telegram-forum-notifier/internal/infra/metrics"
	"telegram-forum-notifier/internal/infra/web"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook endpoint, the host API and the worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, flags)
		},
	}
}

func serve(ctx context.Context, flags *rootFlags) error {
	a, err := buildApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	metrics.MustRegister(nil)
	metrics.SetBuildInfo(version, commit)
	go pg.ReportPoolStats(ctx, a.pool, 15*time.Second, log)

	if err := a.settingsUC.Seed(ctx); err != nil {
		return err
	}
	a.jobs.Start(ctx)

	// ---- HTTP ----
	router := api.NewServer(a.dispatcher, log).Router()
	hostAPI := web.NewServer(a.notifier, a.chatLinks, a.settingsUC, newAuth(a.cfg.Admin.JWTSecret), log)

	servers := []*http.Server{{Addr: fmt.Sprintf(":%d", a.cfg.Server.Port), Handler: router}}
	if a.cfg.Admin.Port == 0 || a.cfg.Admin.Port == a.cfg.Server.Port {
		hostAPI.RegisterRoutes(router)
	} else {
		adminRouter := chi.NewRouter()
		adminRouter.Use(api.TraceID(), api.RequestLog(log), api.Recover(log))
		hostAPI.RegisterRoutes(adminRouter)
		servers = append(servers, &http.Server{Addr: fmt.Sprintf(":%d", a.cfg.Admin.Port), Handler: adminRouter})
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info().Str("addr", srv.Addr).Msg("http listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("http %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err = <-errc:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}
	return err
}

func newAuth(secret string) *web.AuthManager {
	if secret == "" {
		return nil
	}
	return web.NewAuthManager(secret, 0)
}
