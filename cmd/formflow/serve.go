package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/internal/server"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/render"
)

func newServeCmd(a *app) *cobra.Command {
	var secure bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portal over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("addr") {
				a.cfg.Addr, _ = flags.GetString("addr")
			}
			if flags.Changed("session-ttl") {
				a.cfg.SessionTTL, _ = flags.GetDuration("session-ttl")
			}
			if flags.Changed("shutdown-grace") {
				a.cfg.ShutdownGrace, _ = flags.GetDuration("shutdown-grace")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, catalog, err := a.setup(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			renderer, err := render.New()
			if err != nil {
				return err
			}
			notifier := notify.NewDispatcher(
				notify.WithDuration(a.cfg.ToastDuration),
				notify.WithLogger(logger),
			)
			srv, err := server.New(catalog, renderer,
				server.WithLogger(logger),
				server.WithNotifier(notifier),
				server.WithSessionTTL(a.cfg.SessionTTL),
				server.WithUploadLimit(int64(a.cfg.MaxAttachments)*a.cfg.MaxAttachmentBytes+1<<20),
				server.WithSecureCookies(secure),
			)
			if err != nil {
				return err
			}
			logger.Info("starting portal",
				zap.String("addr", a.cfg.Addr),
				zap.Duration("session_ttl", a.cfg.SessionTTL),
			)
			return srv.ListenAndServe(ctx, a.cfg.Addr, a.cfg.ShutdownGrace)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides FORMFLOW_ADDR)")
	cmd.Flags().Duration("session-ttl", 0, "idle visitor expiry (overrides FORMFLOW_SESSION_TTL)")
	cmd.Flags().Duration("shutdown-grace", 0, "time allowed for in-flight requests on shutdown")
	cmd.Flags().BoolVar(&secure, "secure-cookies", false, "mark the session cookie Secure")
	return cmd
}
