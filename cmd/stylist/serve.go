package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dshills/stylist/internal/config"
	"github.com/dshills/stylist/internal/face"
	"github.com/dshills/stylist/internal/llm"
	"github.com/dshills/stylist/internal/logging"
	"github.com/dshills/stylist/internal/metrics"
	"github.com/dshills/stylist/internal/server"
	"github.com/dshills/stylist/internal/synth"
)

type serveFlags struct {
	host string
	port int
}

func newServeCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return badInput("%v", err)
			}
			if f.host != "" {
				cfg.Host = f.host
			}
			if f.port != 0 {
				cfg.Port = f.port
			}
			if err := cfg.Validate(); err != nil {
				return badInput("%v", err)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&f.host, "host", "", "listen host (default from STYLIST_HOST)")
	cmd.Flags().IntVar(&f.port, "port", 0, "listen port (default from STYLIST_PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	gin.SetMode(gin.ReleaseMode)

	m := metrics.New()
	s := synth.New(synth.Options{
		Settings:  cfg.Settings(),
		Timeout:   cfg.AITimeout,
		MaxTokens: cfg.MaxTokens,
		Metrics:   m,
		Logger:    logger,
	})

	var analyzer face.Analyzer = face.Unknown{}
	if cfg.FaceURL != "" {
		analyzer = face.NewRemote(cfg.FaceURL, nil)
	} else {
		logger.Warn().Msg("STYLIST_FACE_URL not set; face attributes will be reported as Unknown")
	}
	if cfg.Credential() == "" && llm.RequiresCredential(cfg.Provider) {
		logger.Warn().Str("provider", cfg.Provider).Msg("no ambient credential; requests without api_key get fallback recommendations")
	}

	srv, err := server.New(server.Options{
		Recommender:    s,
		Analyzer:       analyzer,
		Metrics:        m,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.Addr())
}
