// Package main renders one frame of a configured scene to a PNG file.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/softrender/internal/app"
	"github.com/Faultbox/softrender/internal/config"
	"github.com/Faultbox/softrender/internal/engine/debug"
	"github.com/Faultbox/softrender/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== softrender ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	out := &debug.PNGPresenter{Path: cfg.Output.Path}
	s, am, err := app.BuildScene(cfg, out)
	if err != nil {
		logger.Error("failed to build scene", zap.Error(err))
		os.Exit(1)
	}
	defer am.Close()

	// An empty scene never changes, so nothing was presented yet.
	if out.Frames == 0 {
		if _, err := s.Render(); err != nil {
			logger.Error("render failed", zap.Error(err))
			os.Exit(1)
		}
	}

	st := s.Stats()
	logger.Info("frame written",
		zap.String("path", cfg.Output.Path),
		zap.Int("models", st.Models),
		zap.Int("drawn", st.Drawn),
		zap.Int("culled", st.Culled),
		zap.Int("clipped", st.Clipped),
		zap.Int("shaded", st.Shaded),
		zap.Int("tiles", st.Tiles),
		zap.Duration("duration", st.Duration))
}
