package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagWidth   = flag.Int("width", 0, "Frame width")
	flagHeight  = flag.Int("height", 0, "Frame height")
	flagWorkers = flag.Int("workers", -1, "Tile workers (0 renders sequentially)")
	flagOut     = flag.String("out", "", "Output PNG path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagWorkers >= 0 {
		cfg.Render.Workers = *flagWorkers
	}
	if *flagOut != "" {
		cfg.Output.Path = *flagOut
	}
}
