package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagLog    = flag.String("log", "", "Write logs to this file as well")
	flagRLE    = flag.Bool("rle", false, "Write RLE-compressed TGA files")
	flagRaw    = flag.Bool("raw", false, "Write uncompressed TGA files")
	flagScale  = flag.Float64("scale", 0, "Preview scale factor")
	flagFilter = flag.String("filter", "", "Preview filter (nearest, bilinear, catmullrom)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
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
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if *flagRLE {
		cfg.Codecs.TGA.RLE = true
	}
	if *flagRaw {
		cfg.Codecs.TGA.RLE = false
	}
	if *flagScale > 0 {
		cfg.Preview.Scale = *flagScale
	}
	if *flagFilter != "" {
		cfg.Preview.Filter = *flagFilter
	}
}
