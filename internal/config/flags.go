package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMaxBones  = flag.Int("max-bones", 0, "Bone palette ceiling per submesh")
	flagMaxVerts  = flag.Int("max-verts", -1, "Vertex ceiling per submesh (0 = unlimited)")
	flagThreshold = flag.Float64("threshold", -1, "Normal/tangent dot threshold for vertex sharing")
	flagNoWeld    = flag.Bool("no-weld", false, "Concatenate instead of welding on merge")
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
	if *flagMaxBones > 0 {
		cfg.Split.MaxBonesPerSubmesh = *flagMaxBones
	}
	if *flagMaxVerts >= 0 {
		cfg.Split.MaxSubmeshVertexCount = *flagMaxVerts
	}
	if *flagThreshold >= 0 {
		cfg.Split.NormalTangentDotThreshold = *flagThreshold
	}
	if *flagNoWeld {
		cfg.Convert.WeldOnMerge = false
	}
}
