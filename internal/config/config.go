// Package config handles meshtool configuration loading and management.
package config

// Config holds all conversion tool settings.
type Config struct {
	Split   SplitConfig   `yaml:"split"`
	Convert ConvertConfig `yaml:"convert"`
	Logging LoggingConfig `yaml:"logging"`
}

// SplitConfig holds mesh splitter settings.
type SplitConfig struct {
	// MaxBonesPerSubmesh is the per-submesh bone palette ceiling.
	MaxBonesPerSubmesh int `yaml:"max_bones_per_submesh"`
	// NormalTangentDotThreshold decides vertex sharing across loops.
	NormalTangentDotThreshold float64 `yaml:"normal_tangent_dot_threshold"`
	// MaxSubmeshVertexCount caps local vertex buffers (0 = unlimited,
	// 65535 for targets with 16-bit face indices).
	MaxSubmeshVertexCount int `yaml:"max_submesh_vertex_count"`
	// CorrectTangentSigns flips tangents on UV-mirrored faces.
	CorrectTangentSigns bool `yaml:"correct_tangent_signs"`
	// OnMissingLayer is "fail" or "zero_fill".
	OnMissingLayer string `yaml:"on_missing_layer"`
}

// ConvertConfig holds coordinate and merge conventions.
type ConvertConfig struct {
	SwapAxis    bool `yaml:"swap_axis"`
	InvertU     bool `yaml:"invert_u"`
	InvertV     bool `yaml:"invert_v"`
	WeldOnMerge bool `yaml:"weld_on_merge"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Split: SplitConfig{
			MaxBonesPerSubmesh:        38,
			NormalTangentDotThreshold: 0.999,
			MaxSubmeshVertexCount:     0,
			CorrectTangentSigns:       true,
			OnMissingLayer:            "fail",
		},
		Convert: ConvertConfig{
			SwapAxis:    false,
			InvertU:     false,
			InvertV:     true,
			WeldOnMerge: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
