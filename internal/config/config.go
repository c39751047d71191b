// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Wireframe  bool `yaml:"wireframe"`
}

// TerrainConfig holds procedural terrain generation settings.
type TerrainConfig struct {
	TilesX    int     `yaml:"tiles_x"`
	TilesZ    int     `yaml:"tiles_z"`
	TileSize  float32 `yaml:"tile_size"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	Seed      int64   `yaml:"seed"`
	// DeformSpeed scales the animated deformation of the dynamic patch,
	// in noise-field units per second. Zero disables deformation.
	DeformSpeed float64 `yaml:"deform_speed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Wireframe:  false,
		},
		Terrain: TerrainConfig{
			TilesX:      64,
			TilesZ:      64,
			TileSize:    1.0,
			Amplitude:   6.0,
			Frequency:   0.04,
			Seed:        1,
			DeformSpeed: 0.5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
