// Package config loads the simulator's runtime configuration from the
// environment, following the teacher's envconfig.Process pattern
// (api/pkg/config/config.go).
package config

import "github.com/kelseyhightower/envconfig"

// Config is the simulator's full runtime configuration. Port/FPS/
// Width/Height/Source are the spec's core Config fields (spec.md §3);
// PointerMode and MetricsAddr are ambient additions (SPEC_FULL.md §3).
type Config struct {
	Port        int    `envconfig:"TUIO_PORT" default:"3343"`
	FPS         int    `envconfig:"TUIO_FPS" default:"60"`
	Width       int    `envconfig:"TUIO_WIDTH" default:"1920"`
	Height      int    `envconfig:"TUIO_HEIGHT" default:"1080"`
	Source      string `envconfig:"TUIO_SOURCE" default:"tuio-simulator"`
	PointerMode bool   `envconfig:"TUIO_POINTER_MODE" default:"false"`
	MetricsAddr string `envconfig:"TUIO_METRICS_ADDR" default:"127.0.0.1:9343"`
	LogLevel    string `envconfig:"TUIO_LOG_LEVEL" default:"info"`
}

// Load reads Config from the process environment, applying the
// defaults above for anything unset.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
