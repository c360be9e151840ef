package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quill/eval"
	"quill/mem"
)

// Config is the runtime tuning file. All fields are optional; zero values
// fall back to the built-in defaults.
type Config struct {
	Pools PoolsConfig `yaml:"pools"`
	GC    GCConfig    `yaml:"gc"`
	Eval  EvalConfig  `yaml:"eval"`
}

type PoolsConfig struct {
	SegmentUnits int  `yaml:"segment_units"`
	FreeToTail   bool `yaml:"free_to_tail"`
}

type GCConfig struct {
	HighWater   int64 `yaml:"high_water"`
	MemoryLimit int64 `yaml:"memory_limit"`
	Checked     bool  `yaml:"checked"`
}

type EvalConfig struct {
	TickLimit  uint64 `yaml:"tick_limit"`
	StackLimit int    `yaml:"stack_limit"`
}

// Load reads a yaml config file.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Options translates the file form to machine options.
func (c Config) Options() eval.Options {
	return eval.Options{
		Heap: mem.Config{
			SegmentUnits: c.Pools.SegmentUnits,
			FreeToTail:   c.Pools.FreeToTail,
			HighWater:    c.GC.HighWater,
			MemoryLimit:  c.GC.MemoryLimit,
			Checked:      c.GC.Checked,
		},
		TickLimit:  c.Eval.TickLimit,
		StackLimit: c.Eval.StackLimit,
	}
}
