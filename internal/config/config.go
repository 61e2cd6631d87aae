// Package config loads and validates the tree's on-disk configuration,
// following the corpus's own yaml+validate-tagged config shape.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// Config is the root configuration for a tree instance.
type Config struct {
	DataDir string       `yaml:"data_dir" validate:"required"`
	Tree    TreeConfig   `yaml:"tree" validate:"required"`
	Bloom   BloomConfig  `yaml:"bloom_filter" validate:"required"`
	Logger  LoggerConfig `yaml:"logger" validate:"required"`
}

// TreeConfig sizes the memtable and the SSTable build/compaction policy.
type TreeConfig struct {
	BlockSize     int  `yaml:"block_size" validate:"required,min=1"`
	MemtableSize  int  `yaml:"memtable_size" validate:"required,min=1"`
	Level0Size    int  `yaml:"level0_size" validate:"required,min=1"`
	CompressBlock bool `yaml:"compress_blocks"`
}

// BloomConfig controls Bloom filter sizing for every flushed/compacted table.
type BloomConfig struct {
	FPRate float64 `yaml:"fp_rate" validate:"required,gt=0,lt=1"`
}

// LoggerConfig controls the shared slog handler.
type LoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// Default returns a working baseline configuration.
func Default() Config {
	return Config{
		DataDir: "./data",
		Tree: TreeConfig{
			BlockSize:    64,
			MemtableSize: 1000,
			Level0Size:   4,
		},
		Bloom: BloomConfig{FPRate: 0.01},
		Logger: LoggerConfig{
			Level: "INFO",
			JSON:  false,
		},
	}
}

// Load reads and validates a YAML config file at path. A missing file is
// not an error: it yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("config file not found, using default config", "path", path)
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: validate %s: %w", path, err)
	}

	return cfg, nil
}
