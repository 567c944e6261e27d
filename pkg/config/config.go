// Package config loads the configuration of the nfsbench tool.
//
// Sources, in order of precedence: CLI flags (bound by the commands),
// environment variables (NFSCLIENT_*), a YAML config file, and defaults.
// The library packages never read configuration; they take explicit
// parameters.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/nfsclient/internal/bytesize"
)

// Config is the tool configuration.
type Config struct {
	// Server is the NFS server host name or address.
	Server string `mapstructure:"server" validate:"required" yaml:"server"`

	// Export is the exported path to operate on.
	Export string `mapstructure:"export" validate:"required" yaml:"export"`

	// Logging controls log output.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Bench holds benchmark workload settings.
	Bench BenchConfig `mapstructure:"bench" yaml:"bench"`
}

// LoggingConfig mirrors the logger package's configuration surface.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR" yaml:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// BenchConfig holds the benchmark parameters.
type BenchConfig struct {
	// Workload selects the access pattern.
	Workload string `mapstructure:"workload" validate:"omitempty,oneof=seqread seqwrite randread randwrite meta mixed" yaml:"workload"`

	// BlockSize is the I/O transfer size per operation.
	BlockSize bytesize.ByteSize `mapstructure:"bs" validate:"gt=0" yaml:"bs"`

	// Size is the working-set file size.
	Size bytesize.ByteSize `mapstructure:"size" validate:"gt=0" yaml:"size"`

	// Threads is the number of worker goroutines, each with its own
	// client and TCP connection.
	Threads int `mapstructure:"threads" validate:"gte=1,lte=1024" yaml:"threads"`

	// Duration is the wall-clock run time in seconds.
	Duration int `mapstructure:"duration" validate:"gte=1" yaml:"duration"`

	// Stable selects the WRITE stability: unstable, datasync or filesync.
	Stable string `mapstructure:"stable" validate:"omitempty,oneof=unstable datasync filesync" yaml:"stable"`

	// RWRatio is the read fraction of the mixed workload.
	RWRatio float64 `mapstructure:"rw_ratio" validate:"gte=0,lte=1" yaml:"rw_ratio"`

	// CSV appends results to the given file when set.
	CSV string `mapstructure:"csv" yaml:"csv"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Server: "localhost",
		Export: "/",
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
		Bench: BenchConfig{
			Workload:  "seqread",
			BlockSize: 64 * bytesize.KiB,
			Size:      bytesize.GiB,
			Threads:   1,
			Duration:  30,
			Stable:    "unstable",
			RWRatio:   0.7,
		},
	}
}

// Load reads the config file at path (optional when empty), applies
// NFSCLIENT_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NFSCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Defaults()
	v.SetDefault("server", defaults.Server)
	v.SetDefault("export", defaults.Export)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output", defaults.Logging.Output)
	v.SetDefault("bench.workload", defaults.Bench.Workload)
	v.SetDefault("bench.bs", defaults.Bench.BlockSize.Uint64())
	v.SetDefault("bench.size", defaults.Bench.Size.Uint64())
	v.SetDefault("bench.threads", defaults.Bench.Threads)
	v.SetDefault("bench.duration", defaults.Bench.Duration)
	v.SetDefault("bench.stable", defaults.Bench.Stable)
	v.SetDefault("bench.rw_ratio", defaults.Bench.RWRatio)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(byteSizeDecodeHook())); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// byteSizeDecodeHook converts config values to bytesize.ByteSize, accepting
// human-readable strings ("64K", "1Gi") as well as plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// Validate checks structural constraints on cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// WriteSample writes a YAML rendering of the defaults to path, refusing to
// overwrite an existing file unless force is set.
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	defaults := Defaults()
	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return fmt.Errorf("marshal sample config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
