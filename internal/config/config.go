package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/healthctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval     = 3
	DefaultDevice       = "/dev/nvme0n1"
	DefaultSmartctl     = "smartctl"
	DefaultLogLevel     = string(LogLevelWarning)
	DefaultFormat       = string(FormatTable)
	DefaultCPUSample    = time.Second
	DefaultSmartTimeout = 10 * time.Second

	configName = "healthctl"
	envPrefix  = "HEALTHCTL"
	envConfig  = "HEALTHCTL_CONFIG"
)

type Config struct {
	Watch        bool          `mapstructure:"watch"`
	Interval     int           `mapstructure:"interval"`
	Device       string        `mapstructure:"device"`
	Smartctl     string        `mapstructure:"smartctl"`
	Sudo         bool          `mapstructure:"sudo"`
	Format       string        `mapstructure:"format"`
	NoGPU        bool          `mapstructure:"no_gpu"`
	LogLevel     string        `mapstructure:"log_level"`
	CPUSample    time.Duration `mapstructure:"cpu_sample"`
	SmartTimeout time.Duration `mapstructure:"smart_timeout"`
}

// Load reads configuration from, in increasing priority: defaults, the config
// file, HEALTHCTL_* environment variables and command line flags.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	setDefaults(v)

	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(envConfig), "Path to config file")
	fs.Bool("watch", false, "Live refresh mode")
	fs.Int("interval", DefaultInterval, "Refresh interval in seconds")
	fs.String("device", DefaultDevice, "Storage device passed to smartctl")
	fs.String("smartctl", DefaultSmartctl, "Path to the smartctl binary")
	fs.Bool("sudo", true, "Run smartctl through sudo -n")
	fs.String("format", DefaultFormat, "Output format: table or json")
	fs.Bool("no-gpu", false, "Skip NVIDIA GPU discovery")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
	fs.Duration("cpu-sample", DefaultCPUSample, "CPU usage sampling window")
	fs.Duration("smart-timeout", DefaultSmartTimeout, "Timeout for a smartctl run")

	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrParseFlags, err)
	}

	// Flag names use dashes, config keys use underscores.
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	if bindErr != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, bindErr)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := readConfigFile(v, *configPath); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("watch", false)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("device", DefaultDevice)
	v.SetDefault("smartctl", DefaultSmartctl)
	v.SetDefault("sudo", true)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("no_gpu", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("cpu_sample", DefaultCPUSample)
	v.SetDefault("smart_timeout", DefaultSmartTimeout)
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if !Format(c.Format).IsValid() {
		return errFactory.WithData(errors.ErrInvalidFormat, c.Format)
	}
	if c.CPUSample < 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "cpu_sample must not be negative")
	}
	if c.SmartTimeout <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "smart_timeout must be positive")
	}

	return nil
}

// RefreshInterval returns the watch interval as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}
