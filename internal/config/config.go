// Package config builds catr's immutable run configuration using Viper for
// layered loading from command-line flags, CATR_ environment variables and an
// optional YAML file.
//
// Numbering follows a simple ownership rule: when either numbering flag is
// given on the command line the command line decides numbering alone, so a
// config file asking for -n never collides with a -b typed by the user.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	catrerrors "github.com/conneroisu/catr/internal/errors"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyNumber         = "number"
	KeyNumberNonblank = "number-nonblank"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeyConfigFile     = "config-file"
)

// EnvPrefix prefixes every environment variable catr reads.
const EnvPrefix = "CATR"

// StdinToken is the source token meaning standard input.
const StdinToken = "-"

// Config is the immutable run configuration handed to the renderer. Files
// holds the source tokens in the order given; the remaining fields mirror the
// configuration keys.
type Config struct {
	Files          []string `yaml:"-"` // CLI arguments, not from config file
	NumberLines    bool     `yaml:"number"`
	NumberNonblank bool     `yaml:"number-nonblank"`
	LogLevel       string   `yaml:"log-level"`
	LogFormat      string   `yaml:"log-format"`
}

// NumberingMode selects how output lines are prefixed.
type NumberingMode int

const (
	// NumberNone copies lines through unchanged.
	NumberNone NumberingMode = iota
	// NumberAll prefixes every line with its number.
	NumberAll
	// NumberNonblank numbers non-empty lines and leaves empty ones bare.
	NumberNonblank
)

// String returns the flag-style name of the mode
func (m NumberingMode) String() string {
	switch m {
	case NumberAll:
		return "number"
	case NumberNonblank:
		return "number-nonblank"
	default:
		return "none"
	}
}

// Numbering returns the numbering mode the configuration selects.
func (c *Config) Numbering() NumberingMode {
	switch {
	case c.NumberLines:
		return NumberAll
	case c.NumberNonblank:
		return NumberNonblank
	default:
		return NumberNone
	}
}

// NewViper returns a Viper instance wired for CATR_ environment variables,
// e.g. CATR_NUMBER_NONBLANK=true or CATR_LOG_LEVEL=debug.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyNumber, false)
	v.SetDefault(KeyNumberNonblank, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")

	return v
}

// ReadInConfig loads the YAML config file into v and returns the path used.
//
// Priority: explicit path, then CATR_CONFIG_FILE, then .catr.yml searched in
// the working directory and the home directory. A missing default file is not
// an error; an explicitly named file that cannot be read is.
func ReadInConfig(v *viper.Viper, explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = v.GetString(KeyConfigFile)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", catrerrors.NewConfigError("read config file "+path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(".catr")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", catrerrors.NewConfigError("read config file", err)
	}

	return v.ConfigFileUsed(), nil
}

// Load builds a validated Config from the layered values in v, the parsed
// flag set and the positional arguments.
func Load(v *viper.Viper, flags *pflag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{
		Files:     append([]string(nil), args...),
		LogLevel:  v.GetString(KeyLogLevel),
		LogFormat: v.GetString(KeyLogFormat),
	}

	if len(cfg.Files) == 0 {
		cfg.Files = []string{StdinToken}
	}

	if flags != nil && (flags.Changed(KeyNumber) || flags.Changed(KeyNumberNonblank)) {
		var err error
		if cfg.NumberLines, err = flags.GetBool(KeyNumber); err != nil {
			return nil, catrerrors.NewUsageError(err.Error())
		}
		if cfg.NumberNonblank, err = flags.GetBool(KeyNumberNonblank); err != nil {
			return nil, catrerrors.NewUsageError(err.Error())
		}
	} else {
		cfg.NumberLines = v.GetBool(KeyNumber)
		cfg.NumberNonblank = v.GetBool(KeyNumberNonblank)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
