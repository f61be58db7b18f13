package config

import (
	"fmt"

	catrerrors "github.com/conneroisu/catr/internal/errors"
	"github.com/conneroisu/catr/internal/logging"
)

// Validate checks a configuration before any source is touched.
func Validate(cfg *Config) error {
	if cfg.NumberLines && cfg.NumberNonblank {
		return catrerrors.NewUsageError(fmt.Sprintf("--%s and --%s are mutually exclusive", KeyNumber, KeyNumberNonblank))
	}

	if len(cfg.Files) == 0 {
		return catrerrors.NewUsageError("no input sources")
	}
	for i, file := range cfg.Files {
		if file == "" {
			return catrerrors.NewUsageError(fmt.Sprintf("source %d is an empty path", i+1))
		}
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return catrerrors.NewConfigError("invalid "+KeyLogLevel, err)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return catrerrors.NewConfigError("invalid "+KeyLogFormat,
			fmt.Errorf("unsupported format %q (supported: text, json)", cfg.LogFormat))
	}

	return nil
}
