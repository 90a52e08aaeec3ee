package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CHILDPROC"

// cliConfig is the merged result of flags, environment and config file.
type cliConfig struct {
	Verbose      bool          `mapstructure:"verbose"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Dir          string        `mapstructure:"dir"`
	ProcessGroup bool          `mapstructure:"process_group"`
	LogLevel     string        `mapstructure:"log_level"`
	SearchPaths  []string      `mapstructure:"search_paths"`
}

// loadConfig parses args and layers flags over CHILDPROC_* environment
// variables over the optional config file. It returns the command line to
// run, which starts at the first non-flag argument.
func loadConfig(args []string, output io.Writer) (*cliConfig, []string, error) {
	flags := pflag.NewFlagSet("childproc", pflag.ContinueOnError)
	flags.SetOutput(output)
	// Flags after the program name belong to the program.
	flags.SetInterspersed(false)
	flags.Usage = func() {
		fmt.Fprintf(output, "Usage: childproc [flags] <program> [args...]\n\nFlags:\n")
		flags.PrintDefaults()
	}

	cfgFile := flags.StringP("config", "c", "", "Config file (YAML)")
	flags.BoolP("verbose", "v", false, "Merge the program's stderr into its output stream")
	flags.DurationP("timeout", "t", 0, "Terminate the program after this long (0 disables)")
	flags.StringP("dir", "C", "", "Working directory for the program")
	flags.Bool("process-group", false, "Run the program in its own process group")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.StringSlice("search-path", nil, "Extra directories searched for the program after PATH")

	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()

	for key, flag := range map[string]string{
		"verbose":       "verbose",
		"timeout":       "timeout",
		"dir":           "dir",
		"process_group": "process-group",
		"log_level":     "log-level",
		"search_paths":  "search-path",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if *cfgFile != "" {
		v.SetConfigFile(*cfgFile)

		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil, fmt.Errorf("config file %s not found", *cfgFile)
			}

			return nil, nil, fmt.Errorf("read config file failed: %w", err)
		}
	}

	var c cliConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return nil, nil, err
	}

	return &c, flags.Args(), nil
}

// parseLevel converts a level name such as "debug" into a slog level.
func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}

	return level, nil
}
