package executable

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wagiedev/childproc-go/internal/errors"
)

// Config holds configuration for executable resolution.
type Config struct {
	// SearchPaths are directories checked, in order, after PATH.
	SearchPaths []string

	// Logger is an optional logger for resolution.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Resolver locates and validates an executable.
type Resolver interface {
	// Resolve returns the absolute path of the executable called name.
	// Returns ExecutableNotFoundError if nothing suitable is found.
	Resolve(name string) (string, error)
}

// resolver implements the Resolver interface.
type resolver struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that resolver implements Resolver.
var _ Resolver = (*resolver)(nil)

// NewResolver creates a new resolver with the given configuration.
func NewResolver(cfg *Config) Resolver {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &resolver{
		cfg: cfg,
		log: log,
	}
}

// Resolve locates the executable called name.
func (r *resolver) Resolve(name string) (string, error) {
	if name == "" {
		return "", errors.ErrEmptyExecutable
	}

	// A name containing a separator is a path and is only checked in place.
	if strings.ContainsAny(name, pathSeparators) {
		abs, err := filepath.Abs(name)
		if err != nil {
			abs = name
		}

		r.log.Debug("Using explicit executable path", "path", abs)

		if isExecutable(abs) {
			return abs, nil
		}

		r.log.Debug("Explicit executable path not usable", "path", abs)

		return "", &errors.ExecutableNotFoundError{Name: name, SearchedPaths: []string{abs}}
	}

	searchedPaths := make([]string, 0, len(r.cfg.SearchPaths)+1)

	r.log.Debug("Searching for executable in PATH", "name", name)

	if path, err := exec.LookPath(name); err == nil {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}

		r.log.Debug("Found executable in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	for _, dir := range r.cfg.SearchPaths {
		for _, candidate := range candidates(filepath.Join(dir, name)) {
			searchedPaths = append(searchedPaths, candidate)
			r.log.Debug("Checking search path", "path", candidate)

			if isExecutable(candidate) {
				r.log.Debug("Found executable in search path", "path", candidate)

				return candidate, nil
			}
		}
	}

	r.log.Warn("Executable not found in any searched paths", "name", name, "searched_paths", searchedPaths)

	return "", &errors.ExecutableNotFoundError{Name: name, SearchedPaths: searchedPaths}
}
