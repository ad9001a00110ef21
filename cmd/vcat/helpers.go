package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"vcat/internal/config"
	"vcat/internal/verify"
)

const (
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorizeState(state verify.State, colorize bool) string {
	label := state.String()
	if !colorize {
		return label
	}
	switch state {
	case verify.StateVerified:
		return ansiGreen + label + ansiReset
	case verify.StatePending, verify.StateFetched, verify.StateDigestComputed:
		return ansiYellow + label + ansiReset
	default:
		return ansiRed + label + ansiReset
	}
}

// acquireBuildLock takes the single-publisher lock so concurrent builds
// cannot interleave their store writes.
func acquireBuildLock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "vcat.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another vcat build is already running")
	}
	return lock, nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
