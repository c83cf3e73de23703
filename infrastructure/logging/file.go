package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// probeFileName is written and removed to check the log directory is writable.
const probeFileName = "temp.txt"

// prepareLogFile resolves the primary log file path, makes sure its directory is
// writable and moves a previous run's file aside so every run starts empty.
func prepareLogFile(opts *FileOptions, now time.Time) (string, error) {
	dir := opts.Dir
	sub, name := filepath.Split(opts.Name)
	if name == "" {
		name = DefaultFileName
	}
	// An absolute name overrides dir; a relative one may nest below it.
	if filepath.IsAbs(sub) {
		dir = sub
	} else {
		if dir == "" {
			dir = DefaultLogDir()
		}
		dir = filepath.Join(dir, sub)
	}

	// Ensure log directory exists
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	if err := probeDir(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := rotateExisting(dir, name, now); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	return path, nil
}

func probeDir(dir string) error {
	probe := filepath.Join(dir, probeFileName)
	if err := os.WriteFile(probe, []byte("write probe"), 0o644); err != nil {
		return fmt.Errorf("log directory %s is not writable: %w", dir, err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("failed to remove write probe %s: %w", probe, err)
	}
	return nil
}

// rotateExisting renames dir/name to dir/<unixMillis>_name if it exists.
func rotateExisting(dir, name string, now time.Time) error {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat log file %s: %w", path, err)
	}

	ts := now.UnixMilli()
	rotated := rotatedName(dir, name, ts)
	// Two runs within the same millisecond must not overwrite each other.
	for fileExists(rotated) {
		ts++
		rotated = rotatedName(dir, name, ts)
	}

	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("failed to rename log file %s: %w", path, err)
	}
	return nil
}

func rotatedName(dir, name string, ts int64) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%s", ts, name))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
