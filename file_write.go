package id3depad

import (
	"os"
	"path/filepath"

	id3tag "github.com/bogem/id3v2/v2"
	"github.com/pkg/errors"
)

// readFile reads the whole file into memory.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	return data, nil
}

// save writes the compacted file back to path.
//
// This is an atomic operation: writes to a temporary file first, then renames
// to the original path. If any step fails, the original file remains unchanged.
func save(path string, res *Result, o *options) error { //nolint:gocyclo // Atomic file operations require sequential steps
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat file")
	}

	// Create temp file in same directory as output (for atomic rename)
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".id3depad-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tempPath := tempFile.Name()

	// Ensure cleanup on any error
	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // Best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // Best effort cleanup
		}
	}()

	if _, err := res.WriteTo(tempFile); err != nil {
		return errors.Wrap(err, "write")
	}

	// CreateTemp uses 0600; keep the original permissions
	if err := tempFile.Chmod(info.Mode().Perm()); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}

	// Sync temp file (fsync) to ensure data is on disk
	if err := tempFile.Sync(); err != nil {
		return errors.Wrap(err, "sync temp file")
	}

	// Close temp file before rename
	if err := tempFile.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}

	// Handle backup option (rename original to backup before replace)
	if o.backupSuffix != "" {
		if err := os.Rename(path, path+o.backupSuffix); err != nil {
			return errors.Wrap(err, "create backup")
		}
	}

	// Atomic rename temp -> output
	if err := os.Rename(tempPath, path); err != nil {
		return errors.Wrap(err, "rename temp to output")
	}

	// Mark success so defer doesn't clean up
	success = true

	if o.preserveModTime {
		_ = os.Chtimes(path, info.ModTime(), info.ModTime()) //nolint:errcheck // Non-fatal: file was written successfully
	}

	if o.validate {
		if err := validateWrittenFile(path, res); err != nil {
			return errors.Wrap(err, "validation failed")
		}
	}

	return nil
}

// validateWrittenFile re-opens the file with an independent ID3v2 reader
// and compares the version and frame presence.
func validateWrittenFile(path string, res *Result) error {
	// bogem/id3v2 reads ID3v2.3 and ID3v2.4 tags at the start of the file only.
	if res.Header.Start != 0 || res.Header.Major < 3 {
		return nil
	}

	tag, err := id3tag.Open(path, id3tag.Options{Parse: true})
	if err != nil {
		return errors.Wrap(err, "re-open")
	}
	defer tag.Close() //nolint:errcheck // Best effort close

	if tag.Version() != res.Header.Major {
		return errors.Errorf("version mismatch: got 2.%d, want 2.%d", tag.Version(), res.Header.Major)
	}
	if want := res.KeptFrames(); want > 0 && tag.Count() == 0 {
		return errors.Errorf("no frames parsed, want %d", want)
	}

	return nil
}
