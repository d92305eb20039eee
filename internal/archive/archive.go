// Package archive moves the word database out of the way so the next run
// starts with an empty one.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// sidecars are the files SQLite may keep next to the database
var sidecars = []string{"-journal", "-wal", "-shm"}

// ArchiveDatabase moves the database file at dbPath into an archive
// directory next to it, under a timestamped name, and returns the new path.
// The database must not be open.
func ArchiveDatabase(dbPath string, now time.Time) (string, error) {
	info, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", dbPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat database: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("database path is a directory: %s", dbPath)
	}

	archiveDir := filepath.Join(filepath.Dir(dbPath), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := archiveName(archiveDir, dbPath, now.Format("20060102-150405"))
	if _, err := os.Stat(archivePath); err == nil {
		// Same second as an earlier archive
		archivePath = archiveName(archiveDir, dbPath, now.Format("20060102-150405.000000"))
		if _, err := os.Stat(archivePath); err == nil {
			return "", fmt.Errorf("archive already exists: %s", archivePath)
		}
	}

	if err := os.Rename(dbPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive database: %w", err)
	}
	for _, suffix := range sidecars {
		if _, err := os.Stat(dbPath + suffix); err != nil {
			continue
		}
		if err := os.Rename(dbPath+suffix, archivePath+suffix); err != nil {
			return archivePath, fmt.Errorf("failed to archive %s: %w", dbPath+suffix, err)
		}
	}

	return archivePath, nil
}

// archiveName turns words.sqlite into <dir>/words-<stamp>.sqlite
func archiveName(dir, dbPath, stamp string) string {
	base := filepath.Base(dbPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), stamp, ext))
}
