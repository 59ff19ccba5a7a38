package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameUnsafeRe = regexp.MustCompile(`[^a-z0-9]+`)

// ErrEmptyName is returned when a migration name has no usable characters.
var ErrEmptyName = errors.New("migration name is empty")

// upTemplate follows the conventions of the existing schema files.
const upTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- Tables use BIGSERIAL ids, TIMESTAMPTZ created_at/updated_at and
-- IF NOT EXISTS guards. Prices are BIGINT whole currency units.
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %[1]s
-- +goose StatementEnd
`

// MigrationName turns free text into the snake_case part of a filename.
func MigrationName(name string) (string, error) {
	safe := strings.Trim(nameUnsafeRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if safe == "" {
		return "", ErrEmptyName
	}
	return safe, nil
}

// CreateSQLMigration writes <dir>/<version>_<name>.sql and returns its path.
// An empty dir means DefaultDir. The version is the current UTC time, bumped
// past the newest existing file so goose keeps applying files in order.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createAt(dir, name, time.Now().UTC())
}

func createAt(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	safe, err := MigrationName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir: %w", err)
	}

	latest, err := LatestVersion(dir)
	if err != nil {
		return "", err
	}
	version, err := strconv.ParseInt(now.Format(versionLayout), 10, 64)
	if err != nil {
		return "", fmt.Errorf("format version: %w", err)
	}
	if version <= latest {
		version = latest + 1
	}

	file := fmt.Sprintf("%d_%s.sql", version, safe)
	full := filepath.Join(dir, file)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", &FileError{File: file, Reason: "already exists"}
		}
		return "", fmt.Errorf("create %s: %w", file, err)
	}
	if _, err := fmt.Fprintf(f, upTemplate, safe); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", file, err)
	}
	return full, nil
}
