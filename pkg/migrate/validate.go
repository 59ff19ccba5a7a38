package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ErrNoMigrations is returned when a directory holds no SQL migrations.
var ErrNoMigrations = errors.New("no migrations found")

// FileError describes a migration file that goose would reject or run badly.
type FileError struct {
	File   string
	Reason string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("migration %s: %s", e.File, e.Reason)
}

// Migration is one validated SQL file.
type Migration struct {
	Version int64
	File    string
}

// ValidateDir checks the migrations on disk. An empty dir means DefaultDir.
func ValidateDir(dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	_, err := ValidateFS(os.DirFS(dir), ".")
	if err != nil {
		return fmt.Errorf("validate %s: %w", dir, err)
	}
	return nil
}

// ValidateFS checks every .sql file under dir in fsys and returns them in
// version order. Each file needs a unique 14 digit version, both goose
// sections and balanced statement blocks.
func ValidateFS(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var out []Migration
	seen := map[int64]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, &FileError{File: name, Reason: "expected YYYYMMDDHHMMSS_name.sql"}
		}
		version, _ := strconv.ParseInt(m[1], 10, 64)
		if prev, ok := seen[version]; ok {
			return nil, &FileError{File: name, Reason: "version already used by " + prev}
		}
		seen[version] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := checkBody(name, string(body)); err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: version, File: name})
	}
	if len(out) == 0 {
		return nil, ErrNoMigrations
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func checkBody(name, body string) error {
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		return &FileError{File: name, Reason: `missing "-- +goose Up"`}
	case down < 0:
		return &FileError{File: name, Reason: `missing "-- +goose Down"`}
	case down < up:
		return &FileError{File: name, Reason: "down section precedes up section"}
	}
	if strings.Count(body, "-- +goose StatementBegin") != strings.Count(body, "-- +goose StatementEnd") {
		return &FileError{File: name, Reason: "unbalanced StatementBegin/StatementEnd"}
	}
	return nil
}

// LatestVersion returns the highest version in dir, or 0 when it is empty or
// missing.
func LatestVersion(dir string) (int64, error) {
	migrations, err := ValidateFS(os.DirFS(dir), ".")
	switch {
	case errors.Is(err, ErrNoMigrations), errors.Is(err, fs.ErrNotExist):
		return 0, nil
	case err != nil:
		return 0, err
	}
	return migrations[len(migrations)-1].Version, nil
}
