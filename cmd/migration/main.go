// Command migration manages the pickem schema: seasons, weeks, games, teams,
// users, picks and tiebreakers. It reads DB_URL the same way the API server
// does, including the PgBouncer prepared-binary toggle, so both binaries can
// share one environment.
package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	dir, err := migrationsDir()
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), databaseURL)
	if err != nil {
		log.Fatalf("open migrator: %v", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("close migrator: source=%v db=%v", srcErr, dbErr)
		}
	}()

	if err := run(m, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, command string, args []string) error {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "up":
		if err := stepResult(m.Up()); err != nil {
			return err
		}
		log.Print("schema is up to date")
	case "down":
		steps := 1
		if len(args) > 0 {
			parsed, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil || parsed <= 0 {
				return fmt.Errorf("down expects a positive step count, got %q", args[0])
			}
			steps = parsed
		}
		if err := stepResult(m.Steps(-steps)); err != nil {
			return err
		}
		log.Printf("rolled back %d step(s)", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Print("no migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		log.Printf("version=%d dirty=%t", version, dirty)
	case "force":
		if len(args) == 0 {
			return errors.New("force expects a version")
		}
		version, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || version < 0 {
			return fmt.Errorf("force expects a non-negative version, got %q", args[0])
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		log.Printf("forced version to %d", version)
	case "goto":
		if len(args) == 0 {
			return errors.New("goto expects a target version")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("goto expects a version, got %q", args[0])
		}
		if err := stepResult(m.Migrate(uint(target))); err != nil {
			return err
		}
		log.Printf("migrated to version %d", target)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// stepResult folds migrate's "no change" answer into success; an already
// current schema is the normal case on redeploys.
func stepResult(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Print("nothing to do")
		return nil
	}
	return err
}

func databaseURLFromEnv() (string, error) {
	raw := strings.TrimSpace(os.Getenv("DB_URL"))
	if raw == "" {
		return "", errors.New("DB_URL is required")
	}
	if !pgbouncerCompatEnabled() {
		return raw, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw, nil
	}
	query := parsed.Query()
	if !query.Has("disable_prepared_binary_result") {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

func pgbouncerCompatEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT"))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

// migrationsDir prefers MIGRATIONS_DIR, then the repo-relative db/migrations,
// then a db/migrations directory next to the binary for container images that
// bake the SQL in beside it.
func migrationsDir() (string, error) {
	candidates := []string{os.Getenv("MIGRATIONS_DIR"), "db/migrations"}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "db", "migrations"))
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
	}

	return "", errors.New("no migrations directory found: set MIGRATIONS_DIR or run from the repo root")
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <command> [args]\n\n", name)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  up          apply every pending migration")
	fmt.Fprintln(os.Stderr, "  down [n]    roll back n migrations (default 1)")
	fmt.Fprintln(os.Stderr, "  version     print the current schema version")
	fmt.Fprintln(os.Stderr, "  force <v>   mark the schema as version v without running anything")
	fmt.Fprintln(os.Stderr, "  goto <v>    migrate up or down to version v")
}
