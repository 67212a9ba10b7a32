package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"github.com/sari-store/storefront/internal/infrastructure/logger"
	"github.com/sari-store/storefront/internal/infrastructure/migration"
	"github.com/sari-store/storefront/migrations"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	dir := flags.StringP("path", "p", "", "read migrations from this directory instead of the embedded set")
	logLevel := flags.String("log-level", "info", "log level: debug, info, warn, error")
	confirm := flags.Bool("confirm", false, "confirm a destructive command (down)")
	flags.Usage = printUsage
	_ = flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// create and list work on files only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		target := *dir
		if target == "" {
			target = defaultMigrationsDir
		}
		mf, err := migration.CreateMigration(target, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	case "list":
		target := *dir
		if target == "" {
			target = defaultMigrationsDir
		}
		listed, err := migration.ListMigrations(target)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(listed) == 0 {
			log.Info("No migrations found", zap.String("path", target))
			return
		}
		for _, m := range listed {
			fmt.Printf("  %06d %s\n", m.Version, m.Name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if *dir != "" {
		m, err = migration.NewFromDir(db, *dir, log)
	} else {
		m, err = migration.New(db, migrations.FS, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()

	case "down":
		if !*confirm {
			log.Fatal("Rolling back every migration drops all catalog data. Re-run with --confirm.")
		}
		err = m.Down()

	case "step":
		n, convErr := strconv.Atoi(argAt(args, 1))
		if convErr != nil {
			log.Fatal("Usage: migrate step <n>", zap.Error(convErr))
		}
		err = m.Steps(n)

	case "goto":
		version, convErr := strconv.ParseUint(argAt(args, 1), 10, 32)
		if convErr != nil {
			log.Fatal("Usage: migrate goto <version>", zap.Error(convErr))
		}
		err = m.GoTo(uint(version))

	case "force":
		version, convErr := strconv.Atoi(argAt(args, 1))
		if convErr != nil {
			log.Fatal("Usage: migrate force <version>", zap.Error(convErr))
		}
		err = m.Force(version)

	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			log.Fatal("Failed to get version", zap.Error(verErr))
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func printUsage() {
	fmt.Println(`Storefront database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down --confirm    Roll back all migrations
  step <n>          Apply n migrations (negative rolls back)
  goto <version>    Migrate to a specific version
  force <version>   Set the version without running migrations
  version           Show the current version
  create <name>     Write the next migration pair into --path (default ./migrations)
  list              List migrations in --path (default ./migrations)

Flags:
  -p, --path string       Migrations directory; the embedded set is used when empty
      --log-level string  debug, info, warn, error (default info)
      --confirm           Confirm a destructive command

Database settings come from config.toml or STORE_DATABASE_* variables.`)
}
