// Command migrate applies, inspects and rolls back the job board schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/middleware"

	"gorm.io/gorm"
)

const usageText = `usage: migrate <command> [args]

commands:
  up                  apply pending SQL migrations
  auto                run GORM AutoMigrate for every persistent model
  status              print the schema policy and pending migrations
  list                print the embedded migrations
  down <version>      roll back one applied migration
  constraints [name]  print postgres constraints, optionally only one by name
  columns <table>     print the columns of a table
  reset               drop and recreate the public schema (refused in production)`

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usageText) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))

	if cmd == "list" {
		for _, m := range database.GetMigrations() {
			fmt.Printf("%06d  %-24s %s\n", m.Version, m.Name, m.Checksum[:12])
		}
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch cmd {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		middleware.Logger.Info("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		middleware.Logger.Info("automigrations applied")
	case "status":
		return printStatus(ctx, db, cfg)
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("down requires a version")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		middleware.Logger.Info("migration rolled back", "version", version)
	case "constraints":
		return printConstraints(db, flag.Arg(1))
	case "columns":
		if flag.NArg() < 2 {
			return fmt.Errorf("columns requires a table name")
		}
		return printColumns(db, flag.Arg(1))
	case "reset":
		return resetSchema(db, cfg)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	fmt.Printf("driver:   %s\nmode:     %s\nenv:      %s\nrun_sql:  %t\nrun_auto: %t\n",
		status.Driver, status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate)
	fmt.Printf("applied:  %d\n", len(status.AppliedVersions))
	for _, m := range status.PendingMigrations {
		fmt.Printf("pending:  %06d_%s\n", m.Version, m.Name)
	}
	for _, version := range status.DriftedVersions {
		fmt.Printf("drifted:  %06d\n", version)
	}
	for _, table := range status.MissingTables {
		fmt.Printf("missing:  %s\n", table)
	}
	return nil
}

func printConstraints(db *gorm.DB, name string) error {
	var rows []struct {
		Relname string `gorm:"column:relname"`
		Conname string `gorm:"column:conname"`
		Def     string `gorm:"column:def"`
	}
	q := db.Table("pg_constraint c").
		Select("r.relname, c.conname, pg_get_constraintdef(c.oid) AS def").
		Joins("JOIN pg_class r ON c.conrelid = r.oid").
		Joins("JOIN pg_namespace n ON n.oid = r.relnamespace").
		Where("n.nspname = ?", "public").
		Order("r.relname, c.conname")
	if name != "" {
		q = q.Where("c.conname = ?", name)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return fmt.Errorf("list constraints: %w", err)
	}
	for _, r := range rows {
		fmt.Printf("%-24s %-48s %s\n", r.Relname, r.Conname, r.Def)
	}
	return nil
}

func printColumns(db *gorm.DB, table string) error {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return fmt.Errorf("columns of %s: %w", table, err)
	}
	for _, c := range types {
		nullable, _ := c.Nullable()
		fmt.Printf("%-24s %-20s nullable=%t\n", c.Name(), c.DatabaseTypeName(), nullable)
	}
	return nil
}

func resetSchema(db *gorm.DB, cfg *config.Config) error {
	if cfg.IsProduction() {
		return fmt.Errorf("reset is refused when APP_ENV=%s", cfg.Env)
	}
	if cfg.DBDriver == database.DriverSQLite {
		return db.Migrator().DropTable(reverse(database.PersistentModels())...)
	}
	if err := db.Exec("DROP SCHEMA public CASCADE; CREATE SCHEMA public;").Error; err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	if err := db.Exec("GRANT ALL ON SCHEMA public TO public;").Error; err != nil {
		return fmt.Errorf("grant schema permissions: %w", err)
	}
	middleware.Logger.Warn("public schema reset")
	return nil
}

// reverse orders children before parents for dropping.
func reverse(in []interface{}) []interface{} {
	out := make([]interface{}, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
