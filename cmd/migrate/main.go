// Command migrate applies goose migrations against the configured database.
package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/kdblock/panel/internal/config"
)

func main() {
	dir := flag.String("dir", "migrations", "directory with migration files")
	command := flag.String("command", "up", "goose command (up, down, status, version)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Run(*command, db, *dir, flag.Args()...); err != nil {
		log.Fatalf("goose %s failed: %v", *command, err)
	}

	os.Exit(0)
}
