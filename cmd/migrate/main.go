package main

import (
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	var (
		dir   = flag.String("dir", "migrations", "migrations directory")
		down  = flag.Bool("down", false, "roll back all migrations")
		dbURL = flag.String("database", os.Getenv("DATABASE_URL"), "database URL")
	)
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	m, err := migrate.New("file://"+*dir, *dbURL)
	if err != nil {
		log.Fatalf("failed to init migrations: %v", err)
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migrations applied")
}
