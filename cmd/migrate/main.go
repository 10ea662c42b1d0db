package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// The whole domain persists through one key-value table, so the schema fits
// inline. The server's AutoMigrate covers the same ground; this tool exists
// for deployments where the database user running the app cannot create
// tables.
const createKVRecords = `
CREATE TABLE IF NOT EXISTS kv_records (
    key        VARCHAR(255) PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const dropKVRecords = `DROP TABLE IF EXISTS kv_records`

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Drop the kv_records table instead of creating it")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to reach database: %v", err)
	}

	if *rollback {
		if _, err := db.Exec(dropKVRecords); err != nil {
			log.Fatalf("failed to drop kv_records: %v", err)
		}
		fmt.Println("Dropped kv_records table.")
		return
	}

	if _, err := db.Exec(createKVRecords); err != nil {
		log.Fatalf("failed to create kv_records: %v", err)
	}
	fmt.Println("Schema is up to date.")
}
