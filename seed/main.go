// seed/main.go
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/questforge/progression_api/seed/seeders"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType   = flag.String("type", "all", "Type of seeding: all, catalog, players")
		dbPath     = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		players    = flag.Int("players", 1000, "Number of demo players to create")
		levels     = flag.Int("levels", 100, "Number of demo levels (and prizes) to create")
		exportPath = flag.String("export", "player_levels_export.csv", "CSV export path, empty to skip")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "progression.db"
		}
	}

	db, err := gorm.Open(sqlite.Open(databasePath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Printf("Connected to database: %s", databasePath)

	mainSeeder := seeders.NewMainSeeder(db, *players, *levels)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "catalog":
		log.Println("Seeding catalog only...")
		if err := mainSeeder.SeedCatalogOnly(); err != nil {
			log.Fatalf("Failed to seed catalog: %v", err)
		}
	case "players":
		log.Println("Seeding players only...")
		if err := mainSeeder.SeedPlayersOnly(); err != nil {
			log.Fatalf("Failed to seed players: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'catalog', or 'players'", *seedType)
	}

	if *exportPath != "" && *seedType == "all" {
		rows, err := mainSeeder.ExportCSV(*exportPath)
		if err != nil {
			log.Fatalf("Failed to export player levels: %v", err)
		}
		log.Printf("Exported %d player level rows to %s", rows, *exportPath)
	}

	log.Println("Seeding operation completed successfully!")
}

func showHelp() {
	log.Println(`
Demo Data Seeding Tool for the Progression API

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, catalog, players
  -db string
        Database path (overrides DB_DATABASE environment variable)
  -players int
        Number of demo players to create (default 1000)
  -levels int
        Number of demo levels and prizes to create (default 100)
  -export string
        CSV export path written after a full seed (default "player_levels_export.csv")
  -help
        Show this help message

Examples:
  # Seed everything and write the CSV report
  go run seed/main.go

  # Seed only the catalog
  go run seed/main.go -type=catalog

  # Small demo set
  go run seed/main.go -players=10 -levels=5`)
}
