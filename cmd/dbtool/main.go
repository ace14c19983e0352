package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"route-collection-service/internal/adapters/snapshot"
	"route-collection-service/internal/config"
	"route-collection-service/internal/platform/db"
	"route-collection-service/internal/ports"
)

// dbtool initializes the snapshot schema and seeds a starter snapshot from
// a JSON routes file, for local runs and fresh deployments.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var repo ports.SnapshotRepository
	if databaseURL := config.Get("DATABASE_URL", ""); databaseURL != "" {
		pg, err := db.OpenPostgres(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()

		log.Println("Initializing postgres snapshot schema...")
		if err := snapshot.InitSQLSchema(pg); err != nil {
			log.Fatal(err)
		}
		repo = snapshot.NewSQLSnapshotRepository(pg)
	} else {
		lite, err := db.OpenSqlite(config.Get("DB_PATH", "data/app.db"))
		if err != nil {
			log.Fatal(err)
		}
		defer lite.Close()

		log.Println("Initializing sqlite snapshot schema...")
		if err := snapshot.InitSqliteSchema(lite); err != nil {
			log.Fatal(err)
		}
		repo = snapshot.NewSqliteSnapshotRepository(lite)
	}
	log.Println("Schema ready.")

	seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")
	seedName := config.Get("SEED_SNAPSHOT", "starter")

	log.Printf("Seeding snapshot %q from %s...", seedName, seedPath)
	if err := snapshot.SeedFromJSON(context.Background(), repo, seedPath, seedName); err != nil {
		log.Fatal(err)
	}
	log.Println("Seeding complete.")
}
